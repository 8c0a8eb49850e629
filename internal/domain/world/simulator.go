package world

import (
	"sort"

	"timelapse/internal/domain/geo"
)

// Simulator replays normalized actions against an in-memory model of
// portals, links, and fields, enforcing planarity, ownership, and
// dependency invariants. It is single-threaded and synchronous: a call to
// ProcessAction runs to completion with no suspension, and the set of
// fields may only be transiently inconsistent inside that single call.
type Simulator struct {
	portals map[string]*PortalRuntime
	links   map[LinkKey]Link
	fields  []Field
}

// NewSimulator seeds the runtime model from the full portal catalog. Every
// portal starts NEUTRAL with zero resonators; the catalog's own Team value
// is never consulted (see Portal.Team).
func NewSimulator(catalog []Portal) *Simulator {
	s := &Simulator{
		portals: make(map[string]*PortalRuntime, len(catalog)),
		links:   make(map[LinkKey]Link),
	}
	for _, p := range catalog {
		s.portals[p.ID] = &PortalRuntime{Lat: p.Lat, Lng: p.Lng, Team: FactionNeutral}
	}
	return s
}

// Snapshot is the serializable state handed to the renderer.
type Snapshot struct {
	Portals []SnapshotPortal
	Links   []SnapshotLink
	Fields  []SnapshotField
}

type SnapshotPortal struct {
	ID   string
	Lat  float64
	Lng  float64
	Team Faction
}

type SnapshotLink struct {
	P1, P2 string
}

type SnapshotField struct {
	P1, P2, P3 string
	Team       Faction
}

// Snapshot returns the current state. Field records never carry the
// auxiliary area used during candidate selection; it is stripped before a
// field is ever inserted into s.fields.
func (s *Simulator) Snapshot() Snapshot {
	out := Snapshot{
		Portals: make([]SnapshotPortal, 0, len(s.portals)),
		Links:   make([]SnapshotLink, 0, len(s.links)),
		Fields:  make([]SnapshotField, 0, len(s.fields)),
	}
	ids := make([]string, 0, len(s.portals))
	for id := range s.portals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := s.portals[id]
		out.Portals = append(out.Portals, SnapshotPortal{ID: id, Lat: p.Lat, Lng: p.Lng, Team: p.Team})
	}
	keys := make([]LinkKey, 0, len(s.links))
	for k := range s.links {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		l := s.links[k]
		out.Links = append(out.Links, SnapshotLink{P1: l.P1, P2: l.P2})
	}
	for _, f := range s.fields {
		out.Fields = append(out.Fields, SnapshotField{P1: f.P1, P2: f.P2, P3: f.P3, Team: f.Team})
	}
	return out
}

// ProcessAction mutates state for a single normalized action and reports
// whether anything visible changed: a portal's team changed, or a link or
// field was added or removed. Branches are evaluated in the order given
// below; the first matching branch returns immediately.
func (s *Simulator) ProcessAction(a Action) bool {
	switch {
	case a.Type == TypeLink && a.Verb == VerbDestroy:
		return s.handleLinkDestroy(a)
	case a.Type == TypeReso && a.Verb == VerbDestroy:
		return s.handleResoDestroy(a)
	case IsDeployOrCapture(a.Verb):
		return s.handleDeployOrCapture(a)
	case a.Type == TypeLink && IsLink(a.Verb):
		return s.handleLinkCreate(a)
	case IsBeaconWin(a.Verb):
		return s.handleBeaconWin(a)
	default:
		return false
	}
}

// handleLinkDestroy implements dispatch branch 1: an explicit link-destroy
// event. If both endpoints are known, the link is removed.
func (s *Simulator) handleLinkDestroy(a Action) bool {
	if a.PortalID == "" || a.TargetPortalID == "" {
		return false
	}
	if _, ok := s.portals[a.PortalID]; !ok {
		return false
	}
	if _, ok := s.portals[a.TargetPortalID]; !ok {
		return false
	}
	return s.deleteLink(NewLinkKey(a.PortalID, a.TargetPortalID))
}

// handleResoDestroy implements dispatch branch 2: resonator destruction.
// The feed does not report which resonator failed, only that one did;
// counting events down from a cap is a sufficient proxy for when a
// portal's links should fail.
func (s *Simulator) handleResoDestroy(a Action) bool {
	p, ok := s.portals[a.PortalID]
	if !ok {
		return false
	}
	if p.Resonators > 0 {
		p.Resonators--
	}
	changed := false
	if p.Resonators <= 2 {
		if s.removeLinksAttachedTo(a.PortalID) {
			changed = true
		}
	}
	if p.Resonators == 0 && p.Team != FactionNeutral {
		p.Team = FactionNeutral
		changed = true
	}
	return changed
}

// handleDeployOrCapture implements dispatch branch 3: capture, faction
// flip, or reinforcement, depending on the portal's current team.
func (s *Simulator) handleDeployOrCapture(a Action) bool {
	p, ok := s.portals[a.PortalID]
	if !ok {
		return false
	}
	team, ok := VerbFaction(a.Verb)
	if !ok {
		return false
	}
	switch {
	case p.Team == FactionNeutral:
		p.Team = team
		p.Resonators = 1
		return true
	case p.Team != team:
		p.Team = team
		p.Resonators = 1
		s.removeLinksAttachedTo(a.PortalID)
		return true
	default:
		if p.Resonators < 8 {
			p.Resonators++
		}
		return false
	}
}

// handleLinkCreate implements dispatch branch 4: link creation, the
// planarity sweep, and at-most-two-sided field creation.
func (s *Simulator) handleLinkCreate(a Action) bool {
	p1, ok1 := s.portals[a.PortalID]
	p2, ok2 := s.portals[a.TargetPortalID]
	if !ok1 || !ok2 {
		return false
	}
	team, ok := VerbFaction(a.Verb)
	if !ok {
		return false
	}

	changed := false
	if p1.Team != team {
		p1.Team = team
		changed = true
	}
	if p2.Team != team {
		p2.Team = team
		changed = true
	}

	key := NewLinkKey(a.PortalID, a.TargetPortalID)
	if _, exists := s.links[key]; exists {
		return changed
	}

	a1 := p1.Point()
	a2 := p2.Point()
	for existing := range s.links {
		if existing.HasEndpoint(a.PortalID) || existing.HasEndpoint(a.TargetPortalID) {
			continue
		}
		e1, e2 := existing.Endpoints()
		c1, c2 := s.portals[e1], s.portals[e2]
		if c1 == nil || c2 == nil {
			continue
		}
		if geo.SegmentsIntersect(a1, a2, c1.Point(), c2.Point()) {
			s.deleteLink(existing)
			changed = true
		}
	}

	s.links[key] = Link{P1: a.PortalID, P2: a.TargetPortalID, Team: team}
	changed = true

	if s.createFieldsForNewLink(a.PortalID, a.TargetPortalID, team) {
		changed = true
	}

	return changed
}

// createFieldsForNewLink enumerates the common neighbors of the new edge's
// endpoints, partitions them by which side of the edge they fall on, and
// emits at most one field per side: the candidate with the largest
// triangle area, ties broken by neighbor-id lexicographic order.
func (s *Simulator) createFieldsForNewLink(p1, p2 string, team Faction) bool {
	a := s.portals[p1].Point()
	b := s.portals[p2].Point()

	n1 := s.neighborsOf(p1)
	n2 := s.neighborsOf(p2)
	common := make([]string, 0)
	for id := range n1 {
		if id == p1 || id == p2 {
			continue
		}
		if n2[id] {
			common = append(common, id)
		}
	}
	common = sortedIDs(common)

	var bestPos, bestNeg string
	var bestPosArea, bestNegArea float64
	for _, cand := range common {
		c := s.portals[cand].Point()
		area := geo.Cross(a, b, c)
		switch {
		case area > 0:
			if bestPos == "" || area > bestPosArea {
				bestPos, bestPosArea = cand, area
			}
		case area < 0:
			mag := -area
			if bestNeg == "" || mag > bestNegArea {
				bestNeg, bestNegArea = cand, mag
			}
		}
	}

	changed := false
	if bestPos != "" {
		s.fields = append(s.fields, Field{P1: p1, P2: p2, P3: bestPos, Team: team})
		changed = true
	}
	if bestNeg != "" {
		s.fields = append(s.fields, Field{P1: p1, P2: p2, P3: bestNeg, Team: team})
		changed = true
	}
	return changed
}

// neighborsOf returns the set of portal ids directly linked to id.
func (s *Simulator) neighborsOf(id string) map[string]bool {
	out := map[string]bool{}
	for key := range s.links {
		a, b := key.Endpoints()
		if a == id {
			out[b] = true
		} else if b == id {
			out[a] = true
		}
	}
	return out
}

// handleBeaconWin implements dispatch branch 5: a battle-beacon outcome.
func (s *Simulator) handleBeaconWin(a Action) bool {
	p, ok := s.portals[a.PortalID]
	if !ok {
		return false
	}
	winner, ok := VerbFaction(a.Verb)
	if !ok {
		return false
	}
	changed := false
	if p.Team != FactionNeutral && p.Team != winner {
		if s.removeLinksAttachedTo(a.PortalID) {
			changed = true
		}
		p.Team = winner
		changed = true
	}
	return changed
}

// deleteLink removes the link at key and every field whose unordered edge
// set includes it, reporting whether the link existed.
func (s *Simulator) deleteLink(key LinkKey) bool {
	if _, ok := s.links[key]; !ok {
		return false
	}
	delete(s.links, key)
	s.removeFieldsWithEdge(key)
	return true
}

// removeFieldsWithEdge drops every field depending on key.
func (s *Simulator) removeFieldsWithEdge(key LinkKey) {
	kept := s.fields[:0]
	for _, f := range s.fields {
		if f.HasEdge(key) {
			continue
		}
		kept = append(kept, f)
	}
	s.fields = kept
}

// removeLinksAttachedTo deletes every link incident to id, then performs a
// safety scrub removing any residual field touching id — defensive against
// states where a field's edge died without the field being caught above.
func (s *Simulator) removeLinksAttachedTo(id string) bool {
	changed := false
	for key := range s.links {
		if key.HasEndpoint(id) {
			if s.deleteLink(key) {
				changed = true
			}
		}
	}
	kept := s.fields[:0]
	for _, f := range s.fields {
		if f.HasVertex(id) {
			changed = true
			continue
		}
		kept = append(kept, f)
	}
	s.fields = kept
	return changed
}
