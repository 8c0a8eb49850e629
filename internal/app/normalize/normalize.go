// Package normalize turns raw feed records into the closed set of
// world.Action values the simulator dispatches on. The classification
// logic is a single function doing keyword-driven dispatch over the
// record's plain text — deliberately not a class hierarchy, since the
// dispatch axes (verb, type keyword, faction tag) do not compose into a
// clean type taxonomy.
package normalize

import (
	"strings"

	"timelapse/internal/app/ports"
	"timelapse/internal/domain/world"
)

// dropPhrases are exact substrings of a record's plain text that mark it
// as chatter with no effect on world state.
var dropPhrases = []string{
	"is under attack by",
	"Your Kinetic Capsule now ready",
	"Drone returned",
}

// Result is the outcome of normalizing one raw record: the action (always
// produced, possibly type=unknown/action=unknown) and up to two portal
// records extracted from its markup.
type Result struct {
	Action  world.Action
	Portals []world.Portal
}

// Normalize converts one raw feed record into a Result, or reports
// dropped=true for a record matching a drop rule.
func Normalize(rec ports.RawRecord) (Result, bool) {
	for _, phrase := range dropPhrases {
		if strings.Contains(rec.PlainText, phrase) {
			return Result{}, true
		}
	}

	actionType, verbPrefix := classify(rec.PlainText)
	faction := actorFaction(rec.Markup, actionType)
	verb := resolveVerb(verbPrefix, faction)

	portals := extractPortals(rec.Markup)
	action := world.Action{
		ID:          rec.GUID,
		TimestampMs: rec.TimestampMs,
		Type:        actionType,
		Verb:        verb,
	}
	if len(portals) > 0 {
		action.PortalID = portals[0].ID
	}
	if len(portals) > 1 {
		action.TargetPortalID = portals[1].ID
	}
	return Result{Action: action, Portals: portals}, false
}

// verbPrefix is the faction-agnostic shape of a classified verb:
// "captured", "deploy", "link", "field", "won", "destroy" (for every
// destroy subtype, which is carried by the action type), or "" for unknown.
type verbPrefix string

const (
	prefixCaptured verbPrefix = "captured"
	prefixDeploy   verbPrefix = "deploy"
	prefixLink     verbPrefix = "link"
	prefixField    verbPrefix = "field"
	prefixWon      verbPrefix = "won"
	prefixDestroy  verbPrefix = "destroy"
	prefixUnknown  verbPrefix = ""
)

// classify applies the keyword dispatch table in the order the feed's
// verbs must be disambiguated: destroy's subtype has to be read off
// nearby keywords before any other branch runs, since "destroyed" alone
// doesn't say what was destroyed.
func classify(text string) (world.ActionType, verbPrefix) {
	switch {
	case strings.Contains(text, "destroyed"):
		return destroySubtype(text), prefixDestroy
	case strings.Contains(text, "neutralized by"):
		return world.TypePortal, prefixDestroy
	case strings.Contains(text, "won a CAT-"):
		return world.TypeBattleBeacon, prefixWon
	case strings.Contains(text, "deployed"):
		return world.TypeReso, prefixDeploy
	case strings.Contains(text, "linked"):
		return world.TypeLink, prefixLink
	case strings.Contains(text, "created a Control Field"):
		return world.TypeField, prefixField
	case strings.Contains(text, "captured"):
		return world.TypePortal, prefixCaptured
	default:
		return world.TypeUnknown, prefixUnknown
	}
}

// destroySubtype infers which kind of object a "destroyed" event removed
// from nearby keywords in the plain text.
func destroySubtype(text string) world.ActionType {
	switch {
	case strings.Contains(text, "Resonator"):
		return world.TypeReso
	case strings.Contains(text, "Link"):
		return world.TypeLink
	case strings.Contains(text, "Control Field"):
		return world.TypeField
	case strings.Contains(text, "Mod"):
		return world.TypeMod
	default:
		return world.TypeUnknown
	}
}

// actorFaction finds the faction responsible for the event: the first
// PLAYER tag's team, except for battle-beacon outcomes which report the
// winner via a FACTION tag instead.
func actorFaction(markup []ports.MarkupTag, actionType world.ActionType) world.Faction {
	wantType := "PLAYER"
	if actionType == world.TypeBattleBeacon {
		wantType = "FACTION"
	}
	for _, tag := range markup {
		if tag.Type != wantType {
			continue
		}
		return mapTeam(tag.Team)
	}
	return ""
}

func mapTeam(team string) world.Faction {
	switch team {
	case "RESISTANCE":
		return world.FactionRES
	case "ENLIGHTENED":
		return world.FactionENL
	default:
		return ""
	}
}

// resolveVerb joins a verb prefix with the actor faction, for the prefixes
// that take a faction suffix. destroy and unknown never do.
func resolveVerb(prefix verbPrefix, faction world.Faction) world.Verb {
	switch prefix {
	case prefixCaptured:
		return suffixed("captured", faction)
	case prefixDeploy:
		return suffixed("deploy", faction)
	case prefixLink:
		return suffixed("link", faction)
	case prefixField:
		return suffixed("field", faction)
	case prefixWon:
		return suffixed("won", faction)
	case prefixDestroy:
		return world.VerbDestroy
	default:
		return world.VerbUnknown
	}
}

func suffixed(prefix string, faction world.Faction) world.Verb {
	if faction != world.FactionRES && faction != world.FactionENL {
		return world.VerbUnknown
	}
	return world.Verb(prefix + "_" + string(faction))
}

// extractPortals takes the first two PORTAL tags in markup order and
// converts their E6 coordinates to signed decimal degrees.
func extractPortals(markup []ports.MarkupTag) []world.Portal {
	out := make([]world.Portal, 0, 2)
	for _, tag := range markup {
		if tag.Type != "PORTAL" {
			continue
		}
		out = append(out, world.Portal{
			ID:      tag.GUID,
			Lat:     float64(tag.LatE6) / 1_000_000,
			Lng:     float64(tag.LngE6) / 1_000_000,
			Name:    tag.Name,
			Address: tag.Address,
			Team:    mapTeam(tag.Team),
		})
		if len(out) == 2 {
			break
		}
	}
	return out
}
