package ports

import "context"

// MarkupTag is one tagged tuple from a plext's markup list. Only the
// fields relevant to normalization are surfaced; the upstream format
// carries additional fields the normalizer never reads.
type MarkupTag struct {
	Type    string // PLAYER, FACTION, PORTAL, TEXT, SENDER, ...
	Team    string // RESISTANCE or ENLIGHTENED, present on PLAYER/FACTION tags
	GUID    string // present on PORTAL tags
	Name    string // present on PORTAL tags
	Address string // present on PORTAL tags
	LatE6   int64  // present on PORTAL tags
	LngE6   int64  // present on PORTAL tags
	Plain   string // present on TEXT tags
}

// RawRecord is one unparsed plext entry as received from the upstream
// feed, before normalization into a world.Action.
type RawRecord struct {
	GUID        string
	TimestampMs int64
	Markup      []MarkupTag
	PlainText   string
}

// FeedPage is one page of the upstream feed's paginated response.
type FeedPage struct {
	Records []RawRecord
	// MinTimestampMs is the earliest timestamp present in Records; the
	// ingester uses it as the cursor for the next page request.
	MinTimestampMs int64
	HasMore        bool
}

// FeedClient fetches pages of raw feed records. Implementations fail the
// current page on network or non-JSON-response errors; the ingester
// terminates cleanly on such failures, preserving whatever was already
// committed.
type FeedClient interface {
	FetchHistory(ctx context.Context, untilMs int64) (FeedPage, error)
}
