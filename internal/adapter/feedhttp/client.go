// Package feedhttp fetches pages of the upstream feed over HTTP using
// Hertz's client package — the same library the control surface serves
// requests with, used here as an outbound client instead.
package feedhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"timelapse/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
)

// Client drives the upstream feed's paginated POST endpoint.
type Client struct {
	hc          *client.Client
	url         string
	basePayload json.RawMessage
}

// New builds a Client against url, echoing basePayload on every request
// with the three fields the protocol requires overridden per page.
func New(url string, basePayload json.RawMessage, timeout time.Duration) (*Client, error) {
	hc, err := client.NewClient(client.WithDialTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("build feed client: %w", err)
	}
	return &Client{hc: hc, url: url, basePayload: basePayload}, nil
}

type feedRecord [3]json.RawMessage

type feedResponse struct {
	Result []feedRecord `json:"result"`
}

type plextEnvelope struct {
	Plext struct {
		Markup [][2]json.RawMessage `json:"markup"`
		Text   string               `json:"text"`
	} `json:"plext"`
}

// FetchHistory issues one page request bounded above by untilMs and
// parses the response into the normalizer's raw record shape. A network
// or non-JSON-response error is returned to the caller, which per the
// error handling design fails only the current page.
func (c *Client) FetchHistory(ctx context.Context, untilMs int64) (ports.FeedPage, error) {
	body, err := buildRequestBody(c.basePayload, untilMs)
	if err != nil {
		return ports.FeedPage{}, fmt.Errorf("build feed request body: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod("POST")
	req.SetRequestURI(c.url)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	if err := c.hc.Do(ctx, req, resp); err != nil {
		return ports.FeedPage{}, fmt.Errorf("fetch feed page: %w", err)
	}
	if resp.StatusCode() != 200 {
		return ports.FeedPage{}, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}

	var parsed feedResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return ports.FeedPage{}, fmt.Errorf("decode feed response: %w", err)
	}

	return toPage(parsed)
}

func buildRequestBody(base json.RawMessage, untilMs int64) ([]byte, error) {
	var payload map[string]any
	if len(base) > 0 {
		if err := json.Unmarshal(base, &payload); err != nil {
			return nil, err
		}
	} else {
		payload = map[string]any{}
	}
	payload["minTimestampMs"] = -1
	payload["maxTimestampMs"] = untilMs
	payload["plextContinuationGuid"] = ""
	return json.Marshal(payload)
}

func toPage(parsed feedResponse) (ports.FeedPage, error) {
	records := make([]ports.RawRecord, 0, len(parsed.Result))
	var minTs int64
	first := true

	for _, rec := range parsed.Result {
		var guid string
		var ts int64
		if err := json.Unmarshal(rec[0], &guid); err != nil {
			continue
		}
		if err := json.Unmarshal(rec[1], &ts); err != nil {
			continue
		}
		var env plextEnvelope
		if err := json.Unmarshal(rec[2], &env); err != nil {
			continue
		}

		raw := ports.RawRecord{GUID: guid, TimestampMs: ts, PlainText: env.Plext.Text}
		raw.Markup = parseMarkup(env.Plext.Markup)
		records = append(records, raw)

		if first || ts < minTs {
			minTs = ts
			first = false
		}
	}

	return ports.FeedPage{
		Records:        records,
		MinTimestampMs: minTs,
		HasMore:        len(records) > 0,
	}, nil
}

// markupField is the shape of one tagged tuple's second element for the
// tags the normalizer cares about; other tag types are decoded loosely
// and their unused fields are simply ignored.
type markupField struct {
	Team      string `json:"team"`
	PlainGUID string `json:"guid"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	LatE6     int64  `json:"latE6"`
	LngE6     int64  `json:"lngE6"`
	Plain     string `json:"plain"`
}

func parseMarkup(raw [][2]json.RawMessage) []ports.MarkupTag {
	out := make([]ports.MarkupTag, 0, len(raw))
	for _, pair := range raw {
		var tagType string
		if err := json.Unmarshal(pair[0], &tagType); err != nil {
			continue
		}
		var field markupField
		_ = json.Unmarshal(pair[1], &field)
		out = append(out, ports.MarkupTag{
			Type:    tagType,
			Team:    field.Team,
			GUID:    field.PlainGUID,
			Name:    field.Name,
			Address: field.Address,
			LatE6:   field.LatE6,
			LngE6:   field.LngE6,
			Plain:   field.Plain,
		})
	}
	return out
}
