package piwebapi

import (
	"context"
	"encoding/json"
	"time"
)

// LoadAttributes fetches the leaf attributes of an element using the same
// link/WebId/path fallback order as child listing. Missing attributes are not
// an error: the mapper degrades gracefully on an empty list.
func (c *Client) LoadAttributes(ctx context.Context, el Element) ([]RawAttribute, error) {
	base, err := c.base(ctx)
	if err != nil {
		return nil, err
	}

	sawReachable := false
	var items []rawAttributeItem
	for _, u := range el.attributeURLs(base) {
		if u == "" {
			continue
		}
		status, body, err := c.get(ctx, u)
		if err != nil {
			continue
		}
		if !reachableStatus(status) {
			continue
		}
		sawReachable = true
		if status < 200 || status >= 300 {
			continue
		}

		var envelope attributeEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			continue
		}
		collected, _ := envelope.collection()
		if len(collected) > 0 {
			items = collected
			break
		}
	}
	if !sawReachable {
		return nil, &ChildrenUnavailableError{Parent: el.Name}
	}

	out := make([]RawAttribute, 0, len(items))
	for _, it := range items {
		value, ts := decodeAttributeValue(it.Value)
		if ts.IsZero() {
			ts = parseTimestamp(it.Timestamp)
		}
		out = append(out, RawAttribute{
			Name:      it.Name,
			Path:      it.Path,
			Value:     value,
			Timestamp: ts,
		})
	}
	return out, nil
}

// decodeAttributeValue accepts both wire shapes: a bare scalar, or an object
// like {"Timestamp": ..., "Value": ..., "Good": ...}.
func decodeAttributeValue(raw json.RawMessage) (any, time.Time) {
	if len(raw) == 0 {
		return nil, time.Time{}
	}

	var wrapped struct {
		Timestamp string `json:"Timestamp"`
		Value     any    `json:"Value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && (wrapped.Value != nil || wrapped.Timestamp != "") {
		return wrapped.Value, parseTimestamp(wrapped.Timestamp)
	}

	var scalar any
	if err := json.Unmarshal(raw, &scalar); err != nil {
		return nil, time.Time{}
	}
	return scalar, time.Time{}
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z07:00"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
