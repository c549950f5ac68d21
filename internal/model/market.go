package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Event is a Gamma /events record. Only the fields the dashboard reads are
// modeled.
type Event struct {
	ID      FlexString `json:"id"`
	Title   string     `json:"title"`
	Markets MarketList `json:"markets"`
}

// Market is a single binary question nested in an Event.
type Market struct {
	GroupItemTitle string          `json:"groupItemTitle,omitempty"`
	Closed         bool            `json:"closed"`
	EndDateISO     string          `json:"endDateIso,omitempty"`
	EndDate        string          `json:"endDate,omitempty"`
	OutcomePrices  json.RawMessage `json:"outcomePrices,omitempty"`
	Outcomes       json.RawMessage `json:"outcomes,omitempty"`
	Volume         FlexString      `json:"volume,omitempty"`
}

// MarketList decodes the "markets" field of an event. A value that is not a
// JSON array yields an empty list, and array elements that fail to decode as
// a Market are dropped.
type MarketList []Market

func (l *MarketList) UnmarshalJSON(data []byte) error {
	*l = nil

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	out := make(MarketList, 0, len(raw))
	for _, item := range raw {
		var m Market
		if err := json.Unmarshal(item, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	*l = out
	return nil
}

// FlexString accepts a JSON string or number and keeps its text form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// PriceStrings parses OutcomePrices. Upstream sends a JSON string holding an
// array ("[\"0.7\", \"0.3\"]"); a bare array is accepted as well. Numeric
// elements are kept in their JSON text form. ok is false when the field is
// missing or not an array.
func (m *Market) PriceStrings() ([]string, bool) {
	if len(bytes.TrimSpace(m.OutcomePrices)) == 0 {
		return nil, false
	}
	return decodeList(m.OutcomePrices)
}

// OutcomeLabels parses Outcomes the same way as PriceStrings. A missing field
// counts as an empty list.
func (m *Market) OutcomeLabels() ([]string, bool) {
	if len(bytes.TrimSpace(m.Outcomes)) == 0 {
		return []string{}, true
	}
	return decodeList(m.Outcomes)
}

func decodeList(data json.RawMessage) ([]string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, false
		}
		data = []byte(inner)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	return out, true
}

// EndTime parses EndDateISO, which Gamma sends either as a full RFC 3339
// timestamp or as a bare date (read as UTC midnight).
func (m *Market) EndTime() (time.Time, bool) {
	return parseTimestamp(m.EndDateISO)
}

// DisplayEndTime parses EndDate, the timestamp shown to users.
func (m *Market) DisplayEndTime() (time.Time, bool) {
	return parseTimestamp(m.EndDate)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
