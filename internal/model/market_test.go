package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventUnmarshal(t *testing.T) {
	t.Run("string encoded outcome lists", func(t *testing.T) {
		body := `{"id":"42","title":"X","markets":[{"groupItemTitle":"M1","closed":false,
			"endDateIso":"2026-10-21","outcomePrices":"[\"0.7\",\"0.3\"]",
			"outcomes":"[\"Yes\",\"No\"]","volume":"1500.25"}]}`

		var e Event
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.ID != "42" || e.Title != "X" {
			t.Errorf("event = %+v", e)
		}
		if len(e.Markets) != 1 {
			t.Fatalf("markets = %d, want 1", len(e.Markets))
		}
		prices, ok := e.Markets[0].PriceStrings()
		if !ok || len(prices) != 2 || prices[0] != "0.7" || prices[1] != "0.3" {
			t.Errorf("PriceStrings() = %v, %v", prices, ok)
		}
		if e.Markets[0].Volume != "1500.25" {
			t.Errorf("Volume = %q", e.Markets[0].Volume)
		}
	})

	t.Run("numeric id and volume", func(t *testing.T) {
		var e Event
		if err := json.Unmarshal([]byte(`{"id":7,"markets":[{"volume":1234.5}]}`), &e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.ID != "7" {
			t.Errorf("ID = %q, want 7", e.ID)
		}
		if e.Markets[0].Volume != "1234.5" {
			t.Errorf("Volume = %q, want 1234.5", e.Markets[0].Volume)
		}
	})

	t.Run("markets not a list", func(t *testing.T) {
		var e Event
		if err := json.Unmarshal([]byte(`{"id":"1","markets":{"oops":true}}`), &e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(e.Markets) != 0 {
			t.Errorf("markets = %d, want 0", len(e.Markets))
		}
	})

	t.Run("bad market element dropped", func(t *testing.T) {
		var e Event
		body := `{"markets":[{"closed":"nope"},{"groupItemTitle":"ok"}]}`
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(e.Markets) != 1 || e.Markets[0].GroupItemTitle != "ok" {
			t.Errorf("markets = %+v", e.Markets)
		}
	})
}

func TestPriceStrings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
		ok   bool
	}{
		{"string encoded", `"[\"0.5\",\"0.5\"]"`, []string{"0.5", "0.5"}, true},
		{"bare array", `["0.1","0.9"]`, []string{"0.1", "0.9"}, true},
		{"numbers", `[0.25, 0.75]`, []string{"0.25", "0.75"}, true},
		{"not json", `"not json"`, nil, false},
		{"object", `{"a":1}`, nil, false},
		{"missing", ``, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Market{OutcomePrices: json.RawMessage(tt.raw)}
			got, ok := m.PriceStrings()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOutcomeLabels_MissingIsEmpty(t *testing.T) {
	m := Market{}
	got, ok := m.OutcomeLabels()
	if !ok || len(got) != 0 {
		t.Errorf("OutcomeLabels() = %v, %v; want [], true", got, ok)
	}

	m.Outcomes = json.RawMessage(`"Yes or No"`)
	if _, ok := m.OutcomeLabels(); ok {
		t.Error("expected malformed outcomes to fail")
	}
}

func TestEndTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2026-10-21", time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), true},
		{"2026-10-21T15:30:00Z", time.Date(2026, 10, 21, 15, 30, 0, 0, time.UTC), true},
		{"2026-10-21T15:30:00.123Z", time.Date(2026, 10, 21, 15, 30, 0, 123000000, time.UTC), true},
		{"", time.Time{}, false},
		{"soon", time.Time{}, false},
	}

	for _, tt := range tests {
		m := Market{EndDateISO: tt.in}
		got, ok := m.EndTime()
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("EndTime(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
