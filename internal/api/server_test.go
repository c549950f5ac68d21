package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/polymarket-window-dashboard/internal/config"
	"github.com/polymarket-window-dashboard/internal/model"
	"github.com/polymarket-window-dashboard/internal/pipeline"
	"github.com/polymarket-window-dashboard/internal/table"
)

type stubSource struct {
	events   []model.Event
	rows     []table.Row
	err      error
	lastSort table.SortConfig
}

func (s *stubSource) Events(context.Context) ([]model.Event, error) {
	return s.events, s.err
}

func (s *stubSource) Rows(_ context.Context, cfg table.SortConfig) ([]table.Row, error) {
	s.lastSort = cfg
	if s.err != nil {
		return nil, s.err
	}
	return table.Sort(s.rows, cfg), nil
}

func (s *stubSource) Run(ctx context.Context, cfg table.SortConfig) <-chan pipeline.Result {
	out := make(chan pipeline.Result, 1)
	rows, err := s.Rows(ctx, cfg)
	out <- pipeline.Result{Events: s.events, Rows: rows, Err: err}
	close(out)
	return out
}

func events(n int) []model.Event {
	out := make([]model.Event, n)
	for i := range out {
		out[i] = model.Event{ID: model.FlexString(string(rune('a' + i))), Title: "event"}
	}
	return out
}

func apiConfig(paginate bool) config.APIConfig {
	return config.APIConfig{
		CORSOrigins:  []string{"http://localhost:3000"},
		Paginate:     paginate,
		ItemsPerPage: 10,
		ChartSize:    10,
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeMarkets(t *testing.T, rec *httptest.ResponseRecorder) []model.Event {
	t.Helper()
	var body struct {
		Markets []model.Event `json:"markets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return body.Markets
}

func TestGetMarkets_Paginates(t *testing.T) {
	h := NewServer(apiConfig(true), 5, &stubSource{events: events(23)}, nil).Handler()

	tests := []struct {
		target  string
		wantLen int
		firstID string
	}{
		{"/api/markets", 10, "a"},
		{"/api/markets?page=2", 10, "k"},
		{"/api/markets?page=3", 3, "u"},
		{"/api/markets?page=4", 0, ""},
		{"/api/markets?page=0", 10, "a"},
		{"/api/markets?page=-2", 10, "a"},
		{"/api/markets?page=abc", 10, "a"},
		{"/api/markets?page=9223372036854775807", 0, ""},
		{"/api/markets?page=922337203685477581", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := rec.Header().Get("Cache-Control"); got != "no-store" {
				t.Errorf("Cache-Control = %q", got)
			}
			markets := decodeMarkets(t, rec)
			if len(markets) != tt.wantLen {
				t.Fatalf("markets = %d, want %d", len(markets), tt.wantLen)
			}
			if tt.wantLen > 0 && markets[0].ID.String() != tt.firstID {
				t.Errorf("first id = %q, want %q", markets[0].ID, tt.firstID)
			}
		})
	}
}

func TestGetMarkets_Unpaginated(t *testing.T) {
	h := NewServer(apiConfig(false), 5, &stubSource{events: events(23)}, nil).Handler()
	rec := get(t, h, "/api/markets?page=2")
	if got := len(decodeMarkets(t, rec)); got != 23 {
		t.Errorf("markets = %d, want 23", got)
	}
}

func TestGetMarkets_EmptyIsArray(t *testing.T) {
	h := NewServer(apiConfig(true), 5, &stubSource{}, nil).Handler()
	rec := get(t, h, "/api/markets")
	if !strings.Contains(rec.Body.String(), `"markets":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetMarkets_Failure(t *testing.T) {
	h := NewServer(apiConfig(true), 5, &stubSource{err: errors.New("upstream 502")}, nil).Handler()
	rec := get(t, h, "/api/markets")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body["error"] != FetchErrorMessage {
		t.Errorf("body = %v", body)
	}
}

func TestGetRows_Sorted(t *testing.T) {
	src := &stubSource{rows: []table.Row{{EventName: "b", Volume: "10"}, {EventName: "a", Volume: "2,000"}}}
	h := NewServer(apiConfig(true), 5, src, nil).Handler()

	rec := get(t, h, "/api/rows?sort=volume&dir=desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Rows []table.Row      `json:"rows"`
		Sort table.SortConfig `json:"sort"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Sort != (table.SortConfig{Key: table.KeyVolume, Direction: table.Desc}) {
		t.Errorf("sort = %+v", body.Sort)
	}
	if len(body.Rows) != 2 || body.Rows[0].EventName != "a" {
		t.Errorf("rows = %+v", body.Rows)
	}
}

func TestGetCharts(t *testing.T) {
	src := &stubSource{rows: []table.Row{{EventName: "a", MarketName: "m", Volume: "5", Odds: "0.500", EndDate: "10/21/2026, 1:00:00 PM"}}}
	h := NewServer(apiConfig(true), 5, src, nil).Handler()

	rec := get(t, h, "/api/charts")
	var body map[string]struct {
		Title  string   `json:"title"`
		Labels []string `json:"labels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["volume"].Title == "" || len(body["oddsVolume"].Labels) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestRequestID(t *testing.T) {
	h := NewServer(apiConfig(true), 5, &stubSource{}, nil).Handler()

	rec := get(t, h, "/api/health")
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestIndex(t *testing.T) {
	src := &stubSource{rows: []table.Row{{EventName: "Fed", MarketName: "Cut", Odds: "0.800", Volume: "1,000", EndDate: table.NotAvailable}}}
	h := NewServer(apiConfig(true), 5, src, nil).Handler()

	rec := get(t, h, "/?sort=odds&dir=desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if src.lastSort != (table.SortConfig{Key: table.KeyOdds, Direction: table.Desc}) {
		t.Errorf("sort = %+v", src.lastSort)
	}
	if !strings.Contains(rec.Body.String(), "Fed") {
		t.Error("row missing from page")
	}

	src.err = errors.New("boom")
	rec = get(t, h, "/")
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), FetchErrorMessage) {
		t.Errorf("failure page = %d", rec.Code)
	}
}

func TestPaginate_Bounds(t *testing.T) {
	all := events(20)
	tests := []struct {
		page, perPage, want int
	}{
		{1, 10, 10},
		{2, 10, 10},
		{3, 10, 0},
		{1, 30, 20},
		{int(^uint(0) >> 1), 10, 0},
		{int(^uint(0)>>1) / 10, 10, 0},
		{1, int(^uint(0) >> 1), 20},
	}
	for _, tt := range tests {
		if got := paginate(all, tt.page, tt.perPage); len(got) != tt.want {
			t.Errorf("paginate(page=%d, perPage=%d) = %d events, want %d", tt.page, tt.perPage, len(got), tt.want)
		}
	}
	if got := paginate(nil, 1, 10); got == nil || len(got) != 0 {
		t.Errorf("empty input = %v, want empty slice", got)
	}
}
