// Package pipeline runs one dashboard refresh: fetch every page of events,
// keep those with an open market ending inside the window, flatten the
// markets into rows and sort them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/polymarket-window-dashboard/internal/config"
	"github.com/polymarket-window-dashboard/internal/ingestion"
	"github.com/polymarket-window-dashboard/internal/model"
	"github.com/polymarket-window-dashboard/internal/scanner"
	"github.com/polymarket-window-dashboard/internal/table"
)

// Fetcher is satisfied by *ingestion.RESTClient.
type Fetcher interface {
	FetchAllPages(ctx context.Context, query ingestion.Query) ([]model.Event, error)
}

type Pipeline struct {
	fetcher    Fetcher
	upstream   config.PolymarketConfig
	windowDays int
	loc        *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

type Option func(*Pipeline)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func New(fetcher Fetcher, upstream config.PolymarketConfig, window config.WindowConfig, opts ...Option) *Pipeline {
	days := window.Days
	if days <= 0 {
		days = scanner.DefaultWindowDays
	}
	p := &Pipeline{
		fetcher:    fetcher,
		upstream:   upstream,
		windowDays: days,
		loc:        time.Local,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Events fetches with the configured query and drops every event without an
// open market ending within the window. Any upstream failure aborts the
// whole fetch.
func (p *Pipeline) Events(ctx context.Context) ([]model.Event, error) {
	now := p.now()
	query := ingestion.QueryFor(p.upstream, p.windowDays, now)

	events, err := p.fetcher.FetchAllPages(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	kept := scanner.FilterOpenWithinWindow(events, now, scanner.WindowFromDays(p.windowDays))
	p.logger.Info("events refreshed",
		zap.String("variant", query.Variant),
		zap.Int("fetched", len(events)),
		zap.Int("in_window", len(kept)),
	)
	return kept, nil
}

// Rows is Events followed by flatten and sort.
func (p *Pipeline) Rows(ctx context.Context, sortCfg table.SortConfig) ([]table.Row, error) {
	events, err := p.Events(ctx)
	if err != nil {
		return nil, err
	}
	return table.Sort(table.Flatten(events, p.loc), sortCfg), nil
}

// Location is the zone end dates are rendered in.
func (p *Pipeline) Location() *time.Location {
	return p.loc
}

type Result struct {
	Events []model.Event
	Rows   []table.Row
	Err    error
}

// Run refreshes in a new goroutine. The returned channel yields exactly one
// Result and is then closed.
func (p *Pipeline) Run(ctx context.Context, sortCfg table.SortConfig) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)

		events, err := p.Events(ctx)
		if err != nil {
			out <- Result{Err: err}
			return
		}
		out <- Result{
			Events: events,
			Rows:   table.Sort(table.Flatten(events, p.loc), sortCfg),
		}
	}()
	return out
}
