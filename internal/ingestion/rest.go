package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/polymarket-window-dashboard/internal/config"
	"github.com/polymarket-window-dashboard/internal/model"
)

const (
	// DefaultPageSize is the Gamma default page length for /events.
	DefaultPageSize = 20
	// DefaultPageDelay is the courtesy pause between two page requests.
	DefaultPageDelay = 100 * time.Millisecond

	maxErrorBody = 4 << 10
)

// RESTClient pages through the Gamma /events endpoint.
type RESTClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	pageSize  int
	pageDelay time.Duration
	logger    *zap.Logger
}

type Option func(*RESTClient)

func WithHTTPClient(c *http.Client) Option {
	return func(rc *RESTClient) { rc.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(rc *RESTClient) {
		if l != nil {
			rc.logger = l
		}
	}
}

func WithPageDelay(d time.Duration) Option {
	return func(rc *RESTClient) { rc.pageDelay = d }
}

func WithPageSize(n int) Option {
	return func(rc *RESTClient) {
		if n > 0 {
			rc.pageSize = n
		}
	}
}

func NewRESTClient(baseURL string, opts ...Option) *RESTClient {
	c := &RESTClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "polymarket-window-dashboard/1.0",
		client:    &http.Client{Timeout: 30 * time.Second},
		pageSize:  DefaultPageSize,
		pageDelay: DefaultPageDelay,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRESTClientFromConfig wires a client from the [polymarket] section.
func NewRESTClientFromConfig(cfg config.PolymarketConfig, logger *zap.Logger) *RESTClient {
	c := NewRESTClient(cfg.APIBaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		WithLogger(logger),
		WithPageDelay(cfg.PageDelay()),
		WithPageSize(cfg.PageSize),
	)
	if cfg.UserAgent != "" {
		c.userAgent = cfg.UserAgent
	}
	return c
}

// FetchAllPages requests /events page by page, starting at offset 0, until a
// page comes back empty. Requests are strictly sequential; after every
// non-empty page the client waits the page delay, measured from the moment
// the response was read, before asking for the next one. Any transport
// failure or non-2xx status aborts the whole run with an *UpstreamError;
// pages read before the failure are discarded.
func (c *RESTClient) FetchAllPages(ctx context.Context, query Query) ([]model.Event, error) {
	var all []model.Event
	offset := 0

	for page := 1; ; page++ {
		events, err := c.fetchPage(ctx, query, offset)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("fetched events page",
			zap.Int("page", page),
			zap.Int("offset", offset),
			zap.Int("count", len(events)),
		)

		if len(events) == 0 {
			break
		}

		all = append(all, events...)
		offset += c.pageSize

		if err := pause(ctx, c.pageDelay); err != nil {
			return nil, err
		}
	}

	return all, nil
}

// pause blocks for d starting now, or until ctx is done. The limiter's only
// token is spent immediately, so Wait returns one full interval later.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	limiter := rate.NewLimiter(rate.Every(d), 1)
	limiter.Allow()
	return limiter.Wait(ctx)
}

func (c *RESTClient) fetchPage(ctx context.Context, query Query, offset int) ([]model.Event, error) {
	url := c.baseURL + "/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	q := query.Values()
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("offset", strconv.Itoa(offset))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Offset: offset, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{Offset: offset, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var events []model.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, &UpstreamError{Offset: offset, Err: fmt.Errorf("decode events page: %w", err)}
	}

	return events, nil
}
