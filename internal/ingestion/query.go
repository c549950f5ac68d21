package ingestion

import (
	"net/url"
	"strconv"
	"time"

	"github.com/polymarket-window-dashboard/internal/config"
)

// Query holds the fixed /events parameters of one query variant. limit and
// offset are added per page by the client.
type Query struct {
	Variant string
	values  url.Values
}

// Values returns a copy that callers may modify.
func (q Query) Values() url.Values {
	out := make(url.Values, len(q.values))
	for k, v := range q.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// OpenQuery asks for every event that is not closed. Window, volume and
// liquidity narrowing is left to the caller.
func OpenQuery() Query {
	return Query{
		Variant: config.QueryVariantOpen,
		values:  url.Values{"closed": {"false"}},
	}
}

// FilteredQuery lets the API narrow results to active events ending before
// today+windowDays with at least the given liquidity and volume, newest end
// date first.
func FilteredQuery(now time.Time, windowDays, liquidityMin, volumeMin int) Query {
	endMax := now.UTC().AddDate(0, 0, windowDays).Format("2006-01-02")
	return Query{
		Variant: config.QueryVariantFiltered,
		values: url.Values{
			"closed":        {"false"},
			"active":        {"true"},
			"order":         {"endDate"},
			"ascending":     {"false"},
			"end_date_max":  {endMax},
			"liquidity_min": {strconv.Itoa(liquidityMin)},
			"volume_min":    {strconv.Itoa(volumeMin)},
		},
	}
}

// QueryFor builds the query configured by cfg for a fetch starting at now.
func QueryFor(cfg config.PolymarketConfig, windowDays int, now time.Time) Query {
	if cfg.QueryVariant == config.QueryVariantFiltered {
		return FilteredQuery(now, windowDays, cfg.LiquidityMin, cfg.VolumeMin)
	}
	return OpenQuery()
}
