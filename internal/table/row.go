package table

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polymarket-window-dashboard/internal/model"
)

// Position labels. Index 0 of a market's prices is always reported as Yes.
const (
	PositionYes = "Yes"
	PositionNo  = "No"
)

// Row is one open market, formatted for display.
type Row struct {
	EventName  string `json:"eventName"`
	MarketName string `json:"marketName"`
	Position   string `json:"position"`
	Odds       string `json:"odds"`
	EndDate    string `json:"endDate"`
	Volume     string `json:"volume"`
}

// Flatten expands every event into one row per eligible market, in input
// order. Dates are rendered in loc; nil means time.Local.
func Flatten(events []model.Event, loc *time.Location) []Row {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]Row, 0, len(events))
	for _, event := range events {
		for _, m := range event.Markets {
			if row, ok := FlattenMarket(event.Title, m, loc); ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// FlattenMarket builds the row for a single market. ok is false when the
// market is closed or its outcome lists are missing or malformed; such
// markets are skipped, never reported as errors.
func FlattenMarket(eventTitle string, m model.Market, loc *time.Location) (Row, bool) {
	if m.Closed {
		return Row{}, false
	}
	prices, ok := m.PriceStrings()
	if !ok || len(prices) < 2 {
		return Row{}, false
	}
	if _, ok := m.OutcomeLabels(); !ok {
		return Row{}, false
	}

	p0, p1 := parsePrice(prices[0]), parsePrice(prices[1])

	// ties go to index 0
	position, price := PositionYes, p0
	if p1.GreaterThan(p0) {
		position, price = PositionNo, p1
	}

	name := m.GroupItemTitle
	if name == "" {
		name = "Unknown"
	}

	return Row{
		EventName:  eventTitle,
		MarketName: name,
		Position:   position,
		Odds:       FormatOdds(price),
		EndDate:    formatEndDate(m, loc),
		Volume:     FormatVolume(m.Volume.String()),
	}, true
}

func parsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func formatEndDate(m model.Market, loc *time.Location) string {
	end, ok := m.DisplayEndTime()
	if !ok {
		return NotAvailable
	}
	return FormatDate(end, loc)
}
