package table

import (
	"sort"
	"strings"
	"time"
)

type SortKey string

const (
	KeyNone       SortKey = ""
	KeyEventName  SortKey = "eventName"
	KeyMarketName SortKey = "marketName"
	KeyPosition   SortKey = "position"
	KeyOdds       SortKey = "odds"
	KeyEndDate    SortKey = "endDate"
	KeyVolume     SortKey = "volume"
)

// Keys lists the sortable columns in display order.
var Keys = []SortKey{KeyEventName, KeyMarketName, KeyPosition, KeyOdds, KeyEndDate, KeyVolume}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortConfig struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle returns the config after a click on key's column header: ascending
// on a new key, flipping asc to desc on a repeated one, and back to asc after
// desc.
func (c SortConfig) Toggle(key SortKey) SortConfig {
	if c.Key == key && c.Direction == Asc {
		return SortConfig{Key: key, Direction: Desc}
	}
	return SortConfig{Key: key, Direction: Asc}
}

func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range Keys {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return KeyNone, false
}

// ParseDirection maps anything other than "desc" to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Sort returns a sorted copy of rows. Rows with equal keys keep their
// relative order. KeyNone returns an unsorted copy.
func Sort(rows []Row, cfg SortConfig) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	less := lessFor(cfg.Key)
	if less == nil {
		return out
	}

	if cfg.Direction == Desc {
		sort.SliceStable(out, func(i, j int) bool { return less(out[j], out[i]) })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func lessFor(key SortKey) func(a, b Row) bool {
	switch key {
	case KeyEventName:
		return func(a, b Row) bool { return a.EventName < b.EventName }
	case KeyMarketName:
		return func(a, b Row) bool { return a.MarketName < b.MarketName }
	case KeyPosition:
		return func(a, b Row) bool { return a.Position < b.Position }
	case KeyOdds:
		return func(a, b Row) bool { return ParseOdds(a.Odds) < ParseOdds(b.Odds) }
	case KeyVolume:
		return func(a, b Row) bool { return ParseVolume(a.Volume) < ParseVolume(b.Volume) }
	case KeyEndDate:
		return func(a, b Row) bool { return dateValue(a.EndDate).Before(dateValue(b.EndDate)) }
	default:
		return nil
	}
}

// dateValue sorts NotAvailable and other unparseable dates as the zero time.
func dateValue(s string) time.Time {
	t, _ := ParseDate(s)
	return t
}
