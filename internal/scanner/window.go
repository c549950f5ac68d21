package scanner

import (
	"time"

	"github.com/polymarket-window-dashboard/internal/model"
)

// DefaultWindowDays is how far ahead a market may end and still be shown.
const DefaultWindowDays = 5

// WindowFromDays converts a day count to a window length. Days are fixed
// 24 hour spans.
func WindowFromDays(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

// MarketInWindow reports whether m is open and ends within [now, now+window].
func MarketInWindow(m model.Market, now time.Time, window time.Duration) bool {
	if m.Closed {
		return false
	}
	end, ok := m.EndTime()
	if !ok {
		return false
	}
	return !end.Before(now) && !end.After(now.Add(window))
}

// FilterOpenWithinWindow keeps the events that have at least one market
// satisfying MarketInWindow. Events are returned unchanged, including their
// markets that fall outside the window. The input slice is not modified.
func FilterOpenWithinWindow(events []model.Event, now time.Time, window time.Duration) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, event := range events {
		if eventInWindow(event, now, window) {
			out = append(out, event)
		}
	}
	return out
}

func eventInWindow(event model.Event, now time.Time, window time.Duration) bool {
	for _, m := range event.Markets {
		if MarketInWindow(m, now, window) {
			return true
		}
	}
	return false
}
