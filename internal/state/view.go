package state

import (
	"github.com/polymarket-window-dashboard/internal/table"
)

// View is the dashboard's presentation state. Values are never mutated in
// place; Reduce returns a new View for every action.
type View struct {
	Loading bool
	Err     string
	Rows    []table.Row
	Sort    table.SortConfig
}

// Action is one of FetchStarted, FetchSucceeded, FetchFailed or
// SortRequested.
type Action interface {
	isAction()
}

type FetchStarted struct{}

type FetchSucceeded struct {
	Rows []table.Row
}

type FetchFailed struct {
	Err error
}

type SortRequested struct {
	Key table.SortKey
}

func (FetchStarted) isAction()   {}
func (FetchSucceeded) isAction() {}
func (FetchFailed) isAction()    {}
func (SortRequested) isAction()  {}

// Initial is the state before the first fetch completes: loading, unsorted.
func Initial() View {
	return View{
		Loading: true,
		Sort:    table.SortConfig{Key: table.KeyNone, Direction: table.Desc},
	}
}

// WithSort is Initial with a sort already chosen, e.g. restored from a URL.
func WithSort(cfg table.SortConfig) View {
	v := Initial()
	v.Sort = cfg
	return v
}

func Reduce(v View, a Action) View {
	switch a := a.(type) {
	case FetchStarted:
		v.Loading = true
		v.Err = ""
		return v

	case FetchSucceeded:
		// the chosen sort survives re-fetches
		v.Loading = false
		v.Err = ""
		v.Rows = table.Sort(a.Rows, v.Sort)
		return v

	case FetchFailed:
		v.Loading = false
		v.Rows = nil
		v.Err = "Failed to fetch market data"
		if a.Err != nil {
			v.Err = a.Err.Error()
		}
		return v

	case SortRequested:
		v.Sort = v.Sort.Toggle(a.Key)
		v.Rows = table.Sort(v.Rows, v.Sort)
		return v

	default:
		return v
	}
}

// NextSort is the config a click on key's header would produce.
func (v View) NextSort(key table.SortKey) table.SortConfig {
	return v.Sort.Toggle(key)
}

// SortIndicator returns the arrow shown next to key's header.
func (v View) SortIndicator(key table.SortKey) string {
	if v.Sort.Key != key || key == table.KeyNone {
		return ""
	}
	if v.Sort.Direction == table.Asc {
		return " ↑"
	}
	return " ↓"
}
