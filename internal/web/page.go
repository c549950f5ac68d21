// Package web renders the dashboard page: the sortable market table and the
// two chart widgets.
package web

import (
	_ "embed"
	"html/template"
	"io"
	"net/url"

	"github.com/polymarket-window-dashboard/internal/charts"
	"github.com/polymarket-window-dashboard/internal/state"
	"github.com/polymarket-window-dashboard/internal/table"
)

//go:embed templates/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

const DefaultTitle = "Polymarket Markets"

var columnTitles = map[table.SortKey]string{
	table.KeyEventName:  "Event",
	table.KeyMarketName: "Market",
	table.KeyPosition:   "Position",
	table.KeyOdds:       "Odds",
	table.KeyEndDate:    "End Date",
	table.KeyVolume:     "Volume",
}

// Column is one table header. Href requests the sort a click should apply.
type Column struct {
	Key       table.SortKey
	Title     string
	Href      string
	Indicator string
}

type Page struct {
	Title      string
	WindowDays int
	View       state.View
	Columns    []Column
	Volume     charts.Data
	OddsVolume charts.Data
}

// NewPage prepares v for rendering, charting at most chartSize rows per
// widget.
func NewPage(v state.View, windowDays, chartSize int) Page {
	p := Page{
		Title:      DefaultTitle,
		WindowDays: windowDays,
		View:       v,
		Columns:    Columns(v),
	}
	if !v.Loading && v.Err == "" {
		p.Volume = charts.VolumeBar(v.Rows, chartSize)
		p.OddsVolume = charts.OddsVolumeLine(v.Rows, chartSize)
	}
	return p
}

func Columns(v state.View) []Column {
	cols := make([]Column, 0, len(table.Keys))
	for _, key := range table.Keys {
		cols = append(cols, Column{
			Key:       key,
			Title:     columnTitles[key],
			Href:      SortHref(v.NextSort(key)),
			Indicator: v.SortIndicator(key),
		})
	}
	return cols
}

// SortHref encodes cfg as the page's query string.
func SortHref(cfg table.SortConfig) string {
	q := url.Values{}
	q.Set("sort", string(cfg.Key))
	q.Set("dir", string(cfg.Direction))
	return "?" + q.Encode()
}

// SortFromQuery reads the sort chosen by a header link. Unknown keys leave
// the rows unsorted.
func SortFromQuery(q url.Values) table.SortConfig {
	key, ok := table.ParseSortKey(q.Get("sort"))
	if !ok {
		return table.SortConfig{Key: table.KeyNone, Direction: table.Desc}
	}
	return table.SortConfig{Key: key, Direction: table.ParseDirection(q.Get("dir"))}
}

func Render(w io.Writer, p Page) error {
	return indexTmpl.Execute(w, p)
}
