// Package charts shapes table rows into the {title, labels, datasets}
// structure the dashboard's Chart.js widgets render.
package charts

import (
	"github.com/polymarket-window-dashboard/internal/table"
)

type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	YAxisID         string    `json:"yAxisID,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BackgroundColor string    `json:"backgroundColor,omitempty"`
}

type Data struct {
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

const (
	oddsColor   = "rgb(53, 162, 235)"
	volumeColor = "rgb(255, 99, 132)"
)

// VolumeBar charts the n highest-volume rows.
func VolumeBar(rows []table.Row, n int) Data {
	top := limit(table.Sort(rows, table.SortConfig{Key: table.KeyVolume, Direction: table.Desc}), n)

	data := Data{
		Title:  "Top Markets by Volume",
		Labels: make([]string, 0, len(top)),
		Datasets: []Dataset{{
			Label:           "Volume",
			Data:            make([]float64, 0, len(top)),
			BackgroundColor: "rgba(255, 99, 132, 0.5)",
			BorderColor:     volumeColor,
		}},
	}
	for _, r := range top {
		data.Labels = append(data.Labels, label(r))
		data.Datasets[0].Data = append(data.Datasets[0].Data, table.ParseVolume(r.Volume))
	}
	return data
}

// OddsVolumeLine charts the n soonest-ending rows with odds on the left axis
// (y) and volume on the right axis (y1). Rows without an end date are left
// out.
func OddsVolumeLine(rows []table.Row, n int) Data {
	dated := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if _, ok := table.ParseDate(r.EndDate); ok {
			dated = append(dated, r)
		}
	}
	soonest := limit(table.Sort(dated, table.SortConfig{Key: table.KeyEndDate, Direction: table.Asc}), n)

	odds := Dataset{Label: "Odds", YAxisID: "y", BorderColor: oddsColor, BackgroundColor: "rgba(53, 162, 235, 0.5)",
		Data: make([]float64, 0, len(soonest))}
	volume := Dataset{Label: "Volume", YAxisID: "y1", BorderColor: volumeColor, BackgroundColor: "rgba(255, 99, 132, 0.5)",
		Data: make([]float64, 0, len(soonest))}
	labels := make([]string, 0, len(soonest))

	for _, r := range soonest {
		labels = append(labels, label(r))
		odds.Data = append(odds.Data, table.ParseOdds(r.Odds))
		volume.Data = append(volume.Data, table.ParseVolume(r.Volume))
	}

	return Data{
		Title:    "Odds and Volume by End Date",
		Labels:   labels,
		Datasets: []Dataset{odds, volume},
	}
}

func label(r table.Row) string {
	if r.MarketName == "" || r.MarketName == "Unknown" {
		return r.EventName
	}
	return r.EventName + " - " + r.MarketName
}

func limit(rows []table.Row, n int) []table.Row {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
