package scheduleservice

import (
	"bytes"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colours the rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Accent     drawing.Color
	TextColor  drawing.Color
}

// DefaultChartPalette is used by the HTTP and workbook exports.
var DefaultChartPalette = ChartPalette{
	Background: drawing.ColorFromHex("ffffff"),
	Bar:        drawing.ColorFromHex("1f6f50"),
	Accent:     drawing.ColorFromHex("c9a227"),
	TextColor:  drawing.ColorFromHex("222222"),
}

// GenerateGamesPerDateChart renders a PNG bar chart of games per date.
func GenerateGamesPerDateChart(counts []scheduledomain.DateCount, palette ChartPalette) ([]byte, error) {
	if len(counts) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	bars := make([]chart.Value, len(counts))
	maxCount := 0
	for i, c := range counts {
		bars[i] = chart.Value{
			Label: c.Date.Format("Jan 02"),
			Value: float64(c.GameCount),
			Style: chart.Style{
				FillColor:   palette.Bar,
				StrokeColor: palette.Accent,
				StrokeWidth: 1,
			},
		}
		maxCount = max(maxCount, c.GameCount)
	}

	graph := chart.BarChart{
		Title:    "Games per date",
		Width:    max(640, 60*len(bars)),
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(maxCount + 1),
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws a single empty bar under a "No games scheduled"
// title; go-chart refuses to render a chart without bars.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	graph := chart.BarChart{
		Title:    "No games scheduled",
		Width:    400,
		Height:   200,
		BarWidth: 40,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: []chart.Value{{Label: "-", Value: 0, Style: chart.Style{FillColor: palette.Background}}},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
