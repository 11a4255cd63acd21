package present

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/agenthands/rotcurve/internal/core/model"
)

const (
	chartWidth  = 960
	chartHeight = 540
)

// ErrNothingToPlot is returned when every point was filtered out.
var ErrNothingToPlot = errors.New("nothing to plot")

func sortCurve(pts []model.CurvePoint) {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].R < pts[j].R })
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 2}
}

// pointStyle renders markers only.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: chart.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

// paddedRange keeps go-chart away from zero-width ranges.
func paddedRange(series ...Series) (x, y *chart.ContinuousRange) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	maxY := math.Inf(-1)
	for _, s := range series {
		for i := range s.X {
			minX = math.Min(minX, s.X[i])
			maxX = math.Max(maxX, s.X[i])
			maxY = math.Max(maxY, s.Y[i])
		}
	}
	if maxX-minX < 1e-9 {
		minX, maxX = minX-0.5, maxX+0.5
	}
	if minX > 0 {
		minX = 0
	}
	if maxY <= 0 {
		maxY = 1
	}
	return &chart.ContinuousRange{Min: minX, Max: maxX}, &chart.ContinuousRange{Min: 0, Max: maxY * 1.1}
}

// RenderCurvePNG plots observed points and the predicted line for one galaxy.
func RenderCurvePNG(w io.Writer, res *model.GalaxyResult) error {
	obs, pred := Curve(res)
	if obs.Len() == 0 && pred.Len() == 0 {
		return ErrNothingToPlot
	}

	var series []chart.Series
	if obs.Len() > 0 {
		series = append(series, chart.ContinuousSeries{Name: "V_obs", XValues: obs.X, YValues: obs.Y, Style: pointStyle(chart.ColorBlue)})
	}
	if pred.Len() > 0 {
		series = append(series, chart.ContinuousSeries{Name: "V_pred", XValues: pred.X, YValues: pred.Y, Style: lineStyle(chart.ColorRed)})
	}
	xr, yr := paddedRange(obs, pred)

	title := res.Galaxy
	if res.RMS != nil {
		title = fmt.Sprintf("%s  (RMS %.2f km/s)", res.Galaxy, *res.RMS)
	}
	ch := chart.Chart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "R (kpc)", Range: xr},
		YAxis:      chart.YAxis{Name: "V (km/s)", Range: yr},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// RenderAggregatePNG draws one bar per galaxy RMS.
func RenderAggregatePNG(w io.Writer, a *model.AggregateResult) error {
	bars := Bars(a)
	if len(bars) == 0 {
		return ErrNothingToPlot
	}

	values := make([]chart.Value, 0, len(bars))
	maxV := 0.0
	for _, b := range bars {
		values = append(values, chart.Value{Label: b.Label, Value: b.Value})
		maxV = math.Max(maxV, b.Value)
	}
	if maxV <= 0 {
		maxV = 1
	}

	title := a.Label
	if a.AggregateRMS != nil {
		title = fmt.Sprintf("%s  (RMS %.2f km/s, n=%d)", a.Label, *a.AggregateRMS, a.Count)
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth(len(values)),
		BarSpacing: barWidth(len(values)),
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: maxV * 1.1}},
		Bars:       values,
	}
	return bc.Render(chart.PNG, w)
}

func barWidth(n int) int {
	w := (chartWidth - 80) / (n * 2)
	if w < 2 {
		return 2
	}
	if w > 60 {
		return 60
	}
	return w
}
