package present

import (
	"math"
	"sort"

	"github.com/agenthands/rotcurve/internal/core/model"
)

// Series is one plottable line, X ascending.
type Series struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

func (s Series) Len() int { return len(s.X) }

type point struct{ x, y float64 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func newSeries(name string, pts []point) Series {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].x < pts[j].x })
	s := Series{Name: name, X: make([]float64, 0, len(pts)), Y: make([]float64, 0, len(pts))}
	for _, p := range pts {
		s.X = append(s.X, p.x)
		s.Y = append(s.Y, p.y)
	}
	return s
}

// Observed is the measured velocity of a catalogued galaxy against radius.
func Observed(e model.GalaxyEntry) Series {
	pts := make([]point, 0, len(e.Rows))
	for _, r := range e.Rows {
		if finite(r.RKpc) && finite(r.Vobs) {
			pts = append(pts, point{r.RKpc, r.Vobs})
		}
	}
	return newSeries("observed", pts)
}

// Curve splits a backend curve into its observed and predicted series.
func Curve(res *model.GalaxyResult) (obs, pred Series) {
	var o, p []point
	if res != nil {
		for _, c := range res.Curve {
			if !finite(c.R) {
				continue
			}
			if finite(c.VObs) {
				o = append(o, point{c.R, c.VObs})
			}
			if finite(c.VPred) {
				p = append(p, point{c.R, c.VPred})
			}
		}
	}
	return newSeries("observed", o), newSeries("predicted", p)
}

type Bar struct {
	Label string  `json:"galaxy"`
	Value float64 `json:"rms_kms"`
}

// Bars lists per-galaxy RMS values by galaxy name. Galaxies the backend
// reported without a usable RMS are left out.
func Bars(a *model.AggregateResult) []Bar {
	if a == nil {
		return nil
	}
	bars := make([]Bar, 0, len(a.PerGalaxy))
	for _, g := range a.PerGalaxy {
		if g.RMS == nil || !finite(*g.RMS) {
			continue
		}
		bars = append(bars, Bar{Label: g.Galaxy, Value: *g.RMS})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Label < bars[j].Label })
	return bars
}
