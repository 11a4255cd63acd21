package present

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/agenthands/rotcurve/internal/core/model"
)

// formatFloat leaves a non-finite value as an empty cell.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func writeAll(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCurveCSV writes R_kpc,V_obs,V_pred ordered by radius.
func WriteCurveCSV(w io.Writer, res *model.GalaxyResult) error {
	var records [][]string
	if res != nil {
		pts := append([]model.CurvePoint{}, res.Curve...)
		sortCurve(pts)
		for _, p := range pts {
			records = append(records, []string{formatFloat(p.R), formatFloat(p.VObs), formatFloat(p.VPred)})
		}
	}
	return writeAll(w, []string{"R_kpc", "V_obs", "V_pred"}, records)
}

// WriteAggregateCSV writes galaxy,rms_kms in the backend's order. A missing
// RMS is an empty cell.
func WriteAggregateCSV(w io.Writer, a *model.AggregateResult) error {
	var records [][]string
	if a != nil {
		for _, g := range a.PerGalaxy {
			records = append(records, []string{g.Galaxy, formatOptional(g.RMS)})
		}
	}
	return writeAll(w, []string{"galaxy", "rms_kms"}, records)
}

// WriteRowsCSV writes the normalized rows of one catalogued galaxy.
func WriteRowsCSV(w io.Writer, e model.GalaxyEntry) error {
	records := make([][]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		records = append(records, []string{
			formatFloat(r.RKpc),
			formatFloat(r.Vobs),
			formatOptional(r.EVobs),
			formatFloat(r.Vgas),
			formatFloat(r.Vdisk),
			formatFloat(r.Vbul),
		})
	}
	return writeAll(w, []string{"R_kpc", "Vobs", "eVobs", "Vgas", "Vdisk", "Vbul"}, records)
}
