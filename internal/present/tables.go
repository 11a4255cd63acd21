package present

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/agenthands/rotcurve/internal/core/model"
)

func newTable(header ...interface{}) table.Writer {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row(header))
	return w
}

func rightAlign(numbers ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(numbers))
	for _, n := range numbers {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	return cfgs
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

// CatalogTable lists catalogued galaxies with their source member.
func CatalogTable(entries []model.GalaxyEntry) string {
	w := newTable("Galaxy", "Member", "Rows", "R max (kpc)")
	w.SetColumnConfigs(rightAlign(3, 4))
	for _, e := range entries {
		maxR := 0.0
		for _, r := range e.Rows {
			if r.RKpc > maxR {
				maxR = r.RKpc
			}
		}
		w.AppendRow(table.Row{e.Name, e.Member, len(e.Rows), formatFloat(maxR)})
	}
	w.AppendFooter(table.Row{"", "Total", len(entries), ""})
	return w.Render()
}

// ReportTable shows members that failed to parse. It is empty when none did.
func ReportTable(report *model.LoadReport) string {
	if report == nil || len(report.Errors) == 0 {
		return ""
	}
	w := newTable("Member", "Error")
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	for _, e := range report.Errors {
		w.AppendRow(table.Row{e.Member, e.Message})
	}
	return w.Render()
}

func RowsTable(e model.GalaxyEntry) string {
	w := newTable("R_kpc", "Vobs", "eVobs", "Vgas", "Vdisk", "Vbul")
	w.SetColumnConfigs(rightAlign(1, 2, 3, 4, 5, 6))
	for _, r := range e.Rows {
		w.AppendRow(table.Row{formatFloat(r.RKpc), formatFloat(r.Vobs), optional(r.EVobs),
			formatFloat(r.Vgas), formatFloat(r.Vdisk), formatFloat(r.Vbul)})
	}
	return w.Render()
}

func CurveTable(res *model.GalaxyResult) string {
	w := newTable("R_kpc", "V_obs", "V_pred")
	w.SetColumnConfigs(rightAlign(1, 2, 3))
	if res == nil {
		return w.Render()
	}
	pts := append([]model.CurvePoint{}, res.Curve...)
	sortCurve(pts)
	for _, p := range pts {
		w.AppendRow(table.Row{formatFloat(p.R), formatFloat(p.VObs), formatFloat(p.VPred)})
	}
	w.AppendFooter(table.Row{"RMS", optional(res.RMS), ""})
	return w.Render()
}

func AggregateTable(a *model.AggregateResult) string {
	w := newTable("Galaxy", "RMS (km/s)")
	w.SetColumnConfigs(rightAlign(2))
	if a == nil {
		return w.Render()
	}
	for _, g := range a.PerGalaxy {
		w.AppendRow(table.Row{g.Galaxy, optional(g.RMS)})
	}
	w.AppendFooter(table.Row{a.Label, optional(a.AggregateRMS)})
	return w.Render()
}
