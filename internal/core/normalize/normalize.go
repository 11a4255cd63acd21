package normalize

import (
	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/core/table"
)

// Row converts one raw row. It reports false when radius or observed
// velocity is absent; those rows are dropped, never defaulted. The mass
// components default to 0 and the uncertainty stays nil when absent.
func Row(raw table.RawRow) (model.RotationCurveRow, bool) {
	r, v := raw.Get(table.Radius), raw.Get(table.Vobs)
	if !r.Valid || !v.Valid {
		return model.RotationCurveRow{}, false
	}

	row := model.RotationCurveRow{
		RKpc:  r.Float,
		Vobs:  v.Float,
		Vgas:  orZero(raw.Get(table.Vgas)),
		Vdisk: orZero(raw.Get(table.Vdisk)),
		Vbul:  orZero(raw.Get(table.Vbul)),
	}
	if e := raw.Get(table.EVobs); e.Valid {
		ev := e.Float
		row.EVobs = &ev
	}
	return row, true
}

// Rows converts raws in order and returns how many were dropped.
func Rows(raws []table.RawRow) ([]model.RotationCurveRow, int) {
	rows := make([]model.RotationCurveRow, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		row, ok := Row(raw)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped
}

func orZero(v table.Value) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float
}
