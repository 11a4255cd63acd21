package compute

import "github.com/agenthands/rotcurve/internal/core/model"

// PayloadRow is the row schema the backend accepts. The uncertainty is not
// sent.
type PayloadRow struct {
	RKpc  float64 `json:"R_kpc"`
	Vobs  float64 `json:"Vobs"`
	Vgas  float64 `json:"Vgas"`
	Vdisk float64 `json:"Vdisk"`
	Vbul  float64 `json:"Vbul"`
}

type GalaxyPayload struct {
	GalaxyName string       `json:"galaxy_name"`
	Rows       []PayloadRow `json:"rows"`
}

type BulkPayload struct {
	Galaxies []GalaxyPayload `json:"galaxies"`
}

func NewGalaxyPayload(e model.GalaxyEntry) GalaxyPayload {
	rows := make([]PayloadRow, 0, len(e.Rows))
	for _, r := range e.Rows {
		rows = append(rows, PayloadRow{RKpc: r.RKpc, Vobs: r.Vobs, Vgas: r.Vgas, Vdisk: r.Vdisk, Vbul: r.Vbul})
	}
	return GalaxyPayload{GalaxyName: e.Name, Rows: rows}
}

func NewBulkPayload(entries []model.GalaxyEntry) BulkPayload {
	p := BulkPayload{Galaxies: make([]GalaxyPayload, 0, len(entries))}
	for _, e := range entries {
		p.Galaxies = append(p.Galaxies, NewGalaxyPayload(e))
	}
	return p
}

// microProbe is the smallest /compute request that still makes the backend
// report its micro block.
var microProbe = GalaxyPayload{
	GalaxyName: "MICRO_ONLY",
	Rows:       []PayloadRow{{RKpc: 1, Vobs: 1}},
}
