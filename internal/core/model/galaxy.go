package model

// RotationCurveRow is one radial sample of a galaxy's rotation curve.
// RKpc and Vobs are always finite. EVobs is nil when the source had no
// usable uncertainty; the component velocities default to 0.
type RotationCurveRow struct {
	RKpc  float64  `json:"R_kpc"`
	Vobs  float64  `json:"Vobs"`
	EVobs *float64 `json:"eVobs,omitempty"`
	Vgas  float64  `json:"Vgas"`
	Vdisk float64  `json:"Vdisk"`
	Vbul  float64  `json:"Vbul"`
}

// GalaxyEntry is one catalogued galaxy: the identifier derived from the
// archive member name and the rows parsed from it, in source order.
type GalaxyEntry struct {
	Name   string             `json:"galaxy_name"`
	Member string             `json:"member"`
	Rows   []RotationCurveRow `json:"rows"`
}

type MemberError struct {
	Member  string `json:"member"`
	Message string `json:"message"`
}

// LoadReport summarizes one archive load. Count is the number of galaxies
// indexed; Members is the number of matching archive members seen.
type LoadReport struct {
	Label    string        `json:"label,omitempty"`
	Members  int           `json:"members"`
	Count    int           `json:"count"`
	Galaxies []string      `json:"galaxies"`
	Errors   []MemberError `json:"errors"`
}
