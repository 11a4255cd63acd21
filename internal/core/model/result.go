package model

import (
	"encoding/json"
	"math"
)

type ResultKind string

const (
	KindGalaxy    ResultKind = "galaxy"
	KindAggregate ResultKind = "aggregate"
)

// AggregateKind names a bulk endpoint and the top-level key of its response.
type AggregateKind string

const (
	AggregateGlobal AggregateKind = "global"
	AggregateDwarfs AggregateKind = "dwarfs"
)

// CurvePoint is one radius of a backend curve. A velocity the backend left
// null is NaN, and travels as null in JSON.
type CurvePoint struct {
	R     float64 `json:"r"`
	VObs  float64 `json:"v_obs"`
	VPred float64 `json:"v_pred"`
}

type curvePointJSON struct {
	R     float64  `json:"r"`
	VObs  *float64 `json:"v_obs"`
	VPred *float64 `json:"v_pred"`
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func (p CurvePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(curvePointJSON{R: p.R, VObs: finiteOrNil(p.VObs), VPred: finiteOrNil(p.VPred)})
}

func (p *CurvePoint) UnmarshalJSON(data []byte) error {
	var w curvePointJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = CurvePoint{R: w.R, VObs: orNaN(w.VObs), VPred: orNaN(w.VPred)}
	return nil
}

// GalaxyResult is the normalized macro result for one galaxy. RMS is nil
// when the backend did not report one. Micro is passed through untouched.
type GalaxyResult struct {
	Galaxy string          `json:"galaxy"`
	RMS    *float64        `json:"rms"`
	Curve  []CurvePoint    `json:"curve"`
	Shape  string          `json:"shape"`
	Micro  json.RawMessage `json:"micro,omitempty"`
}

type GalaxyRMS struct {
	Galaxy string   `json:"galaxy"`
	RMS    *float64 `json:"rms_kms"`
}

// AggregateResult is the normalized answer of a bulk endpoint.
type AggregateResult struct {
	Label        string          `json:"label"`
	AggregateRMS *float64        `json:"aggregate_rms"`
	Count        int             `json:"count"`
	PerGalaxy    []GalaxyRMS     `json:"per_galaxy"`
	Micro        json.RawMessage `json:"micro,omitempty"`
}

// ComputeResult is a tagged union over the two response families. Exactly
// one of Galaxy and Aggregate is set, matching Kind.
type ComputeResult struct {
	Kind      ResultKind       `json:"kind"`
	Galaxy    *GalaxyResult    `json:"galaxy,omitempty"`
	Aggregate *AggregateResult `json:"aggregate,omitempty"`
}

// MicroResult holds the auxiliary scalars some backends expose. Any of them
// may be nil.
type MicroResult struct {
	MW  *float64        `json:"mW_GeV"`
	MMu *float64        `json:"m_mu_pred_MeV"`
	ME  *float64        `json:"m_e_pred_MeV"`
	Raw json.RawMessage `json:"raw,omitempty"`
}
