package compute

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/agenthands/rotcurve/internal/core/model"
)

// Accepted spellings, in priority order.
var (
	radiusKeys    = []string{"R_kpc", "r_kpc", "R", "r", "radius", "radii"}
	observedKeys  = []string{"V_obs", "Vobs", "v_obs", "vobs"}
	predictedKeys = []string{"V_pred", "Vpred", "v_pred", "vpred", "V_real", "V_model"}
	containerKeys = []string{"data", "rows", "curve", "points"}
	rmsKeys       = []string{"rms_kms", "rms", "RMS"}
	galaxyKeys    = []string{"galaxy", "galaxy_name", "name"}
)

// curveShape is one accepted layout of a macro block. Shapes are tried in
// order and the first that matches wins.
type curveShape struct {
	name    string
	extract func(macro gjson.Result) ([]model.CurvePoint, bool)
}

var curveShapes = []curveShape{
	{name: "rows", extract: rowArrayCurve},
	{name: "columns", extract: parallelArrayCurve},
}

// Decode classifies a backend body by its top-level key and normalizes it.
// "macro" yields a galaxy result, "global" or "dwarfs" an aggregate one.
func Decode(endpoint string, body []byte) (model.ComputeResult, error) {
	if !gjson.ValidBytes(body) {
		return model.ComputeResult{}, &ResponseShapeError{Endpoint: endpoint, Reason: "body is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return model.ComputeResult{}, &ResponseShapeError{Endpoint: endpoint, Reason: "body is not a JSON object"}
	}

	if macro := root.Get("macro"); macro.Exists() {
		g, err := decodeGalaxy(endpoint, root, macro)
		if err != nil {
			return model.ComputeResult{}, err
		}
		return model.ComputeResult{Kind: model.KindGalaxy, Galaxy: g}, nil
	}
	for _, label := range []model.AggregateKind{model.AggregateGlobal, model.AggregateDwarfs} {
		if block := root.Get(string(label)); block.Exists() {
			a, err := decodeAggregate(endpoint, root, string(label), block)
			if err != nil {
				return model.ComputeResult{}, err
			}
			return model.ComputeResult{Kind: model.KindAggregate, Aggregate: a}, nil
		}
	}
	return model.ComputeResult{}, &ResponseShapeError{Endpoint: endpoint, Reason: "no macro, global or dwarfs block"}
}

func decodeGalaxy(endpoint string, root, macro gjson.Result) (*model.GalaxyResult, error) {
	if !macro.IsObject() {
		return nil, &ResponseShapeError{Endpoint: endpoint, Reason: "macro is not an object"}
	}
	for _, shape := range curveShapes {
		curve, ok := shape.extract(macro)
		if !ok {
			continue
		}
		res := &model.GalaxyResult{
			Galaxy: firstString(root, galaxyKeys...),
			RMS:    firstNumber(macro, rmsKeys...),
			Curve:  curve,
			Shape:  shape.name,
			Micro:  rawObject(root.Get("micro")),
		}
		if res.Galaxy == "" {
			res.Galaxy = firstString(macro, galaxyKeys...)
		}
		return res, nil
	}
	return nil, &ResponseShapeError{Endpoint: endpoint, Reason: "macro has no recognized curve"}
}

// rowArrayCurve accepts macro.<container> as an array of objects carrying
// radius, observed and predicted under any accepted spelling, or of
// [r, v_obs, v_pred] triples. An empty array is a valid, empty curve.
// Every element needs a numeric radius. A null or missing velocity becomes
// NaN, but some element must name each velocity.
func rowArrayCurve(macro gjson.Result) ([]model.CurvePoint, bool) {
	for _, key := range containerKeys {
		arr := macro.Get(key)
		if !arr.IsArray() {
			continue
		}
		points := []model.CurvePoint{}
		ok := true
		sawObs, sawPred := false, false
		for _, el := range arr.Array() {
			p, good := pointFrom(el)
			if !good {
				ok = false
				break
			}
			points = append(points, p)
			if el.IsArray() {
				sawObs, sawPred = true, true
				continue
			}
			sawObs = sawObs || hasAny(el, observedKeys...)
			sawPred = sawPred || hasAny(el, predictedKeys...)
		}
		if ok && (len(points) == 0 || (sawObs && sawPred)) {
			return points, true
		}
	}
	return nil, false
}

func pointFrom(el gjson.Result) (model.CurvePoint, bool) {
	if el.IsArray() {
		vals := el.Array()
		if len(vals) < 3 || vals[0].Type != gjson.Number {
			return model.CurvePoint{}, false
		}
		return model.CurvePoint{R: vals[0].Num, VObs: numberOrNaN(vals[1]), VPred: numberOrNaN(vals[2])}, true
	}
	if !el.IsObject() {
		return model.CurvePoint{}, false
	}
	r := firstNumber(el, radiusKeys...)
	if r == nil {
		return model.CurvePoint{}, false
	}
	return model.CurvePoint{
		R:     *r,
		VObs:  numberOrNaN(firstPresent(el, observedKeys...)),
		VPred: numberOrNaN(firstPresent(el, predictedKeys...)),
	}, true
}

func hasAny(obj gjson.Result, keys ...string) bool {
	return firstPresent(obj, keys...).Exists()
}

// firstPresent prefers a numeric spelling, then any spelling that exists.
func firstPresent(obj gjson.Result, keys ...string) gjson.Result {
	var found gjson.Result
	for _, k := range keys {
		v := obj.Get(k)
		if v.Type == gjson.Number {
			return v
		}
		if !found.Exists() && v.Exists() {
			found = v
		}
	}
	return found
}

func numberOrNaN(v gjson.Result) float64 {
	if v.Type != gjson.Number {
		return math.NaN()
	}
	return v.Num
}

// parallelArrayCurve accepts equal-length numeric arrays, either directly
// on macro or on an object under one of the container keys. Velocity
// arrays may hold nulls, read as NaN.
func parallelArrayCurve(macro gjson.Result) ([]model.CurvePoint, bool) {
	candidates := []gjson.Result{macro}
	for _, key := range containerKeys {
		if obj := macro.Get(key); obj.IsObject() {
			candidates = append(candidates, obj)
		}
	}
	for _, obj := range candidates {
		rs, ok1 := firstNumberArray(obj, false, withPlurals(radiusKeys)...)
		obs, ok2 := firstNumberArray(obj, true, withPlurals(observedKeys)...)
		ps, ok3 := firstNumberArray(obj, true, withPlurals(predictedKeys)...)
		if !ok1 || !ok2 || !ok3 || len(rs) != len(obs) || len(rs) != len(ps) {
			continue
		}
		points := make([]model.CurvePoint, len(rs))
		for i := range rs {
			points[i] = model.CurvePoint{R: rs[i], VObs: obs[i], VPred: ps[i]}
		}
		return points, true
	}
	return nil, false
}

// withPlurals interleaves each key with its plural, so "r" also matches "rs".
func withPlurals(keys []string) []string {
	out := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, k+"s")
	}
	return out
}

func decodeAggregate(endpoint string, root gjson.Result, label string, block gjson.Result) (*model.AggregateResult, error) {
	if !block.IsObject() {
		return nil, &ResponseShapeError{Endpoint: endpoint, Reason: label + " is not an object"}
	}
	per := block.Get("per_galaxy")
	if !per.IsArray() {
		return nil, &ResponseShapeError{Endpoint: endpoint, Reason: label + ".per_galaxy is missing or not an array"}
	}

	res := &model.AggregateResult{
		Label:        label,
		AggregateRMS: firstNumber(block, label+"_rms_kms", "rms_kms", "rms"),
		PerGalaxy:    []model.GalaxyRMS{},
		Micro:        rawObject(root.Get("micro")),
	}
	for i, el := range per.Array() {
		name := firstString(el, galaxyKeys...)
		if !el.IsObject() || name == "" {
			return nil, &ResponseShapeError{
				Endpoint: endpoint,
				Reason:   fmt.Sprintf("%s.per_galaxy[%d] has no galaxy name", label, i),
			}
		}
		res.PerGalaxy = append(res.PerGalaxy, model.GalaxyRMS{Galaxy: name, RMS: firstNumber(el, rmsKeys...)})
	}

	res.Count = len(res.PerGalaxy)
	if c := block.Get("count"); c.Type == gjson.Number {
		res.Count = int(c.Int())
	}
	return res, nil
}

func firstNumber(obj gjson.Result, keys ...string) *float64 {
	for _, k := range keys {
		if v := obj.Get(k); v.Type == gjson.Number {
			f := v.Num
			return &f
		}
	}
	return nil
}

func firstString(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := obj.Get(k); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// firstNumberArray returns the first all-numeric array among keys. With
// nullable set, null elements are read as NaN.
func firstNumberArray(obj gjson.Result, nullable bool, keys ...string) ([]float64, bool) {
	for _, k := range keys {
		arr := obj.Get(k)
		if !arr.IsArray() {
			continue
		}
		vals := arr.Array()
		out := make([]float64, len(vals))
		ok := true
		for i, v := range vals {
			switch {
			case v.Type == gjson.Number:
				out[i] = v.Num
			case nullable && v.Type == gjson.Null:
				out[i] = math.NaN()
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return out, true
		}
	}
	return nil, false
}

func rawObject(r gjson.Result) json.RawMessage {
	if !r.IsObject() {
		return nil
	}
	return json.RawMessage(r.Raw)
}
