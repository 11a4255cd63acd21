package compute

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rotcurve/internal/core/model"
)

func TestDecodeMissingMacro(t *testing.T) {
	_, err := Decode(EndpointCompute, []byte(`{"micro":{"mW_GeV":80.4}}`))

	var rse *ResponseShapeError
	require.True(t, errors.As(err, &rse), "got %v", err)
	assert.Equal(t, EndpointCompute, rse.Endpoint)
}

func TestDecodeEmptyCurveIsValid(t *testing.T) {
	res, err := Decode(EndpointCompute, []byte(`{"macro":{"data":[],"rms_kms":0}}`))
	require.NoError(t, err)

	require.Equal(t, model.KindGalaxy, res.Kind)
	assert.NotNil(t, res.Galaxy.Curve)
	assert.Empty(t, res.Galaxy.Curve)
	assert.Equal(t, "rows", res.Galaxy.Shape)
}

func TestDecodeRowArray(t *testing.T) {
	body := `{"macro":{"data":[{"R_kpc":1.5,"V_obs":100,"V_pred":98},{"R_kpc":3.0,"V_obs":150,"V_pred":151}],"rms_kms":2.1},
		"micro":{"mW_GeV":80.4}}`
	res, err := Decode(EndpointCompute, []byte(body))
	require.NoError(t, err)

	g := res.Galaxy
	require.NotNil(t, g.RMS)
	assert.Equal(t, 2.1, *g.RMS)
	assert.Equal(t, []model.CurvePoint{{R: 1.5, VObs: 100, VPred: 98}, {R: 3.0, VObs: 150, VPred: 151}}, g.Curve)
	assert.JSONEq(t, `{"mW_GeV":80.4}`, string(g.Micro))
}

func TestDecodeNullVelocityKeepsRow(t *testing.T) {
	body := `{"macro":{"data":[{"R_kpc":1.5,"V_obs":100,"V_pred":98},{"R_kpc":3.0,"V_obs":150,"V_pred":null},{"R_kpc":4.5,"V_obs":"n/a","V_pred":160}],"rms_kms":2.1}}`
	res, err := Decode(EndpointCompute, []byte(body))
	require.NoError(t, err)

	g := res.Galaxy
	require.Len(t, g.Curve, 3)
	assert.Equal(t, "rows", g.Shape)
	assert.Equal(t, 98.0, g.Curve[0].VPred)
	assert.Equal(t, 150.0, g.Curve[1].VObs)
	assert.True(t, math.IsNaN(g.Curve[1].VPred))
	assert.True(t, math.IsNaN(g.Curve[2].VObs))
	assert.Equal(t, 160.0, g.Curve[2].VPred)

	out, err := json.Marshal(g.Curve[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"r":3,"v_obs":150,"v_pred":null}`, string(out))
}

func TestDecodeNullVelocityInColumnsAndTriples(t *testing.T) {
	res, err := Decode(EndpointCompute, []byte(`{"macro":{"R_kpc":[1,2],"V_obs":[10,20],"V_pred":[11,null]}}`))
	require.NoError(t, err)
	assert.Equal(t, "columns", res.Galaxy.Shape)
	require.Len(t, res.Galaxy.Curve, 2)
	assert.True(t, math.IsNaN(res.Galaxy.Curve[1].VPred))

	res, err = Decode(EndpointCompute, []byte(`{"macro":{"curve":[[1,10,null],[2,20,21]]}}`))
	require.NoError(t, err)
	require.Len(t, res.Galaxy.Curve, 2)
	assert.True(t, math.IsNaN(res.Galaxy.Curve[0].VPred))
	assert.Equal(t, 21.0, res.Galaxy.Curve[1].VPred)
}

func TestDecodeAlternateSpellings(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape string
	}{
		{"lowercase keys", `{"macro":{"rows":[{"r":1,"vobs":2,"vpred":3}]}}`, "rows"},
		{"triples", `{"macro":{"curve":[[1,2,3]]}}`, "rows"},
		{"model velocity", `{"macro":{"points":[{"radius":1,"Vobs":2,"V_model":3}]}}`, "rows"},
		{"parallel arrays", `{"macro":{"R_kpc":[1],"V_obs":[2],"V_pred":[3]}}`, "columns"},
		{"plural arrays", `{"macro":{"data":{"rs":[1],"v_obss":[2],"v_preds":[3]}}}`, "columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(EndpointCompute, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.shape, res.Galaxy.Shape)
			assert.Equal(t, []model.CurvePoint{{R: 1, VObs: 2, VPred: 3}}, res.Galaxy.Curve)
			assert.Nil(t, res.Galaxy.RMS)
		})
	}
}

func TestDecodeRejectsMalformedCurves(t *testing.T) {
	bodies := []string{
		`not json`,
		`[1,2,3]`,
		`{"macro":[]}`,
		`{"macro":{"data":[{"R_kpc":1,"V_obs":2}]}}`,
		`{"macro":{"data":[[1,2]]}}`,
		`{"macro":{"data":[{"R_kpc":null,"V_obs":2,"V_pred":3}]}}`,
		`{"macro":{"data":[{"R_kpc":1},{"R_kpc":2}]}}`,
		`{"macro":{"R_kpc":[1,null],"V_obs":[2,3],"V_pred":[3,4]}}`,
		`{"macro":{"R_kpc":[1,2],"V_obs":[2],"V_pred":[3]}}`,
		`{"macro":{"rms_kms":3}}`,
	}
	for _, body := range bodies {
		_, err := Decode(EndpointCompute, []byte(body))
		var rse *ResponseShapeError
		assert.True(t, errors.As(err, &rse), "%s: got %v", body, err)
	}
}

func TestDecodeAggregate(t *testing.T) {
	body := `{"global":{"per_galaxy":[{"galaxy":"NGC1003","rms_kms":4.5},{"galaxy":"DDO154","rms_kms":null}],
		"global_rms_kms":3.2,"count":2}}`
	res, err := Decode(EndpointGlobal, []byte(body))
	require.NoError(t, err)

	require.Equal(t, model.KindAggregate, res.Kind)
	a := res.Aggregate
	assert.Equal(t, "global", a.Label)
	assert.Equal(t, 2, a.Count)
	require.NotNil(t, a.AggregateRMS)
	assert.Equal(t, 3.2, *a.AggregateRMS)
	require.Len(t, a.PerGalaxy, 2)
	assert.Equal(t, 4.5, *a.PerGalaxy[0].RMS)
	assert.Nil(t, a.PerGalaxy[1].RMS)
}

func TestDecodeDwarfsCountDefaultsToLength(t *testing.T) {
	res, err := Decode(EndpointDwarfs, []byte(`{"dwarfs":{"per_galaxy":[{"name":"DDO154","rms":7}],"dwarfs_rms_kms":7}}`))
	require.NoError(t, err)

	assert.Equal(t, "dwarfs", res.Aggregate.Label)
	assert.Equal(t, 1, res.Aggregate.Count)
	assert.Equal(t, "DDO154", res.Aggregate.PerGalaxy[0].Galaxy)
	assert.Equal(t, 7.0, *res.Aggregate.AggregateRMS)
}

func TestDecodeAggregateErrors(t *testing.T) {
	for _, body := range []string{
		`{"global":{"count":1}}`,
		`{"dwarfs":{"per_galaxy":[{"rms_kms":1}]}}`,
		`{"global":"ok"}`,
	} {
		_, err := Decode(EndpointGlobal, []byte(body))
		var rse *ResponseShapeError
		assert.True(t, errors.As(err, &rse), "%s: got %v", body, err)
	}
}
