//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rotcurve/internal/compute"
	"github.com/agenthands/rotcurve/internal/config"
	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/driver"
)

func backendConfig(t *testing.T) config.BackendConfig {
	_ = godotenv.Load("../../.env")

	url := os.Getenv("ROTCURVE_BACKEND_URL")
	if url == "" {
		t.Skip("Skipping integration test: ROTCURVE_BACKEND_URL not set")
	}
	cfg := config.Default().Backend
	cfg.BaseURL = url
	cfg.Timeout = config.Duration(2 * time.Minute)
	cfg.RetryMax = 2
	return cfg
}

func sampleEntry() model.GalaxyEntry {
	rows := []model.RotationCurveRow{}
	for i, v := range []float64{40, 55, 63, 70, 74, 77} {
		r := 0.5 * float64(i+1)
		rows = append(rows, model.RotationCurveRow{RKpc: r, Vobs: v, Vgas: 5 + float64(i), Vdisk: 30 + 2*float64(i)})
	}
	return model.GalaxyEntry{Name: "IntegrationTest", Member: "IntegrationTest_rotmod.dat", Rows: rows}
}

func TestLiveBackend(t *testing.T) {
	cfg := backendConfig(t)
	client, err := compute.NewClient(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := client.Health(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	res, err := client.Compute(ctx, sampleEntry())
	require.NoError(t, err)
	assert.Equal(t, "IntegrationTest", res.Galaxy)
	assert.NotEmpty(t, res.Curve)

	agg, err := client.Aggregate(ctx, model.AggregateGlobal, []model.GalaxyEntry{sampleEntry()})
	require.NoError(t, err)
	assert.Equal(t, "global", agg.Label)

	micro, err := client.Micro(ctx)
	if err != nil {
		t.Logf("micro unavailable: %v", err)
	} else {
		assert.NotNil(t, micro)
	}
}

func TestMemgraphRecorder(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	ctx := context.Background()
	d, err := driver.NewMemgraphDriver(ctx, config.MemgraphConfig{
		URI:      uri,
		User:     os.Getenv("MEMGRAPH_USER"),
		Password: os.Getenv("MEMGRAPH_PASSWORD"),
	}, nil)
	require.NoError(t, err)
	defer d.Close(ctx)
	require.NoError(t, d.BuildIndices(ctx))

	rec := driver.NewRecorder(d)
	rms := 4.2
	id, err := rec.RecordGalaxyRun(ctx, "integration-session", &model.GalaxyResult{
		Galaxy: "IntegrationTest",
		RMS:    &rms,
		Curve:  []model.CurvePoint{{R: 1, VObs: 50, VPred: 48}},
	})
	require.NoError(t, err)

	runs, err := rec.GalaxyRuns(ctx, "IntegrationTest", 50)
	require.NoError(t, err)
	found := false
	for _, r := range runs {
		if r.ID == id {
			found = true
			require.NotNil(t, r.RMS)
			assert.InDelta(t, rms, *r.RMS, 1e-9)
		}
	}
	assert.True(t, found, "run %s not returned", id)
}
