package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/rotcurve/internal/core/model"
)

// Recorder writes evaluated runs to the graph so a galaxy's history can be
// compared across sessions.
type Recorder struct {
	Driver        GraphDriver
	UUIDGenerator func() string
	Now           func() time.Time
}

func NewRecorder(d GraphDriver) *Recorder {
	return &Recorder{
		Driver:        d,
		UUIDGenerator: func() string { return uuid.New().String() },
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func (r *Recorder) RecordGalaxyRun(ctx context.Context, sessionID string, res *model.GalaxyResult) (string, error) {
	id := r.UUIDGenerator()
	params := map[string]interface{}{
		"uuid":       id,
		"session_id": sessionID,
		"kind":       string(model.KindGalaxy),
		"label":      res.Galaxy,
		"galaxy":     res.Galaxy,
		"rms_kms":    optionalFloat(res.RMS),
		"points":     len(res.Curve),
		"created_at": r.Now().Format(time.RFC3339),
	}
	if _, err := r.Driver.ExecuteQuery(ctx, SaveGalaxyRunQuery, params); err != nil {
		return "", fmt.Errorf("failed to record run for %s: %w", res.Galaxy, err)
	}
	return id, nil
}

func (r *Recorder) RecordAggregateRun(ctx context.Context, sessionID string, res *model.AggregateResult) (string, error) {
	id := r.UUIDGenerator()
	per := make([]map[string]interface{}, 0, len(res.PerGalaxy))
	for _, g := range res.PerGalaxy {
		per = append(per, map[string]interface{}{"galaxy": g.Galaxy, "rms_kms": optionalFloat(g.RMS)})
	}
	params := map[string]interface{}{
		"uuid":       id,
		"session_id": sessionID,
		"kind":       string(model.KindAggregate),
		"label":      res.Label,
		"rms_kms":    optionalFloat(res.AggregateRMS),
		"count":      res.Count,
		"per_galaxy": per,
		"created_at": r.Now().Format(time.RFC3339),
	}
	if _, err := r.Driver.ExecuteQuery(ctx, SaveAggregateRunQuery, params); err != nil {
		return "", fmt.Errorf("failed to record %s run: %w", res.Label, err)
	}
	return id, nil
}

// GalaxyRuns returns the most recent runs that scored galaxy, newest first.
func (r *Recorder) GalaxyRuns(ctx context.Context, galaxy string, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	res, err := r.Driver.ExecuteQuery(ctx, GalaxyRunsQuery, map[string]interface{}{"galaxy": galaxy, "limit": limit})
	if err != nil {
		return nil, err
	}

	runs := make([]model.RunRecord, 0, len(res.Records))
	for _, rec := range res.Records {
		runs = append(runs, runFromRecord(rec, galaxy))
	}
	return runs, nil
}

func runFromRecord(rec *neo4j.Record, galaxy string) model.RunRecord {
	run := model.RunRecord{Galaxy: galaxy}
	if v, ok := rec.Get("uuid"); ok {
		run.ID, _ = v.(string)
	}
	if v, ok := rec.Get("session_id"); ok {
		run.SessionID, _ = v.(string)
	}
	if v, ok := rec.Get("kind"); ok {
		kind, _ := v.(string)
		run.Kind = model.ResultKind(kind)
	}
	if v, ok := rec.Get("label"); ok {
		run.Label, _ = v.(string)
	}
	if v, ok := rec.Get("rms_kms"); ok {
		switch n := v.(type) {
		case float64:
			run.RMS = &n
		case int64:
			f := float64(n)
			run.RMS = &f
		}
	}
	if v, ok := rec.Get("created_at"); ok {
		if s, ok := v.(string); ok {
			run.CreatedAt, _ = time.Parse(time.RFC3339, s)
		}
	}
	return run
}
