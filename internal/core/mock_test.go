package core

import (
	"context"
	"errors"

	"github.com/agenthands/rotcurve/internal/core/model"
)

type MockClient struct {
	GalaxyResult    *model.GalaxyResult
	AggregateResult *model.AggregateResult
	Err             error

	// OnCall runs inside Compute and Aggregate before they return.
	OnCall func()

	ComputeCalls   []model.GalaxyEntry
	AggregateCalls [][]model.GalaxyEntry
}

func (m *MockClient) Health(ctx context.Context) (bool, error) { return m.Err == nil, m.Err }

func (m *MockClient) Compute(ctx context.Context, entry model.GalaxyEntry) (*model.GalaxyResult, error) {
	m.ComputeCalls = append(m.ComputeCalls, entry)
	if m.OnCall != nil {
		m.OnCall()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	res := *m.GalaxyResult
	res.Galaxy = entry.Name
	return &res, nil
}

func (m *MockClient) Aggregate(ctx context.Context, kind model.AggregateKind, entries []model.GalaxyEntry) (*model.AggregateResult, error) {
	m.AggregateCalls = append(m.AggregateCalls, entries)
	if m.OnCall != nil {
		m.OnCall()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.AggregateResult, nil
}

func (m *MockClient) Micro(ctx context.Context) (*model.MicroResult, error) {
	return &model.MicroResult{}, m.Err
}

type MockRecorder struct {
	Galaxies   []string
	Aggregates []string
	Runs       []model.RunRecord
	Err        error
}

func (m *MockRecorder) RecordGalaxyRun(ctx context.Context, sessionID string, res *model.GalaxyResult) (string, error) {
	m.Galaxies = append(m.Galaxies, res.Galaxy)
	return "run", m.Err
}

func (m *MockRecorder) RecordAggregateRun(ctx context.Context, sessionID string, res *model.AggregateResult) (string, error) {
	m.Aggregates = append(m.Aggregates, res.Label)
	return "run", m.Err
}

func (m *MockRecorder) GalaxyRuns(ctx context.Context, galaxy string, limit int) ([]model.RunRecord, error) {
	return m.Runs, m.Err
}

var errBackendDown = errors.New("backend down")
