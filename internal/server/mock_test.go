package server

import (
	"context"

	"github.com/agenthands/rotcurve/internal/core/model"
)

type MockClient struct {
	Healthy         bool
	GalaxyResult    *model.GalaxyResult
	AggregateResult *model.AggregateResult
	MicroResult     *model.MicroResult
	Err             error
}

func (m *MockClient) Health(ctx context.Context) (bool, error) { return m.Healthy, m.Err }

func (m *MockClient) Compute(ctx context.Context, entry model.GalaxyEntry) (*model.GalaxyResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	res := *m.GalaxyResult
	res.Galaxy = entry.Name
	return &res, nil
}

func (m *MockClient) Aggregate(ctx context.Context, kind model.AggregateKind, entries []model.GalaxyEntry) (*model.AggregateResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	res := *m.AggregateResult
	res.Label = string(kind)
	return &res, nil
}

func (m *MockClient) Micro(ctx context.Context) (*model.MicroResult, error) {
	return m.MicroResult, m.Err
}
