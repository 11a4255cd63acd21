package compute

import (
	"context"

	"github.com/agenthands/rotcurve/internal/core/model"
)

// Client talks to a rotation-curve compute backend.
type Client interface {
	Health(ctx context.Context) (bool, error)
	Compute(ctx context.Context, entry model.GalaxyEntry) (*model.GalaxyResult, error)
	Aggregate(ctx context.Context, kind model.AggregateKind, entries []model.GalaxyEntry) (*model.AggregateResult, error)
	Micro(ctx context.Context) (*model.MicroResult, error)
}

const (
	EndpointHealth  = "/health"
	EndpointCompute = "/compute"
	EndpointGlobal  = "/global_rms"
	EndpointDwarfs  = "/dwarfs"
	EndpointMicro   = "/micro"
)

// AggregateEndpoint maps a bulk kind to its path.
func AggregateEndpoint(kind model.AggregateKind) (string, bool) {
	switch kind {
	case model.AggregateGlobal:
		return EndpointGlobal, true
	case model.AggregateDwarfs:
		return EndpointDwarfs, true
	}
	return "", false
}
