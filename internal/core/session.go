package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/archive"
	"github.com/agenthands/rotcurve/internal/compute"
	"github.com/agenthands/rotcurve/internal/core/catalog"
	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/logging"
)

var (
	// ErrStale means a newer load or selection superseded the call while it
	// was in flight. The result was discarded.
	ErrStale = errors.New("result superseded by a newer load or selection")

	ErrNoSelection  = errors.New("no galaxy selected")
	ErrEmptyCatalog = errors.New("no galaxies loaded")
	ErrNoArchive    = errors.New("no archive source configured")
)

// RunRecorder persists applied results. Failures never fail a run.
type RunRecorder interface {
	RecordGalaxyRun(ctx context.Context, sessionID string, res *model.GalaxyResult) (string, error)
	RecordAggregateRun(ctx context.Context, sessionID string, res *model.AggregateResult) (string, error)
	GalaxyRuns(ctx context.Context, galaxy string, limit int) ([]model.RunRecord, error)
}

// FetchFunc returns archive bytes for a path or URL.
type FetchFunc func(ctx context.Context, src string) ([]byte, error)

type Options struct {
	Recorder RunRecorder
	Fetch    FetchFunc
	Logger   *zap.Logger
}

// Session owns one catalog and the state built on it: the current
// selection and the last applied result.
type Session struct {
	ID string

	catalog  *catalog.Catalog
	client   compute.Client
	recorder RunRecorder
	fetch    FetchFunc
	logger   *zap.Logger

	loadMu sync.Mutex // serializes loads

	mu         sync.Mutex
	generation uint64
	selected   string
	last       *model.ComputeResult
	report     *model.LoadReport
}

func NewSession(cat *catalog.Catalog, client compute.Client, opts Options) *Session {
	id := uuid.New().String()
	fetch := opts.Fetch
	if fetch == nil {
		fetch = func(ctx context.Context, src string) ([]byte, error) {
			return archive.Fetch(ctx, src, http.DefaultClient)
		}
	}
	return &Session{
		ID:       id,
		catalog:  cat,
		client:   client,
		recorder: opts.Recorder,
		fetch:    fetch,
		logger:   logging.Or(opts.Logger).Named("session").With(zap.String("session", id)),
	}
}

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// LoadArchive replaces the catalog. Any call still in flight becomes stale,
// even if this load fails.
func (s *Session) LoadArchive(ctx context.Context, label string, data []byte) (*model.LoadReport, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	report, err := s.catalog.Load(ctx, data)
	if err != nil {
		s.logger.Warn("archive rejected", zap.String("source", label), zap.Error(err))
		return nil, err
	}
	report.Label = label

	s.mu.Lock()
	s.selected = ""
	s.last = nil
	s.report = report
	s.mu.Unlock()
	return report, nil
}

// Autoload tries each source in order and keeps the first that loads.
func (s *Session) Autoload(ctx context.Context, sources []string) (*model.LoadReport, error) {
	if len(sources) == 0 {
		return nil, ErrNoArchive
	}
	var errs []error
	for _, src := range sources {
		data, err := s.fetch(ctx, src)
		if err == nil {
			var report *model.LoadReport
			report, err = s.LoadArchive(ctx, src, data)
			if err == nil {
				s.logger.Info("autoloaded", zap.String("source", src), zap.Int("galaxies", report.Count))
				return report, nil
			}
		}
		s.logger.Debug("autoload candidate skipped", zap.String("source", src), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", src, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("no archive could be autoloaded: %w", errors.Join(errs...))
}

// Report is the outcome of the last successful load, or nil.
func (s *Session) Report() *model.LoadReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Select makes name the current galaxy and returns its catalogued form.
func (s *Session) Select(name string) (*model.GalaxyEntry, error) {
	e, err := s.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.selected = e.Name
	s.mu.Unlock()
	return e, nil
}

func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// RunGalaxy selects name (or keeps the current selection when name is
// empty) and evaluates it remotely. The answer is applied only if neither
// the catalog nor the selection changed meanwhile.
func (s *Session) RunGalaxy(ctx context.Context, name string) (*model.GalaxyResult, error) {
	if name == "" {
		name = s.Selected()
		if name == "" {
			return nil, ErrNoSelection
		}
	}
	entry, err := s.catalog.Get(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.selected = entry.Name
	gen := s.generation
	s.mu.Unlock()

	res, err := s.client.Compute(ctx, *entry)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen != s.generation || s.selected != entry.Name {
		s.mu.Unlock()
		s.logger.Info("discarding stale result", zap.String("galaxy", entry.Name))
		return nil, fmt.Errorf("%w: %s", ErrStale, entry.Name)
	}
	s.last = &model.ComputeResult{Kind: model.KindGalaxy, Galaxy: res}
	s.mu.Unlock()

	if s.recorder != nil {
		if _, err := s.recorder.RecordGalaxyRun(ctx, s.ID, res); err != nil {
			s.logger.Warn("run not recorded", zap.String("galaxy", entry.Name), zap.Error(err))
		}
	}
	return res, nil
}

// RunAggregate sends the whole catalog in a single bulk request.
func (s *Session) RunAggregate(ctx context.Context, kind model.AggregateKind) (*model.AggregateResult, error) {
	if _, ok := compute.AggregateEndpoint(kind); !ok {
		return nil, fmt.Errorf("unknown aggregate kind %q", kind)
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	entries := s.catalog.ExportAll()
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	res, err := s.client.Aggregate(ctx, kind, entries)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Info("discarding stale result", zap.String("aggregate", string(kind)))
		return nil, fmt.Errorf("%w: %s", ErrStale, kind)
	}
	s.last = &model.ComputeResult{Kind: model.KindAggregate, Aggregate: res}
	s.mu.Unlock()

	if s.recorder != nil {
		if _, err := s.recorder.RecordAggregateRun(ctx, s.ID, res); err != nil {
			s.logger.Warn("run not recorded", zap.String("aggregate", string(kind)), zap.Error(err))
		}
	}
	return res, nil
}

// Last is the most recently applied result, or nil.
func (s *Session) Last() *model.ComputeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// History lists recorded runs for a galaxy. Without a recorder it is empty.
func (s *Session) History(ctx context.Context, name string, limit int) ([]model.RunRecord, error) {
	e, err := s.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	if s.recorder == nil {
		return []model.RunRecord{}, nil
	}
	return s.recorder.GalaxyRuns(ctx, e.Name, limit)
}
