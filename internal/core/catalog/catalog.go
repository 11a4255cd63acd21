package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/rotcurve/internal/archive"
	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/core/normalize"
	"github.com/agenthands/rotcurve/internal/core/table"
	"github.com/agenthands/rotcurve/internal/logging"
	"github.com/agenthands/rotcurve/internal/metrics"
)

var ErrNotFound = errors.New("galaxy not found")

type Options struct {
	// Workers bounds how many members are parsed at once. Values below 1
	// mean sequential parsing.
	Workers int
	Logger  *zap.Logger
}

// Catalog maps galaxy identifiers to their parsed rows. Each Load replaces
// the whole mapping; nothing is merged across loads.
type Catalog struct {
	reader  *archive.Reader
	parser  *table.Parser
	workers int
	logger  *zap.Logger

	mu      sync.RWMutex
	entries map[string]*model.GalaxyEntry
	names   []string
}

func New(reader *archive.Reader, parser *table.Parser, opts Options) *Catalog {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Catalog{
		reader:  reader,
		parser:  parser,
		workers: workers,
		logger:  logging.Or(opts.Logger).Named("catalog"),
		entries: map[string]*model.GalaxyEntry{},
	}
}

type memberResult struct {
	entry   *model.GalaxyEntry
	dropped int
	err     error
}

// Load reads every matching member of the archive. Members that fail to
// parse are reported in LoadReport.Errors and left out; only an unreadable
// archive or a cancelled context fails the whole load, and then the
// previous contents are kept.
func (c *Catalog) Load(ctx context.Context, data []byte) (*model.LoadReport, error) {
	members, err := c.reader.Open(data)
	if err != nil {
		metrics.ArchiveLoads.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}

	results := make([]memberResult, len(members))
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, m := range members {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			results[i] = c.parseMember(m)
			return nil
		})
	}
	_ = g.Wait() // per-member errors are kept in results

	if err := ctx.Err(); err != nil {
		metrics.ArchiveLoads.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}

	entries := make(map[string]*model.GalaxyEntry, len(members))
	report := &model.LoadReport{Members: len(members), Errors: []model.MemberError{}}
	for i, res := range results {
		if res.err != nil {
			c.logger.Warn("member skipped", zap.String("member", members[i].Name), zap.Error(res.err))
			report.Errors = append(report.Errors, model.MemberError{Member: members[i].Name, Message: res.err.Error()})
			metrics.Members.WithLabelValues(metrics.OutcomeFailed).Inc()
			continue
		}
		if prev, ok := entries[res.entry.Name]; ok {
			c.logger.Info("duplicate galaxy, later member wins",
				zap.String("galaxy", res.entry.Name),
				zap.String("replaced", prev.Member),
				zap.String("member", res.entry.Member))
		}
		entries[res.entry.Name] = res.entry
		metrics.Members.WithLabelValues(metrics.OutcomeOK).Inc()
		metrics.Rows.WithLabelValues("kept").Add(float64(len(res.entry.Rows)))
		metrics.Rows.WithLabelValues("dropped").Add(float64(res.dropped))
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	c.mu.Lock()
	c.entries = entries
	c.names = names
	c.mu.Unlock()

	report.Count = len(names)
	report.Galaxies = append([]string{}, names...)
	metrics.ArchiveLoads.WithLabelValues(metrics.OutcomeOK).Inc()
	c.logger.Info("archive loaded",
		zap.Int("members", report.Members),
		zap.Int("galaxies", report.Count),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

func (c *Catalog) parseMember(m archive.Member) memberResult {
	text, err := m.ReadText()
	if err != nil {
		return memberResult{err: err}
	}
	tbl, err := c.parser.Parse(text)
	if err != nil {
		return memberResult{err: err}
	}
	rows, dropped := normalize.Rows(tbl.Rows)
	if len(rows) == 0 {
		return memberResult{err: &table.EmptyError{Reason: "no rows survived normalization"}}
	}
	return memberResult{
		entry: &model.GalaxyEntry{
			Name:   c.reader.Stem(m.Name),
			Member: m.Name,
			Rows:   rows,
		},
		dropped: tbl.Skipped + dropped,
	}
}

// Get looks id up exactly, then case-insensitively.
func (c *Catalog) Get(id string) (*model.GalaxyEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.entries[id]; ok {
		return e, nil
	}
	for _, name := range c.names {
		if strings.EqualFold(name, id) {
			return c.entries[name], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns the identifiers in lexicographic order.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.names...)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// ExportAll returns every entry, ordered by identifier, for bulk payloads.
func (c *Catalog) ExportAll() []model.GalaxyEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.GalaxyEntry, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, *c.entries[name])
	}
	return out
}
