package core

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/rotcurve/internal/archive"
	"github.com/agenthands/rotcurve/internal/config"
	"github.com/agenthands/rotcurve/internal/core/catalog"
	"github.com/agenthands/rotcurve/internal/core/table"
)

// Aliases applies [parser.aliases] overrides to the default alias table.
func Aliases(cfg config.ParserConfig) (table.Aliases, error) {
	aliases := table.DefaultAliases()
	for name, set := range cfg.Aliases {
		col, ok := table.ColumnByName(name)
		if !ok {
			return aliases, fmt.Errorf("parser.aliases: unknown column %q", name)
		}
		aliases = aliases.With(col, table.AliasSet{Exact: set.Exact, Contains: set.Contains})
	}
	return aliases, nil
}

// NewCatalog builds an empty catalog with the configured reader and parser.
func NewCatalog(cfg *config.Config, logger *zap.Logger) (*catalog.Catalog, error) {
	aliases, err := Aliases(cfg.Parser)
	if err != nil {
		return nil, err
	}
	reader := archive.NewReader(archive.Options{
		Extensions:     cfg.Archive.Extensions,
		RequireSuffix:  cfg.Archive.RequireSuffix,
		MaxMemberBytes: cfg.Archive.MaxMemberBytes,
	})
	return catalog.New(reader, table.NewParser(aliases), catalog.Options{
		Workers: cfg.Concurrency.BulkIngest,
		Logger:  logger,
	}), nil
}
