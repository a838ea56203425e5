package session

import (
	"context"
	"fmt"

	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/dataset"
	"github.com/DachengChen/paiData/db"
)

// LoadDataset reads the configured dataset once. Every failure is a
// *dataset.LoadError.
func LoadDataset(ctx context.Context, cfg config.DatasetConfig) (*dataset.Dataset, error) {
	switch cfg.Source {
	case config.SourceCSV, "":
		return dataset.LoadCSV(cfg.Path, dataset.CSVOptions{
			Encoding:  cfg.Encoding,
			Delimiter: cfg.DelimiterRune(),
		})
	case config.SourcePostgres:
		return db.LoadTable(ctx, cfg.Postgres)
	default:
		return nil, &dataset.LoadError{
			Kind:   dataset.LoadOther,
			Source: cfg.Source,
			Err:    fmt.Errorf("unknown dataset source %q", cfg.Source),
		}
	}
}
