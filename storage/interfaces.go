package storage

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"property-etl/config"
	"property-etl/models"
)

// PropertyWriter is the interface any destination backend must satisfy.
type PropertyWriter interface {
	// EnsureTable idempotently creates the properties table.
	EnsureTable() error
	// Count returns the current number of rows in the table.
	Count() (int64, error)
	// Insert appends the batch. No dedup: the same batch loaded twice
	// is stored twice.
	Insert(properties []*models.Property) error
	Close() error
}

// RawPropertyWriter is the interface for persisting an audit copy of
// the unprocessed input batch.
type RawPropertyWriter interface {
	WriteRaw(properties []*models.RawProperty) error
	Close() error
}

// NewPropertyWriter selects the destination backend from config.
func NewPropertyWriter(cfg *config.Config, logger *logrus.Logger) (PropertyWriter, error) {
	switch cfg.StorageBackend {
	case "", "duckdb":
		return NewDuckDBWriter(cfg.DuckDBPath)
	case "postgres":
		return NewPostgresWriter(cfg.DSN(), logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
