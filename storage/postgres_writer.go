package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"property-etl/models"
	"property-etl/utils"
)

// PostgresWriter is the alternate destination for deployments that
// load into a shared Postgres instead of a file-backed store.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL and returns a
// ready-to-use writer. The initial ping is retried because the
// database container may still be starting.
func NewPostgresWriter(dsn string, logger *logrus.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &PostgresWriter{db: db}, nil
}

// EnsureTable idempotently creates the properties table.
func (w *PostgresWriter) EnsureTable() error {
	_, err := w.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id                     TEXT             NOT NULL,
			scraping_date          TEXT             NOT NULL,
			property_type          TEXT             NOT NULL,
			municipality           TEXT             NOT NULL,
			price                  DOUBLE PRECISION NOT NULL,
			living_area            DOUBLE PRECISION NOT NULL,
			price_per_square_meter DOUBLE PRECISION NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

// Count returns the number of rows currently in the properties table.
func (w *PostgresWriter) Count() (int64, error) {
	var n int64
	if err := w.db.QueryRow("SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

// Insert appends all properties. Plain INSERT, no upsert: re-loading
// the same input appends duplicate rows.
func (w *PostgresWriter) Insert(properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(properties); i += batchSize {
		end := i + batchSize
		if end > len(properties) {
			end = len(properties)
		}
		if err := w.insertBatch(properties[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (w *PostgresWriter) insertBatch(batch []*models.Property) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*7)

	for idx, p := range batch {
		base := idx * 7
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			p.ID, p.ScrapingDate, p.PropertyType, p.Municipality,
			p.Price, p.LivingArea, p.PricePerSquareMeter)
	}

	query := fmt.Sprintf(`
		INSERT INTO properties (id, scraping_date, property_type, municipality, price, living_area, price_per_square_meter)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := w.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (w *PostgresWriter) Close() error {
	return w.db.Close()
}
