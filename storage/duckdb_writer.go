package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"property-etl/models"
)

// createPropertiesTable is the fixed destination schema. The table is
// created once and never altered by this component; an existing table
// with a different shape surfaces as an insert error, not a schema
// diagnostic.
const createPropertiesTable = `
CREATE TABLE IF NOT EXISTS properties (
    id TEXT NOT NULL,  -- Property ID
    scraping_date TEXT NOT NULL,  -- Date when the data was scraped
    property_type TEXT NOT NULL,  -- Type of property
    municipality TEXT NOT NULL,  -- Municipality of the property
    price DOUBLE NOT NULL,  -- Converted price in numeric format
    living_area DOUBLE NOT NULL,  -- Area of the property
    price_per_square_meter DOUBLE NOT NULL  -- Price per square meter
);
`

// DuckDBWriter appends transformed properties to a file-backed DuckDB
// table. Exactly one writer runs at a time; the scheduler guarantees
// non-overlapping invocations.
type DuckDBWriter struct {
	db *sql.DB
}

// NewDuckDBWriter opens (or creates) the DuckDB database file at path.
// Intermediate directories are created automatically.
func NewDuckDBWriter(path string) (*DuckDBWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("duckdb: create output dir: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("duckdb: ping %q: %w", path, err)
	}

	return &DuckDBWriter{db: db}, nil
}

// EnsureTable idempotently creates the properties table.
func (w *DuckDBWriter) EnsureTable() error {
	if _, err := w.db.Exec(createPropertiesTable); err != nil {
		return fmt.Errorf("duckdb: create table: %w", err)
	}
	return nil
}

// Count returns the number of rows currently in the properties table.
func (w *DuckDBWriter) Count() (int64, error) {
	var n int64
	if err := w.db.QueryRow("SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, fmt.Errorf("duckdb: count: %w", err)
	}
	return n, nil
}

// Insert appends all properties. No dedup: the same batch loaded
// twice is stored twice.
func (w *DuckDBWriter) Insert(properties []*models.Property) error {
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

func (w *DuckDBWriter) insertBatch(batch []*models.Property) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*7)

	for _, p := range batch {
		valueStrings = append(valueStrings, "(?,?,?,?,?,?,?)")
		valueArgs = append(valueArgs,
			p.ID, p.ScrapingDate, p.PropertyType, p.Municipality,
			p.Price, p.LivingArea, p.PricePerSquareMeter)
	}

	query := fmt.Sprintf(`
		INSERT INTO properties (id, scraping_date, property_type, municipality, price, living_area, price_per_square_meter)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := w.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("duckdb: insert batch: %w", err)
	}
	return nil
}

// Close releases the database handle, flushing the file.
func (w *DuckDBWriter) Close() error {
	return w.db.Close()
}
