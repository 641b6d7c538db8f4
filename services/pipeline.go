package services

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"property-etl/config"
	"property-etl/models"
	"property-etl/storage"
)

// Pipeline is the transform-and-load entry point: Read → Validate →
// Ensure-Table → Filter/Transform → Insert → Report. The external
// scheduler invokes it once per run; any failure aborts the whole run,
// there is no retry or partial-commit recovery inside the core.
type Pipeline struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewPipeline creates a Pipeline with the destination backend selected
// from config.
func NewPipeline(cfg *config.Config, logger *logrus.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run executes one complete batch. The destination connection is
// scoped to the run and released on every exit path.
func (p *Pipeline) Run() error {
	raw, err := p.extract()
	if err != nil {
		return err
	}

	if p.cfg.RawCSVAuditPath != "" {
		if err := p.writeAudit(raw); err != nil {
			return err
		}
	}

	writer, err := storage.NewPropertyWriter(p.cfg, p.logger)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.EnsureTable(); err != nil {
		return err
	}

	before, err := writer.Count()
	if err != nil {
		return err
	}
	p.logger.Infof("Total rows currently in 'properties' table before insertion: %d", before)

	properties, err := NewTransformer(p.logger).Transform(raw)
	if err != nil {
		return err
	}

	if err := writer.Insert(properties); err != nil {
		return err
	}

	after, err := writer.Count()
	if err != nil {
		return err
	}
	p.logger.Infof("Rows inserted: %d", after-before)

	reportSvc := NewReportService(p.logger)
	reportSvc.Print(reportSvc.Generate(properties))

	return nil
}

func (p *Pipeline) extract() ([]*models.RawProperty, error) {
	f, err := os.Open(p.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: open input: %w", err)
	}
	defer f.Close()

	p.logger.Infof("Reading data from file: %s", p.cfg.InputPath)

	parser, err := NewParser(p.logger, PropertySchema)
	if err != nil {
		return nil, err
	}
	return parser.Parse(f)
}

func (p *Pipeline) writeAudit(raw []*models.RawProperty) error {
	w, err := storage.NewCSVWriter(p.cfg.RawCSVAuditPath)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.WriteRaw(raw); err != nil {
		return err
	}
	p.logger.Infof("Raw batch audit copy saved to %s", p.cfg.RawCSVAuditPath)
	return nil
}
