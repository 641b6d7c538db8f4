package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"property-etl/models"
)

// FieldSpec declares one field of the input schema: its JSON name, its
// type and whether the value is required on every record.
type FieldSpec struct {
	Name     string
	Type     string // JSON Schema type: "string" or "number"
	Required bool
}

// PropertySchema is the fixed schema every scraped input line must
// conform to. Only id is required; the other fields may be absent or
// null but must match the declared type when present.
var PropertySchema = []FieldSpec{
	{Name: "id", Type: "string", Required: true},
	{Name: "raw_price", Type: "string"},
	{Name: "living_area", Type: "number"},
	{Name: "property_type", Type: "string"},
	{Name: "municipality", Type: "string"},
	{Name: "scraping_date", Type: "string"},
}

// SchemaViolationError reports an input line that does not conform to
// the fixed field schema. One bad line fails the whole batch; there is
// no skip-and-continue.
type SchemaViolationError struct {
	Line   int
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on line %d: %s", e.Line, e.Reason)
}

// Parser decodes newline-delimited JSON records, validating each line
// against a JSON Schema compiled from a declarative field list.
type Parser struct {
	logger *logrus.Logger
	schema *gojsonschema.Schema
}

// NewParser compiles fields into a JSON Schema and returns a
// ready-to-use Parser.
func NewParser(logger *logrus.Logger, fields []FieldSpec) (*Parser, error) {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Required {
			properties[f.Name] = map[string]any{"type": f.Type}
			required = append(required, f.Name)
		} else {
			properties[f.Name] = map[string]any{"type": []string{f.Type, "null"}}
		}
	}

	doc, err := json.Marshal(map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
	if err != nil {
		return nil, fmt.Errorf("parser: marshal schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("parser: compile schema: %w", err)
	}

	return &Parser{logger: logger, schema: schema}, nil
}

// Parse reads the whole input and returns one RawProperty per
// non-blank line. Any line that is not valid JSON or violates the
// schema aborts with a SchemaViolationError.
func (p *Parser) Parse(r io.Reader) ([]*models.RawProperty, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []*models.RawProperty
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		result, err := p.schema.Validate(gojsonschema.NewBytesLoader(line))
		if err != nil {
			return nil, &SchemaViolationError{Line: lineNo, Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
		if !result.Valid() {
			return nil, &SchemaViolationError{Line: lineNo, Reason: describeViolations(result)}
		}

		record := &models.RawProperty{}
		if err := json.Unmarshal(line, record); err != nil {
			return nil, &SchemaViolationError{Line: lineNo, Reason: err.Error()}
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parser: read input: %w", err)
	}

	p.logger.Infof("Total rows read from JSONL file: %d", len(records))
	return records, nil
}

func describeViolations(result *gojsonschema.Result) string {
	parts := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
