package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"property-etl/models"
)

// Business predicate: rows kept in the destination table.
const (
	minPricePerSquareMeter = 500.0
	maxPricePerSquareMeter = 15000.0
	scrapingDateCutoff     = "2020-03-05"
)

var allowedPropertyTypes = map[string]struct{}{
	"apartment": {},
	"house":     {},
}

// Transformer converts raw scraped records into filtered destination
// rows with the derived price_per_square_meter column.
type Transformer struct {
	logger *logrus.Logger
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *logrus.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform converts raw_price to a numeric price, derives
// price_per_square_meter and keeps only rows passing the business
// predicate. An unparseable raw_price is not an error: the null price
// fails the numeric range predicate and the row is silently dropped.
//
// A row that survives the filter but carries a null municipality
// aborts the run, since the destination column is NOT NULL.
func (t *Transformer) Transform(raw []*models.RawProperty) ([]*models.Property, error) {
	result := make([]*models.Property, 0, len(raw))

	for _, r := range raw {
		price := parsePrice(r.RawPrice)
		ppsm := pricePerSquareMeter(price, r.LivingArea)

		if !keep(r, ppsm) {
			continue
		}
		if r.Municipality == nil {
			return nil, fmt.Errorf("transform: property %s: municipality is null, destination requires it", r.ID)
		}

		result = append(result, &models.Property{
			ID:                  r.ID,
			ScrapingDate:        *r.ScrapingDate,
			PropertyType:        *r.PropertyType,
			Municipality:        *r.Municipality,
			Price:               *price,
			LivingArea:          *r.LivingArea,
			PricePerSquareMeter: *ppsm,
		})
	}

	t.logger.Infof("[transform] Filtered %d → %d properties (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result, nil
}

// keep applies the filter predicate. Null values never satisfy a
// predicate, matching SQL comparison semantics.
func keep(r *models.RawProperty, ppsm *float64) bool {
	if r.PropertyType == nil {
		return false
	}
	if _, ok := allowedPropertyTypes[*r.PropertyType]; !ok {
		return false
	}
	if ppsm == nil || math.IsNaN(*ppsm) ||
		*ppsm < minPricePerSquareMeter || *ppsm > maxPricePerSquareMeter {
		return false
	}
	// Dates are ISO "YYYY-MM-DD" strings, so lexical order is date order.
	if r.ScrapingDate == nil || *r.ScrapingDate <= scrapingDateCutoff {
		return false
	}
	return true
}

// parsePrice converts a free-text price like "530 000€/mo." to a
// number: the text before the first '€' with spaces removed, cast to
// float. Returns nil when the cast fails.
func parsePrice(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s, _, _ := strings.Cut(*raw, "€")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// pricePerSquareMeter derives round(price/living_area, 2), or nil when
// either operand is null.
func pricePerSquareMeter(price, livingArea *float64) *float64 {
	if price == nil || livingArea == nil {
		return nil
	}
	v := round2(*price / *livingArea)
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
