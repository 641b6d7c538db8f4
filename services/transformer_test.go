package services

import (
	"strings"
	"testing"

	"property-etl/models"
)

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

// validRaw returns a record that passes every filter predicate.
func validRaw() *models.RawProperty {
	return &models.RawProperty{
		ID:           "1",
		RawPrice:     strPtr("530 000€/mo."),
		LivingArea:   f64Ptr(100.0),
		PropertyType: strPtr("apartment"),
		Municipality: strPtr("Zug"),
		ScrapingDate: strPtr("2021-01-01"),
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"530 000€/mo.", f64Ptr(530000)},
		{"750000", f64Ptr(750000)},
		{"1 200.50€", f64Ptr(1200.50)},
		{"2 500€/mo.", f64Ptr(2500)},
		{"not a price", nil},
		{"", nil},
		{"€100", nil}, // nothing before the currency marker
	}

	for _, tt := range tests {
		got := parsePrice(&tt.raw)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parsePrice(%q) = %v; want nil", tt.raw, *got)
		case tt.want != nil && got == nil:
			t.Errorf("parsePrice(%q) = nil; want %v", tt.raw, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("parsePrice(%q) = %v; want %v", tt.raw, *got, *tt.want)
		}
	}
}

func TestParsePriceNil(t *testing.T) {
	if got := parsePrice(nil); got != nil {
		t.Errorf("parsePrice(nil) = %v; want nil", *got)
	}
}

func TestPricePerSquareMeterRounding(t *testing.T) {
	got := pricePerSquareMeter(f64Ptr(1000), f64Ptr(3))
	if got == nil || *got != 333.33 {
		t.Errorf("pricePerSquareMeter(1000, 3) = %v; want 333.33", got)
	}
}

func TestTransformKeepsValidRow(t *testing.T) {
	result, err := NewTransformer(newTestLogger()).Transform([]*models.RawProperty{validRaw()})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result))
	}

	p := result[0]
	if p.Price != 530000 {
		t.Errorf("Price: got %v, want 530000", p.Price)
	}
	if p.PricePerSquareMeter != 5300.0 {
		t.Errorf("PricePerSquareMeter: got %v, want 5300.0", p.PricePerSquareMeter)
	}
	if p.ID != "1" || p.Municipality != "Zug" || p.PropertyType != "apartment" {
		t.Errorf("unexpected stored row: %+v", p)
	}
}

func TestTransformFilters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RawProperty)
		kept   bool
	}{
		{"valid row", func(r *models.RawProperty) {}, true},
		{"date before cutoff", func(r *models.RawProperty) { r.ScrapingDate = strPtr("2019-01-01") }, false},
		{"date equal to cutoff", func(r *models.RawProperty) { r.ScrapingDate = strPtr("2020-03-05") }, false},
		{"date just after cutoff", func(r *models.RawProperty) { r.ScrapingDate = strPtr("2020-03-06") }, true},
		{"null date", func(r *models.RawProperty) { r.ScrapingDate = nil }, false},
		{"unknown property type", func(r *models.RawProperty) { r.PropertyType = strPtr("studio") }, false},
		{"null property type", func(r *models.RawProperty) { r.PropertyType = nil }, false},
		{"house allowed", func(r *models.RawProperty) { r.PropertyType = strPtr("house") }, true},
		{"unparseable price", func(r *models.RawProperty) { r.RawPrice = strPtr("not a price") }, false},
		{"null price", func(r *models.RawProperty) { r.RawPrice = nil }, false},
		{"null living area", func(r *models.RawProperty) { r.LivingArea = nil }, false},
		{"ppsm at lower bound", func(r *models.RawProperty) { r.RawPrice = strPtr("50 000€") }, true},
		{"ppsm below lower bound", func(r *models.RawProperty) { r.RawPrice = strPtr("49 999€") }, false},
		{"ppsm at upper bound", func(r *models.RawProperty) { r.RawPrice = strPtr("1 500 000€") }, true},
		{"ppsm above upper bound", func(r *models.RawProperty) { r.RawPrice = strPtr("1 500 100€") }, false},
		{"zero living area", func(r *models.RawProperty) { r.LivingArea = f64Ptr(0) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			result, err := NewTransformer(newTestLogger()).Transform([]*models.RawProperty{raw})
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if kept := len(result) == 1; kept != tt.kept {
				t.Errorf("kept = %v, want %v", kept, tt.kept)
			}
		})
	}
}

func TestTransformConversionFailureIsNotFatal(t *testing.T) {
	rows := []*models.RawProperty{
		validRaw(),
		{
			ID:           "2",
			RawPrice:     strPtr("not a price"),
			LivingArea:   f64Ptr(50),
			PropertyType: strPtr("house"),
			Municipality: strPtr("Bern"),
			ScrapingDate: strPtr("2021-05-05"),
		},
	}

	result, err := NewTransformer(newTestLogger()).Transform(rows)
	if err != nil {
		t.Fatalf("Transform should not fail on an unparseable price: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected the bad-price row to be dropped, got %d rows", len(result))
	}
	if result[0].ID != "1" {
		t.Errorf("surviving row: got id %q, want %q", result[0].ID, "1")
	}
}

func TestTransformNullMunicipalityAborts(t *testing.T) {
	raw := validRaw()
	raw.Municipality = nil

	_, err := NewTransformer(newTestLogger()).Transform([]*models.RawProperty{raw})
	if err == nil {
		t.Fatal("expected error for surviving row with null municipality")
	}
	if !strings.Contains(err.Error(), "municipality") {
		t.Errorf("error should name the offending column: %v", err)
	}
}
