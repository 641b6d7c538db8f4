package models

// RawProperty holds one input line exactly as scraped, before any
// filtering or transformation. Only ID is guaranteed present; the other
// fields are pointers so that an absent value stays distinct from a
// zero value.
type RawProperty struct {
	ID           string   `json:"id"`
	RawPrice     *string  `json:"raw_price"`
	LivingArea   *float64 `json:"living_area"`
	PropertyType *string  `json:"property_type"`
	Municipality *string  `json:"municipality"`
	ScrapingDate *string  `json:"scraping_date"`
}

// Property is the filtered, transformed record ready for the properties
// table. Every column in the destination is NOT NULL, so every field
// here is required.
type Property struct {
	ID                  string
	ScrapingDate        string
	PropertyType        string
	Municipality        string
	Price               float64
	LivingArea          float64
	PricePerSquareMeter float64
}

// SummaryReport holds the computed analytics over one inserted batch.
type SummaryReport struct {
	TotalInserted  int
	AveragePPSM    float64
	MinPPSM        float64
	MaxPPSM        float64
	ByPropertyType map[string]int
	ByMunicipality map[string]int
}
