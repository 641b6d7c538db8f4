package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"property-etl/models"
)

// ReportService computes summary analytics over the batch that was
// just inserted into the destination table.
type ReportService struct {
	logger *logrus.Logger
}

func NewReportService(logger *logrus.Logger) *ReportService {
	return &ReportService{logger: logger}
}

func (s *ReportService) Generate(properties []*models.Property) *models.SummaryReport {
	report := &models.SummaryReport{
		ByPropertyType: make(map[string]int),
		ByMunicipality: make(map[string]int),
	}

	if len(properties) == 0 {
		return report
	}

	report.TotalInserted = len(properties)
	report.MinPPSM = properties[0].PricePerSquareMeter
	report.MaxPPSM = properties[0].PricePerSquareMeter

	var total float64
	for _, p := range properties {
		ppsm := p.PricePerSquareMeter
		total += ppsm
		if ppsm < report.MinPPSM {
			report.MinPPSM = ppsm
		}
		if ppsm > report.MaxPPSM {
			report.MaxPPSM = ppsm
		}
		report.ByPropertyType[p.PropertyType]++
		report.ByMunicipality[p.Municipality]++
	}
	report.AveragePPSM = round2(total / float64(len(properties)))

	return report
}

// Print writes the report to stdout.
func (s *ReportService) Print(r *models.SummaryReport) {
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n  PROPERTY LOAD SUMMARY\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Rows inserted this run : %d\n", r.TotalInserted)

	if r.TotalInserted == 0 {
		fmt.Println()
		return
	}

	fmt.Printf("  Price per m² (avg)     : %.2f\n", r.AveragePPSM)
	fmt.Printf("  Price per m² (min)     : %.2f\n", r.MinPPSM)
	fmt.Printf("  Price per m² (max)     : %.2f\n", r.MaxPPSM)

	fmt.Printf("\n  By property type\n")
	fmt.Printf("  %s\n", thin)
	for _, k := range sortedKeys(r.ByPropertyType) {
		fmt.Printf("  %-20s : %d\n", k, r.ByPropertyType[k])
	}

	fmt.Printf("\n  By municipality\n")
	fmt.Printf("  %s\n", thin)
	for _, k := range sortedKeys(r.ByMunicipality) {
		fmt.Printf("  %-20s : %d\n", k, r.ByMunicipality[k])
	}
	fmt.Println()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Highest count first, name as tie-breaker.
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
