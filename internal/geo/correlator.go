package geo

import (
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/store"
)

// Per-governorate severity labels.
const (
	SeveritySafe     = "safe"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// RegionStatus is the derived correlation result for one governorate. It is
// recomputed wholesale from the current reports snapshot and never mutated.
type RegionStatus struct {
	Region       Region           `json:"region"`
	Count        int              `json:"count"`
	Severity     string           `json:"severity"`
	Radius       int              `json:"radius"`
	StrokeWeight int              `json:"stroke_weight"`
	Reports      []store.Document `json:"reports"`
}

// Correlate maps the current shortage reports onto the governorate registry.
// Only unresolved reports count; matching is exact and case-sensitive, and a
// report whose governorate matches no registry entry correlates nowhere.
func Correlate(reports []store.Document) []RegionStatus {
	matched := make(map[string][]store.Document, len(Governorates))
	for _, report := range reports {
		if report.String("status") == models.ReportStatusResolved {
			continue
		}
		name := report.String("governorate")
		if !Valid(name) {
			continue
		}
		matched[name] = append(matched[name], report)
	}

	statuses := make([]RegionStatus, 0, len(Governorates))
	for _, region := range Governorates {
		reports := matched[region.Name]
		statuses = append(statuses, RegionStatus{
			Region:       region,
			Count:        len(reports),
			Severity:     classify(reports),
			Radius:       radius(len(reports)),
			StrokeWeight: strokeWeight(len(reports)),
			Reports:      reports,
		})
	}
	return statuses
}

func classify(reports []store.Document) string {
	if len(reports) == 0 {
		return SeveritySafe
	}
	for _, report := range reports {
		if report.String("priority") == models.ReportPriorityHigh {
			return SeverityCritical
		}
	}
	return SeverityWarning
}

func radius(count int) int {
	if count > 0 {
		return 10 + 2*count
	}
	return 5
}

func strokeWeight(count int) int {
	if count > 0 {
		return 2
	}
	return 1
}
