package calculators

import (
	"fmt"

	"github.com/admitly/admitly/internal/model"
)

// COAComponentKind enumerates the published cost-of-attendance components
// summed by ComputeCOA.
type COAComponentKind string

const (
	COATuitionAndFees   COAComponentKind = "tuition_and_fees"
	COAHousing          COAComponentKind = "housing"
	COAFood             COAComponentKind = "food"
	COABooksAndSupplies COAComponentKind = "books_and_supplies"
	COATransportation   COAComponentKind = "transportation"
)

// COASchedule is an institution's published per-year cost components for a
// given residency and housing configuration. Handlers obtain one of these
// from the cds_data / institution-level corpus via Storage; ComputeCOA
// itself performs no lookup.
type COASchedule struct {
	InstitutionID string
	AcademicYear  string
	Residency     string // "in_state" or "out_of_state"
	HousingType   string // "on_campus", "off_campus", or "with_family"
	Components    map[COAComponentKind]float64
	SourceURL     string
}

// COAResult is the summed cost of attendance plus its component breakdown.
type COAResult struct {
	Total      float64
	Components map[COAComponentKind]float64
	Citation   model.Citation
}

// ComputeCOA sums a schedule's published components. It never estimates a
// missing component: a schedule lacking any of the five required
// components returns model.ErrUnsupportedCalculatorInput.
func ComputeCOA(schedule COASchedule) (COAResult, error) {
	required := []COAComponentKind{
		COATuitionAndFees, COAHousing, COAFood, COABooksAndSupplies, COATransportation,
	}
	for _, kind := range required {
		if _, ok := schedule.Components[kind]; !ok {
			return COAResult{}, fmt.Errorf("calculators: %w: missing component %q for %s %s",
				model.ErrUnsupportedCalculatorInput, kind, schedule.InstitutionID, schedule.AcademicYear)
		}
	}

	var total float64
	components := make(map[COAComponentKind]float64, len(required))
	for _, kind := range required {
		v := schedule.Components[kind]
		total += v
		components[kind] = v
	}

	return COAResult{
		Total:      total,
		Components: components,
		Citation: model.Citation{
			URL:  schedule.SourceURL,
			Kind: model.CitationWeb,
		},
	}, nil
}
