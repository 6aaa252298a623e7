package calculators

import (
	"testing"

	"github.com/admitly/admitly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSchedule() COASchedule {
	return COASchedule{
		InstitutionID: "uw-seattle",
		AcademicYear:  "2025-26",
		Residency:     "in_state",
		HousingType:   "on_campus",
		SourceURL:     "https://washington.edu/cost-of-attendance/2025-26",
		Components: map[COAComponentKind]float64{
			COATuitionAndFees:   12000,
			COAHousing:          14000,
			COAFood:             5500,
			COABooksAndSupplies: 1200,
			COATransportation:   900,
		},
	}
}

func TestComputeCOASumsComponents(t *testing.T) {
	result, err := ComputeCOA(fullSchedule())
	require.NoError(t, err)
	assert.Equal(t, 33600.0, result.Total)
	assert.Equal(t, model.CitationWeb, result.Citation.Kind)
	assert.Equal(t, "https://washington.edu/cost-of-attendance/2025-26", result.Citation.URL)
}

func TestComputeCOAMissingComponentFails(t *testing.T) {
	schedule := fullSchedule()
	delete(schedule.Components, COATransportation)

	_, err := ComputeCOA(schedule)
	assert.ErrorIs(t, err, model.ErrUnsupportedCalculatorInput)
}

func TestComputeCOAIsDeterministic(t *testing.T) {
	a, err := ComputeCOA(fullSchedule())
	require.NoError(t, err)
	b, err := ComputeCOA(fullSchedule())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
