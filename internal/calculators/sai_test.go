package calculators

import (
	"testing"

	"github.com/admitly/admitly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSAIBasic(t *testing.T) {
	result, err := ComputeSAI(SAIInput{
		ParentAGI: 60000, ParentAssets: 10000, StudentIncome: 2000,
		HouseholdSize: 4, NumberInCollege: 1,
	})
	require.NoError(t, err)
	assert.False(t, result.Floored)
	assert.Equal(t, SAIFormulaVersion, result.FormulaVersion)
	assert.Contains(t, result.Components, "discretionary_income")
}

func TestComputeSAIFloorsNegative(t *testing.T) {
	result, err := ComputeSAI(SAIInput{
		ParentAGI: 10000, ParentAssets: 0, StudentIncome: 0,
		HouseholdSize: 6, NumberInCollege: 2,
	})
	require.NoError(t, err)
	assert.True(t, result.Floored)
	assert.Equal(t, saiFloor, result.SAI)
}

func TestComputeSAIRejectsInvalidInput(t *testing.T) {
	_, err := ComputeSAI(SAIInput{HouseholdSize: 0, NumberInCollege: 1})
	assert.ErrorIs(t, err, model.ErrUnsupportedCalculatorInput)

	_, err = ComputeSAI(SAIInput{HouseholdSize: 4, NumberInCollege: 0})
	assert.ErrorIs(t, err, model.ErrUnsupportedCalculatorInput)
}

func TestComputeSAIIsDeterministic(t *testing.T) {
	in := SAIInput{ParentAGI: 75000, ParentAssets: 20000, StudentIncome: 1500, HouseholdSize: 5, NumberInCollege: 2}
	a, err := ComputeSAI(in)
	require.NoError(t, err)
	b, err := ComputeSAI(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSAIResultCitation(t *testing.T) {
	result, err := ComputeSAI(SAIInput{ParentAGI: 50000, HouseholdSize: 3, NumberInCollege: 1})
	require.NoError(t, err)
	c := result.Citation()
	assert.Equal(t, model.CitationFormula, c.Kind)
	assert.Equal(t, "formula:sai-2024-25", c.URL)
}
