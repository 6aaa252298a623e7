package normalizer

import (
	"testing"

	"github.com/admitly/admitly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	return New(2026, []string{"University of Washington", "Harvard University"})
}

func TestNormalizeFutureYearAbstains(t *testing.T) {
	n := newTestNormalizer()
	signals, abst := n.Normalize("What will Harvard's admit rate be in 2030?")
	require.NotNil(t, abst)
	assert.Equal(t, model.ReasonTemporalOutOfRange, abst.Reason)
	assert.Equal(t, model.TemporalFutureBounded, signals.Temporal)
}

func TestNormalizeUnknownInstitutionAbstains(t *testing.T) {
	n := newTestNormalizer()
	_, abst := n.Normalize("Transfer rate for Biology at University of XYZ.")
	require.NotNil(t, abst)
	assert.Equal(t, model.ReasonUnknownEntity, abst.Reason)
}

func TestNormalizeEmptyQueryAbstains(t *testing.T) {
	n := newTestNormalizer()
	_, abst := n.Normalize("   ")
	require.NotNil(t, abst)
	assert.Equal(t, model.ReasonOutOfScope, abst.Reason)
}

func TestNormalizeKnownInstitutionDoesNotAbstain(t *testing.T) {
	n := newTestNormalizer()
	_, abst := n.Normalize("What GPA do I need to internally transfer into CS at University of Washington?")
	assert.Nil(t, abst)
}

func TestNormalizeExtractsStatusTerms(t *testing.T) {
	n := newTestNormalizer()
	signals, abst := n.Normalize("I was in foster care after 13 and I'm on SAP probation; how do I appeal?")
	require.Nil(t, abst)
	assert.True(t, signals.HasStatus(model.StatusFoster))
}

func TestNormalizeExtractsNumericParameters(t *testing.T) {
	n := newTestNormalizer()
	signals, _ := n.Normalize("My parent AGI is $45,000 and I have a 3.5 GPA, household of 4.")
	require.NotNil(t, signals.Numeric.Income)
	assert.Equal(t, 45000.0, *signals.Numeric.Income)
	require.NotNil(t, signals.Numeric.GPA)
	assert.Equal(t, 3.5, *signals.Numeric.GPA)
	require.NotNil(t, signals.Numeric.HouseholdSize)
	assert.Equal(t, 4, *signals.Numeric.HouseholdSize)
}

func TestNormalizeSubjectiveWithoutConstraintsFlagged(t *testing.T) {
	n := newTestNormalizer()
	signals, _ := n.Normalize("Should I go to Harvard University or University of Washington?")
	assert.True(t, signals.SubjectiveDecision)
}

func TestNormalizeSubjectiveWithConstraintsNotFlagged(t *testing.T) {
	n := newTestNormalizer()
	signals, _ := n.Normalize("Should I apply given my 3.8 GPA and $30,000 household income?")
	assert.False(t, signals.SubjectiveDecision)
}

func TestNormalizeParentPLUSDoesNotMisfireAsUnknownEntity(t *testing.T) {
	n := newTestNormalizer()
	_, abst := n.Normalize("My mother was denied a Parent PLUS loan. Am I now independent?")
	assert.Nil(t, abst)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"foster", "care", "2024"}, tokenize("Foster-Care, 2024!"))
}
