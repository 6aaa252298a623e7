// Package calculators implements the deterministic financial calculators
// consulted by handlers (spec §4.5): SAI and COA. Both are pure functions
// with no I/O — callers supply every input and receive a reproducible
// output plus the formula/citation metadata the Validator's numeric-
// traceability check requires.
package calculators

import (
	"fmt"

	"github.com/admitly/admitly/internal/model"
)

// SAIFormulaVersion is echoed in every SAIResult and rendered as the
// calculation's formula citation.
const SAIFormulaVersion = "sai-2024-25"

// saiFloor is the published minimum SAI for the 2024-25 formula: a
// household can be assessed as negative need up to this floor.
const saiFloor = -1500.0

// baseIncomeProtectionAllowance approximates the 2024-25 published allowance
// for a household of 4 with one in college; SAIInput.HouseholdSize and
// NumberInCollege adjust it per the published table's shape (larger
// households and more students in college raise the allowance).
const baseIncomeProtectionAllowance = 28590.0

// assessmentRate is the marginal rate applied to discretionary income in
// the simplified available-income step of the 2024-25 formula.
const assessmentRate = 0.22

// assetProtectionAllowance is zeroed under the 2024-25 formula for parents;
// kept as a named constant rather than a bare 0 literal so the formula
// reads the same shape as the published worksheet.
const assetProtectionAllowance = 0.0

// SAIInput is the full set of inputs the 2024-25 SAI formula consumes.
type SAIInput struct {
	ParentAGI       float64
	ParentAssets    float64
	StudentIncome   float64
	HouseholdSize    int
	NumberInCollege int
}

// SAIResult is the SAI plus the component breakdown the Validator and
// handlers cite alongside it.
type SAIResult struct {
	SAI             float64
	Floored         bool
	Components      map[string]float64
	FormulaVersion  string
}

// ComputeSAI computes the Student Aid Index. It never fabricates: an
// invalid input (zero or negative household size, zero or negative students in
// college) returns model.ErrUnsupportedCalculatorInput rather than a
// guessed number.
func ComputeSAI(in SAIInput) (SAIResult, error) {
	if in.HouseholdSize <= 0 || in.NumberInCollege <= 0 {
		return SAIResult{}, fmt.Errorf("calculators: %w: household size and number in college must be positive", model.ErrUnsupportedCalculatorInput)
	}

	protectionAllowance := incomeProtectionAllowance(in.HouseholdSize, in.NumberInCollege)

	totalIncome := in.ParentAGI + in.StudentIncome
	discretionaryIncome := totalIncome - protectionAllowance

	availableIncome := discretionaryIncome * assessmentRate
	assessableAssets := in.ParentAssets - assetProtectionAllowance
	if assessableAssets < 0 {
		assessableAssets = 0
	}
	assetContribution := assessableAssets * 0.12

	raw := availableIncome + assetContribution
	raw = raw / float64(in.NumberInCollege)

	floored := false
	sai := raw
	if sai < saiFloor {
		sai = saiFloor
		floored = true
	}

	return SAIResult{
		SAI:     sai,
		Floored: floored,
		Components: map[string]float64{
			"income_protection_allowance": protectionAllowance,
			"discretionary_income":        discretionaryIncome,
			"available_income":            availableIncome,
			"assessable_assets":           assessableAssets,
			"asset_contribution":          assetContribution,
		},
		FormulaVersion: SAIFormulaVersion,
	}, nil
}

// incomeProtectionAllowance scales the base allowance by household size
// and number in college, following the published table's shape: each
// additional household member above 4 adds headroom, and each additional
// student in college increases the allowance (since each is assumed to
// need support).
func incomeProtectionAllowance(householdSize, numberInCollege int) float64 {
	allowance := baseIncomeProtectionAllowance
	if householdSize > 4 {
		allowance += float64(householdSize-4) * 5000
	}
	if numberInCollege > 1 {
		allowance += float64(numberInCollege-1) * 6000
	}
	return allowance
}

// Citation returns the formula-kind citation the Validator and handlers
// attach to an SAI calculation.
func (r SAIResult) Citation() model.Citation {
	return model.Citation{URL: "formula:" + r.FormulaVersion, Kind: model.CitationFormula}
}
