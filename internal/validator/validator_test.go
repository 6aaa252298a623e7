package validator

import (
	"testing"
	"time"

	"github.com/admitly/admitly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{CitationCoverageFloor: 0.90, MinAuthoritativeSources: 3}
}

func authoritativeCandidates(n int) []model.CandidatePassage {
	out := make([]model.CandidatePassage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.CandidatePassage{
			Document: model.Document{
				ID:           string(rune('a' + i)),
				Collection:   model.CollectionAidPolicies,
				SourceURL:    "https://school.edu/policy-" + string(rune('a'+i)),
				Body:         "the minimum gpa is 3.5 and the deadline is march 1",
				LastVerified: time.Now(),
			},
		})
	}
	return out
}

// citeAll builds one citation per authoritativeCandidates entry, for tests
// that need to clear the authority floor (>= 3 distinct authoritative
// sources cited).
func citeAll(n int) []model.Citation {
	out := make([]model.Citation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cited("https://school.edu/policy-"+string(rune('a'+i))))
	}
	return out
}

func cited(url string) model.Citation {
	return model.Citation{URL: url, Kind: model.CitationWeb}
}

func TestValidateAcceptsWellFormedResult(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Eligibility", Paragraphs: []model.Paragraph{
				{Text: "The minimum gpa is 3.5.", Citations: citeAll(3)},
			}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, []string{"Eligibility"})

	require.Nil(t, outcome.Abstention)
	assert.False(t, outcome.Retryable)
	assert.True(t, outcome.Accepted.Sealed())
}

func TestCitationCoverageBelowFloorIsRetryable(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Eligibility", Paragraphs: []model.Paragraph{
				{Text: "The minimum gpa is 3.5.", Citations: citeAll(3)},
				{Text: "The deadline is March 1.", Citations: nil},
			}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)

	assert.True(t, outcome.Retryable)
	assert.Equal(t, "citation_coverage", outcome.FailedCheck)
}

func TestFabricationRejectsUnknownURL(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Eligibility", Paragraphs: []model.Paragraph{
				{Text: "The minimum gpa is 3.5.", Citations: []model.Citation{cited("https://not-retrieved.example/other")}},
			}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)

	require.NotNil(t, outcome.Abstention)
	assert.Equal(t, model.ReasonInsufficientEvidence, outcome.Abstention.Reason)
	assert.Equal(t, "fabrication", outcome.FailedCheck)
}

func TestFabricationAllowsFormulaCitation(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Cost", Paragraphs: []model.Paragraph{
				{Text: "The minimum gpa is 3.5.", Citations: citeAll(3)},
			}},
		},
		Calculations: []model.Calculation{
			{Name: "sai", Citation: model.Citation{URL: "formula:sai-2024-25"}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)
	assert.Nil(t, outcome.Abstention)
}

func TestNumericTraceabilityRejectsUncitedNumber(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Eligibility", Paragraphs: []model.Paragraph{
				{Text: "The minimum gpa is 9.99.", Citations: citeAll(3)[:1]},
			}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)

	assert.True(t, outcome.Retryable)
	assert.Equal(t, "numeric_traceability", outcome.FailedCheck)
}

func TestNumericTraceabilityAcceptsCalculatorOutput(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Cost", Paragraphs: []model.Paragraph{
				{Text: "Your SAI is 4821.5.", Citations: citeAll(3)},
			}},
		},
		Calculations: []model.Calculation{
			{Name: "sai", Outputs: map[string]any{"sai": 4821.5}, Citation: model.Citation{URL: "formula:sai-2024-25"}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)
	assert.Nil(t, outcome.Abstention)
	assert.False(t, outcome.Retryable)
}

func TestAuthorityFloorRejectsTooFewAuthoritativeSources(t *testing.T) {
	candidates := []model.CandidatePassage{
		{Document: model.Document{ID: "d1", SourceURL: "https://blog.example/post", Body: "the minimum gpa is 3.5"}},
	}
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Eligibility", Paragraphs: []model.Paragraph{
				{Text: "The minimum gpa is 3.5.", Citations: []model.Citation{cited("https://blog.example/post")}},
			}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)

	require.NotNil(t, outcome.Abstention)
	assert.Equal(t, model.ReasonInsufficientEvidence, outcome.Abstention.Reason)
	assert.Equal(t, "authority_floor", outcome.FailedCheck)
}

func TestSchemaConformanceRejectsEmptySection(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Other", Paragraphs: []model.Paragraph{{Text: "The minimum gpa is 3.5.", Citations: citeAll(3)}}},
			{Heading: "Eligibility", Paragraphs: nil},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)

	assert.True(t, outcome.Retryable)
	assert.Equal(t, "schema_conformance", outcome.FailedCheck)
}

func TestSchemaConformanceRejectsOutOfOrderSections(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Risk Mitigation", Paragraphs: []model.Paragraph{{Text: "The minimum gpa is 3.5.", Citations: citeAll(3)}}},
			{Heading: "Eligibility", Paragraphs: []model.Paragraph{{Text: "plain text with no digits"}}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, []string{"Eligibility", "Risk Mitigation"})

	assert.True(t, outcome.Retryable)
	assert.Equal(t, "schema_conformance", outcome.FailedCheck)
}

func TestSubjectiveRecommendationStripsAdvocacyButKeepsOtherContent(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Eligibility", Paragraphs: []model.Paragraph{
				{Text: "The minimum gpa is 3.5.", Citations: citeAll(3)},
				{Text: "You should pick State University over the other school.", Citations: citeAll(3)},
			}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)

	require.Nil(t, outcome.Abstention)
	require.Len(t, outcome.Accepted.Sections[0].Paragraphs, 1)
	assert.Contains(t, outcome.Accepted.Sections[0].Paragraphs[0].Text, "3.5")
}

func TestSubjectiveRecommendationAbstainsWhenSectionWouldEmpty(t *testing.T) {
	candidates := authoritativeCandidates(3)
	result := model.HandlerResult{
		HandlerID: "Test",
		Sections: []model.Section{
			{Heading: "Recommendation", Paragraphs: []model.Paragraph{
				{Text: "You should pick State University over the other school.", Citations: citeAll(3)},
			}},
		},
	}

	v := New(defaultParams())
	outcome := v.Validate(result, candidates, nil)

	require.NotNil(t, outcome.Abstention)
	assert.Equal(t, model.ReasonSubjectiveDecision, outcome.Abstention.Reason)
}
