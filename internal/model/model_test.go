package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentIsAuthoritative(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://admissions.washington.edu/apply/transfer", true},
		{"https://studentaid.gov/understand-aid/types/loans", true},
		{"https://www.collegeboard.org/", false},
		{"not a url", false},
		{"", false},
	}
	for _, c := range cases {
		d := Document{SourceURL: c.url}
		assert.Equal(t, c.want, d.IsAuthoritative(), c.url)
	}
}

func TestDocumentCitingURLPrefersSubURL(t *testing.T) {
	d := Document{SourceURL: "https://x.edu/policy", SubURL: "https://x.edu/policy#section-3"}
	assert.Equal(t, "https://x.edu/policy#section-3", d.CitingURL())

	d2 := Document{SourceURL: "https://x.edu/policy"}
	assert.Equal(t, "https://x.edu/policy", d2.CitingURL())
}

func TestEffectiveRangeCovers(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := now.AddDate(0, -1, 0)
	to := now.AddDate(0, 1, 0)

	assert.True(t, EffectiveRange{From: &from, To: &to}.Covers(now))
	assert.False(t, EffectiveRange{From: &from, To: &to}.Covers(now.AddDate(-1, 0, 0)))
	assert.True(t, EffectiveRange{}.Covers(now), "open range covers everything")
}

func TestQuerySignalsHasStatus(t *testing.T) {
	s := QuerySignals{StatusTerms: []StatusTerm{StatusFoster, StatusDACA}}
	assert.True(t, s.HasStatus(StatusFoster))
	assert.False(t, s.HasStatus(StatusVeteran))
	assert.True(t, s.HasAnyStatus(StatusVeteran, StatusDACA))
}

func TestHandlerResultClaimsAndCitationURLs(t *testing.T) {
	r := HandlerResult{
		HandlerID: "GenericCiteSummarize",
		Sections: []Section{
			{
				Heading: "Overview",
				Paragraphs: []Paragraph{
					{Text: "A", Citations: []Citation{{URL: "https://a.edu/1", Kind: CitationWeb}}},
					{Text: "B", Citations: []Citation{{URL: "https://a.edu/1", Kind: CitationWeb}, {URL: "https://b.gov/2", Kind: CitationWeb}}},
				},
			},
		},
		Calculations: []Calculation{
			{Name: "sai", Citation: Citation{URL: "formula:sai-2024-25", Kind: CitationFormula}},
		},
	}

	claims := r.Claims()
	assert.Len(t, claims, 2)

	urls := r.AllCitationURLs()
	assert.Equal(t, []string{"https://a.edu/1", "https://b.gov/2", "formula:sai-2024-25"}, urls)
}

func TestHandlerResultSeal(t *testing.T) {
	r := HandlerResult{HandlerID: "x"}
	assert.False(t, r.Sealed())
	sealed := r.Seal()
	assert.True(t, sealed.Sealed())
	assert.False(t, r.Sealed(), "Seal returns a copy; original is untouched")
}

func TestAnswerIsAbstention(t *testing.T) {
	a := Answer{Abstention: &Abstention{Reason: ReasonOutOfScope}}
	assert.True(t, a.IsAbstention())

	r := HandlerResult{HandlerID: "x"}
	a2 := Answer{Result: &r}
	assert.False(t, a2.IsAbstention())
}

func TestRequiredTags(t *testing.T) {
	assert.Contains(t, RequiredTags(CollectionMajorGates), "gpa_threshold")
	assert.Nil(t, RequiredTags(CollectionCitedAnswers))
}
