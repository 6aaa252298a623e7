package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// ParentPLUSDenialHandler answers "my parent was denied a Parent PLUS
// loan" questions. It must never assert the student becomes an
// independent student — denial only opens additional unsubsidized Direct
// Loan eligibility (spec §4.4 table).
type ParentPLUSDenialHandler struct{}

func (ParentPLUSDenialHandler) ID() string { return "ParentPLUSDenial" }

var parentPLUSTerms = []string{"parent plus", "endorser", "denied"}

// ParentPLUSDenialTrigger fires on {Parent PLUS, endorser, denied} terms.
func ParentPLUSDenialTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTerms(signals, parentPLUSTerms)
}

func (h ParentPLUSDenialHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	matches := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "parent plus") || strings.Contains(lower, "unsubsidized")
	})
	if len(matches) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no federal aid policy document discussing Parent PLUS denial was retrieved")
	}

	doc := matches[0].Document
	paragraphs := []model.Paragraph{
		paragraph(
			"A Parent PLUS Loan denial does not change the student's dependency status; the student remains a dependent student for federal aid purposes.",
			doc,
		),
		paragraph(
			"A Parent PLUS denial makes the student eligible for additional unsubsidized Direct Loan funds, up to the independent-student unsubsidized loan limit for their grade level.",
			doc,
		),
	}

	result := model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{Heading: "Eligibility After Denial", Paragraphs: paragraphs},
		},
		Confidence: 0.85,
	}
	return result, nil
}
