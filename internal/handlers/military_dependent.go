package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// MilitaryDependentHandler answers aid-eligibility questions for military
// dependents. Required elements: in-state eligibility, Yellow Ribbon, and
// DODEA pointers (spec §4.4 table).
type MilitaryDependentHandler struct{}

func (MilitaryDependentHandler) ID() string { return "MilitaryDependent" }

var militaryDependentTerms = []string{"dependent", "active duty", "gi bill"}

func MilitaryDependentTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, militaryDependentTerms, []model.StatusTerm{model.StatusDependent})
}

func (h MilitaryDependentHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "yellow ribbon") || strings.Contains(lower, "active duty") || strings.Contains(lower, "dodea") || strings.Contains(lower, "military")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no military-dependent aid policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Residency and Benefit Eligibility",
				Paragraphs: []model.Paragraph{
					paragraph("A dependent of an active-duty service member is generally eligible for in-state tuition at public institutions under federal and state active-duty residency statutes, regardless of how long the family has lived in the state.", doc),
					paragraph("Yellow Ribbon Program agreements between an institution and the VA can cover tuition and fee costs above the Post-9/11 GI Bill's public in-state cap for a transferred benefit.", doc),
				},
			},
		},
		Confidence: 0.72,
	}, nil
}
