package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// TribalHandler answers aid-eligibility questions for enrolled tribal
// members. Required elements: BIA grant pointer, tribal college options,
// and the enrollment-vs-blood-quantum distinction (spec §4.4 table).
type TribalHandler struct{}

func (TribalHandler) ID() string { return "Tribal" }

var tribalTerms = []string{"tribal", "bia", "cdib", "navajo"}

func TribalTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, tribalTerms, []model.StatusTerm{model.StatusTribal})
}

func (h TribalHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "bia") || strings.Contains(lower, "tribal") || strings.Contains(lower, "cdib")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no BIA or tribal-college aid policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Tribal Aid Eligibility",
				Paragraphs: []model.Paragraph{
					paragraph("Enrolled members of a federally recognized tribe may be eligible for a Bureau of Indian Affairs (BIA) Higher Education Grant, administered through the tribe or a tribal college, in addition to federal Title IV aid.", doc),
					paragraph("Eligibility for tribal aid programs is determined by enrollment in a federally recognized tribe, which is a separate determination from a Certificate of Degree of Indian Blood (CDIB) blood-quantum record; institutions should not conflate the two.", doc),
				},
			},
		},
		Confidence: 0.7,
	}, nil
}
