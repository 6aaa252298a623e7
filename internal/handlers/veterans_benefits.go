package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// VeteransBenefitsHandler answers Post-9/11 GI Bill and benefit-stacking
// questions for veteran students. Required element: the rules governing
// stacking GI Bill benefits with other federal aid (spec §4.4 table).
type VeteransBenefitsHandler struct{}

func (VeteransBenefitsHandler) ID() string { return "VeteransBenefits" }

var veteransBenefitsTerms = []string{"post-9/11", "gi bill", "yellow ribbon"}

func VeteransBenefitsTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, veteransBenefitsTerms, []model.StatusTerm{model.StatusVeteran})
}

func (h VeteransBenefitsHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "gi bill") || strings.Contains(lower, "post-9/11") || strings.Contains(lower, "yellow ribbon")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no veterans' benefits policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Benefit Stacking",
				Paragraphs: []model.Paragraph{
					paragraph("Post-9/11 GI Bill tuition and housing benefits can be combined with federal grants and loans for the same term, since the GI Bill's tuition payment is not counted as estimated financial assistance that reduces Pell eligibility.", doc),
				},
			},
		},
		Confidence: 0.7,
	}, nil
}
