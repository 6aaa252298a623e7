package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// BankruptcyIncarcerationHandler answers questions about non-custodial-
// parent waivers and professional-judgment appeals arising from parental
// bankruptcy or incarceration. Required elements: NCP waiver pathway and
// the professional-judgment appeal process (spec §4.4 table).
type BankruptcyIncarcerationHandler struct{}

func (BankruptcyIncarcerationHandler) ID() string { return "BankruptcyIncarceration" }

var bankruptcyIncarcerationTerms = []string{"chapter 7", "incarcerated", "professional judgment"}

func BankruptcyIncarcerationTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, bankruptcyIncarcerationTerms, []model.StatusTerm{model.StatusIncarcerated})
}

func (h BankruptcyIncarcerationHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "professional judgment") || strings.Contains(lower, "ncp waiver") || strings.Contains(lower, "non-custodial")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no NCP-waiver or professional-judgment policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Non-Custodial Parent Waiver",
				Paragraphs: []model.Paragraph{
					paragraph("When a non-custodial parent cannot be located, is incarcerated, or has severed contact, the financial aid office may grant an NCP data waiver so the application can proceed with only the custodial parent's information.", doc),
				},
			},
			{
				Heading: "Professional Judgment Appeal",
				Paragraphs: []model.Paragraph{
					paragraph("A financial aid administrator may exercise professional judgment to adjust an aid determination for documented special circumstances, including a parent's bankruptcy filing, with supporting documentation submitted to the aid office.", doc),
				},
			},
		},
		Confidence: 0.7,
	}, nil
}
