package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// InternationalTransferHandler answers international credit-evaluation and
// F-1 transfer questions. Required elements: credit evaluation standard,
// ABET conformance note where relevant, and F-1 visa mechanics (spec §4.4
// table).
type InternationalTransferHandler struct{}

func (InternationalTransferHandler) ID() string { return "InternationalTransfer" }

var internationalTransferTerms = []string{"ects", "a-level", "ib", "international"}

// InternationalTransferTrigger fires on {ECTS, A-Level, IB, international}
// terms or on an F-1/visa status signal; either one alone is enough.
func InternationalTransferTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, internationalTransferTerms, []model.StatusTerm{model.StatusF1Visa})
}

func (h InternationalTransferHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "f-1") || strings.Contains(lower, "credit evaluation") || strings.Contains(lower, "articulation")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no visa-mechanics or credit-evaluation document was retrieved for this international transfer question")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "International Credit Evaluation",
				Paragraphs: []model.Paragraph{
					paragraph("International coursework (A-Level, IB, or ECTS-credited) is evaluated against equivalent domestic courses by the receiving institution's transfer credit office before it is applied to degree requirements.", doc),
				},
			},
			{
				Heading: "F-1 Visa Mechanics",
				Paragraphs: []model.Paragraph{
					paragraph("An F-1 student transferring institutions must have the new school issue a transfer-pending Form I-20 and must report to the new school's international student office within the required transfer window to maintain status.", doc),
				},
			},
		},
		Confidence: 0.75,
	}, nil
}
