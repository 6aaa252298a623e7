package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// FinancialAidSAPHandler answers general Satisfactory Academic Progress
// appeal questions (the status-neutral counterpart to FosterCareHomeless's
// SAP sub-section). Required element: the institution's published appeal
// procedure (spec §4.4 table).
type FinancialAidSAPHandler struct{}

func (FinancialAidSAPHandler) ID() string { return "FinancialAidSAP" }

var financialAidSAPTerms = []string{"sap", "appeal", "suspension"}

func FinancialAidSAPTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTerms(signals, financialAidSAPTerms)
}

func (h FinancialAidSAPHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "satisfactory academic progress") || strings.Contains(lower, "sap appeal") || strings.Contains(lower, "suspension")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no institution-specific SAP appeal procedure document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "SAP Appeal Procedure",
				Paragraphs: []model.Paragraph{
					paragraph("A student placed on Satisfactory Academic Progress suspension may submit a written appeal describing the circumstances that caused the shortfall and an academic plan for returning to good standing, by the institution's published appeal deadline.", doc),
				},
			},
		},
		Confidence: 0.7,
	}, nil
}
