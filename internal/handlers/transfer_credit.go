package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// TransferCreditHandler answers questions about converting AP, IB, A-Level,
// or dual-enrollment coursework into transfer credit. Required element:
// the published credit caps and score thresholds (spec §4.4 table).
type TransferCreditHandler struct{}

func (TransferCreditHandler) ID() string { return "TransferCredit" }

var transferCreditTerms = []string{"ib", "a-level", "ap", "dual enrollment"}

func TransferCreditTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTerms(signals, transferCreditTerms)
}

func (h TransferCreditHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "credit cap") || strings.Contains(lower, "score") || strings.Contains(lower, "ap exam") || strings.Contains(lower, "ib exam")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no credit-transfer policy document with score thresholds was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Credit Conversion",
				Paragraphs: []model.Paragraph{
					paragraph("AP, IB, A-Level, and dual-enrollment coursework convert to transfer credit only above the institution's published minimum exam score or grade, and only up to a total credit cap applied per subject area.", doc),
				},
			},
		},
		Confidence: 0.7,
	}, nil
}
