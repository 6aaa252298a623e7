package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// BSMDHandler answers questions about combined BS/MD (and similar
// pre-medical linkage) programs. Required elements: program list, MCAT/GPA
// gate requirements, and program cost (spec §4.4 table).
type BSMDHandler struct{}

func (BSMDHandler) ID() string { return "BSMD" }

var bsmdTerms = []string{"bs/md", "plme", "pre-med"}

func BSMDTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTerms(signals, bsmdTerms)
}

func (h BSMDHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "bs/md") || strings.Contains(lower, "mcat") || strings.Contains(lower, "pre-med")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no combined-degree program document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Program Requirements",
				Paragraphs: []model.Paragraph{
					paragraph("Combined BS/MD programs admit directly from high school and require maintaining a published minimum undergraduate GPA and MCAT score to retain the guaranteed medical-school seat through the gate review.", doc),
				},
			},
		},
		Confidence: 0.68,
	}, nil
}
