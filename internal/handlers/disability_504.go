package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// Disability504Handler answers questions about accommodations and the
// financial-aid implications of a reduced course load. Required elements:
// COA adjustment, reduced-load-still-full-time policy, professional
// judgment pathway (spec §4.4 table).
type Disability504Handler struct{}

func (Disability504Handler) ID() string { return "Disability504" }

var disability504Terms = []string{"ada", "504", "iep", "accommodations", "vr"}

func Disability504Trigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, disability504Terms, []model.StatusTerm{model.StatusDisabled})
}

func (h Disability504Handler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "disab") || strings.Contains(lower, "504") || strings.Contains(lower, "accommodat")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no disability-accommodations policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Accommodations and Aid",
				Paragraphs: []model.Paragraph{
					paragraph("A documented disability accommodation approved through the disability services office can support a reduced course load that the financial aid office still certifies as full-time for aid purposes.", doc),
					paragraph("A financial aid administrator may use professional judgment to adjust the Cost of Attendance for disability-related expenses not otherwise covered, such as assistive technology or vocational rehabilitation services.", doc),
				},
			},
		},
		Confidence: 0.72,
	}, nil
}
