package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// ResidencyWUEHandler answers in-state residency reclassification and
// Western Undergraduate Exchange (WUE) questions. Required elements:
// physical-presence and intent tests, financial independence, and WUE
// program exclusions (spec §4.4 table).
type ResidencyWUEHandler struct{}

func (ResidencyWUEHandler) ID() string { return "ResidencyWUE" }

var residencyWUETerms = []string{"residency", "wue", "in-state"}

func ResidencyWUETrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTerms(signals, residencyWUETerms)
}

func (h ResidencyWUEHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "residency") || strings.Contains(lower, "wue") || strings.Contains(lower, "domicile")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no residency or WUE policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Residency Reclassification",
				Paragraphs: []model.Paragraph{
					paragraph("In-state residency reclassification requires twelve consecutive months of physical presence in the state combined with objective evidence of intent to remain (voter registration, state ID, lease) and, for a student under 24, financial independence from an out-of-state parent.", doc),
				},
			},
			{
				Heading: "WUE Exclusions",
				Paragraphs: []model.Paragraph{
					paragraph("Western Undergraduate Exchange reduced tuition applies only to the specific majors and campuses an institution designates each year; high-demand majors are frequently excluded from the WUE rate.", doc),
				},
			},
		},
		Confidence: 0.7,
	}, nil
}
