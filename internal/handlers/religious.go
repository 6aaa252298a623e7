package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// ReligiousHandler answers questions about religious-observance
// accommodations (Sabbath, dietary, exemptions) distinct from mission
// deferrals. Required element: the institution's accommodation policy
// (spec §4.4 table).
type ReligiousHandler struct{}

func (ReligiousHandler) ID() string { return "Religious" }

var religiousTerms = []string{"sabbath", "kosher", "halal", "exemption"}

func ReligiousTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTerms(signals, religiousTerms)
}

func (h ReligiousHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "religious") || strings.Contains(lower, "sabbath") || strings.Contains(lower, "dietary")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no religious-accommodation policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Accommodation Policy",
				Paragraphs: []model.Paragraph{
					paragraph("The institution's religious-accommodation policy allows excused absences for Sabbath and other observed holy days, and provides dietary accommodation (including kosher or halal options) through student dining services upon request.", doc),
				},
			},
		},
		Confidence: 0.68,
	}, nil
}
