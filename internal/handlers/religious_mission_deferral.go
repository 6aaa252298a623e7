package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// ReligiousMissionDeferralHandler answers questions about deferring
// enrollment for a religious mission or gap year. Required elements:
// deferral policy, aid-retention terms, and visa timing for international
// students (spec §4.4 table).
type ReligiousMissionDeferralHandler struct{}

func (ReligiousMissionDeferralHandler) ID() string { return "ReligiousMissionDeferral" }

var missionDeferralTerms = []string{"mission", "deferral", "lds", "gap-year", "gap year"}

func MissionDeferralTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, missionDeferralTerms, []model.StatusTerm{model.StatusMissionDeferral, model.StatusLDS})
}

func (h ReligiousMissionDeferralHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "deferral") || strings.Contains(lower, "mission") || strings.Contains(lower, "gap year")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no deferral policy document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Deferral Policy",
				Paragraphs: []model.Paragraph{
					paragraph("Admission or enrollment may be deferred for a religious mission or structured gap year by submitting a deferral request before the institution's published deadline.", doc),
				},
			},
			{
				Heading: "Aid Retention",
				Paragraphs: []model.Paragraph{
					paragraph("Institutional scholarships and grants are generally held for the deferral period when the request is approved before the aid-acceptance deadline; federal aid eligibility is re-evaluated upon re-enrollment.", doc),
				},
			},
		},
		Confidence: 0.72,
	}, nil
}
