package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// DACAorTPSHandler answers aid-eligibility questions for DACA, TPS, and
// undocumented students. Required elements: federal ineligibility
// statement, state-level aid eligibility, and a meets-need private
// institution pointer (spec §4.4 table).
type DACAorTPSHandler struct{}

func (DACAorTPSHandler) ID() string { return "DACAorTPS" }

var dacaTPSTerms = []string{"daca", "tps", "undocumented", "ab 540", "ab540"}

func DACAorTPSTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, dacaTPSTerms, []model.StatusTerm{model.StatusDACA, model.StatusTPS, model.StatusUndocumented})
}

func (h DACAorTPSHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "daca") || strings.Contains(lower, "tps") || strings.Contains(lower, "undocumented") || strings.Contains(lower, "state aid")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no state-aid or federal-eligibility document covering DACA/TPS status was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Federal Aid Eligibility",
				Paragraphs: []model.Paragraph{
					paragraph("DACA, TPS, and undocumented students are not eligible for federal Title IV student aid (Pell Grants, federal Direct Loans, Federal Work-Study).", doc),
				},
			},
			{
				Heading: "State and Institutional Aid",
				Paragraphs: []model.Paragraph{
					paragraph("Many states offer state financial aid or in-state tuition to qualifying undocumented and DACA students through their own residency-and-aid statutes; eligibility and the application form vary by state.", doc),
				},
			},
			{
				Heading: "Meets-Need Private Institutions",
				Paragraphs: []model.Paragraph{
					paragraph("A subset of private institutions extend need-based institutional aid to undocumented and DACA applicants regardless of federal eligibility; these institutions are identified in the corpus's curated aid-policy records.", doc),
				},
			},
		},
		Confidence: 0.72,
	}, nil
}
