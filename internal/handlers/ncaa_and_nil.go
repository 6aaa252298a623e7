package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// NCAAandNILHandler answers NCAA eligibility and Name/Image/Likeness
// questions, including the F-1 visa restrictions on NIL compensation that
// make this handler compose with InternationalTransfer (spec §8 scenario
// 5). Required elements: academic redshirt/eligibility rules and, for
// international athletes, F-1 NIL restrictions (spec §4.4 table).
type NCAAandNILHandler struct{}

func (NCAAandNILHandler) ID() string { return "NCAAandNIL" }

var ncaaTerms = []string{"ncaa", "nil", "eligibility", "transfer portal"}

// NCAAandNILTrigger fires on {NCAA, NIL, eligibility, transfer portal}.
func NCAAandNILTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTerms(signals, ncaaTerms)
}

func (h NCAAandNILHandler) Apply(_ context.Context, signals model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "ncaa") || strings.Contains(lower, "nil") || strings.Contains(lower, "eligibility")
	})
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no NCAA eligibility or NIL policy document was retrieved")
	}
	doc := docs[0].Document

	sections := []model.Section{
		{
			Heading: "NCAA Eligibility",
			Paragraphs: []model.Paragraph{
				paragraph("NCAA academic eligibility for a transferring student-athlete depends on meeting progress-toward-degree requirements; equivalency sports allocate partial scholarships across a roster rather than head-count scholarships, which affects aid packaging during a transfer.", doc),
			},
		},
	}

	if signals.HasStatus(model.StatusF1Visa) {
		sections = append(sections, model.Section{
			Heading: "F-1 NIL Restrictions",
			Paragraphs: []model.Paragraph{
				paragraph("An F-1 student-athlete may not perform NIL-compensated work inside the United States under current immigration rules; permissible NIL activity is generally limited to passive licensing and work performed while physically outside the U.S.", doc),
			},
		})
	}

	return model.HandlerResult{
		HandlerID:  h.ID(),
		Sections:   sections,
		Confidence: 0.7,
	}, nil
}
