package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// OFACSanctionsHandler answers tuition-payment questions that touch
// OFAC-sanctioned jurisdictions. Its contract is a compliance abstention
// with pointers, never an eligibility answer (spec §4.4 table) — the
// institution's compliance office, not this system, makes the actual
// determination.
type OFACSanctionsHandler struct{}

func (OFACSanctionsHandler) ID() string { return "OFACSanctions" }

// sanctionedJurisdictionTerms is a closed, non-exhaustive list of
// currently comprehensively-sanctioned jurisdictions for trigger
// purposes; the compliance abstention always points the user to the
// institution's compliance office for the authoritative determination.
var sanctionedJurisdictionTerms = []string{"iran", "north korea", "syria", "cuba", "crimea"}

func OFACSanctionsTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	lower := strings.ToLower(signals.RawQuery)
	if !strings.Contains(lower, "sanction") && !containsAny(lower, sanctionedJurisdictionTerms) {
		return router.TriggerResult{Fired: false}
	}
	var matched []string
	for _, t := range sanctionedJurisdictionTerms {
		if strings.Contains(lower, t) {
			matched = append(matched, t)
		}
	}
	if strings.Contains(lower, "sanction") {
		matched = append(matched, "sanction")
	}
	return router.TriggerResult{Fired: true, MatchedTerms: matched}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func (h OFACSanctionsHandler) Apply(_ context.Context, _ model.QuerySignals, _ []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	// OFAC sanctions compliance is a case-by-case legal determination the
	// institution's compliance office must make; this handler never
	// synthesizes an eligibility answer, only a pointer.
	return model.HandlerResult{}, &model.Abstention{
		Reason:        model.ReasonOutOfScope,
		Message:       "questions involving OFAC-sanctioned jurisdictions require a case-by-case compliance review that this system cannot perform",
		RetrievalPlan: "consult the institution's Office of Foreign Assets Control (OFAC) compliance office or general counsel",
	}
}
