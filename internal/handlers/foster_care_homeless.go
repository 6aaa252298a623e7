package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// FosterCareHomelessHandler answers independence-determination questions
// for foster-care, unaccompanied-homeless-youth, and ward-of-court
// students, plus their SAP-appeal implications. Required elements: a
// federal independence rule citation and, when SAP is raised, an
// institution-level SAP policy citation (spec §4.4 table).
type FosterCareHomelessHandler struct{}

func (FosterCareHomelessHandler) ID() string { return "FosterCareHomeless" }

var fosterCareStatuses = []model.StatusTerm{
	model.StatusFoster, model.StatusUnaccompaniedHomeless, model.StatusWardOfCourt,
}

// FosterCareHomelessTrigger fires on status ∈ {foster, unaccompanied
// homeless youth, ward of court}.
func FosterCareHomelessTrigger(signals model.QuerySignals, _ []model.CandidatePassage) router.TriggerResult {
	return matchTermsOrStatus(signals, nil, fosterCareStatuses)
}

func (h FosterCareHomelessHandler) Apply(_ context.Context, signals model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	federalDocs := filterByTerms(candidates, func(body string) bool {
		lower := strings.ToLower(body)
		return strings.Contains(lower, "independen") || strings.Contains(lower, "chafee") || strings.Contains(lower, "mckinney-vento") || strings.Contains(lower, "mckinney vento")
	})
	if len(federalDocs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no federal independence-determination document (Chafee/McKinney-Vento) was retrieved")
	}
	federalDoc := federalDocs[0].Document

	sections := []model.Section{
		{
			Heading: "Independence Determination",
			Paragraphs: []model.Paragraph{
				paragraph("A student who was in foster care, was an unaccompanied homeless youth, or was a ward of the court at or after age 13 is determined an independent student for federal aid purposes, without needing parental information on the FAFSA.", federalDoc),
				paragraph("This dependency-override pathway draws on Chafee Education and Training Voucher eligibility and McKinney-Vento homeless-youth determinations made by a school, shelter, or liaison.", federalDoc),
			},
		},
	}

	mentionsSAP := signals.ContainsAnyToken("sap", "probation", "suspension", "appeal")
	if mentionsSAP {
		sapDocs := filterByTerms(candidates, func(body string) bool {
			return strings.Contains(strings.ToLower(body), "satisfactory academic progress") || strings.Contains(strings.ToLower(body), "sap")
		})
		if len(sapDocs) == 0 {
			return model.HandlerResult{}, insufficientEvidence("an institution-specific SAP policy document was not retrieved to support the SAP appeal question")
		}
		sapDoc := sapDocs[0].Document
		sections = append(sections, model.Section{
			Heading: "SAP Appeal",
			Paragraphs: []model.Paragraph{
				paragraph("Students on Satisfactory Academic Progress suspension may submit an appeal documenting the circumstances (including foster-care-related disruption) and an academic plan; the institution's financial aid office evaluates the appeal under its published SAP policy.", sapDoc),
			},
		})
	}

	return model.HandlerResult{
		HandlerID:  h.ID(),
		Sections:   sections,
		Confidence: 0.75,
	}, nil
}
