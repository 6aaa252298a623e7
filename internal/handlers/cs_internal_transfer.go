package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// CSInternalTransferHandler answers questions about transferring internally
// into a capacity-constrained CS major. Required elements: the published
// GPA threshold and the capacity-constrained acceptance rate, both cited
// from a major_gates document, plus a risk-mitigation section (spec §4.4
// table).
type CSInternalTransferHandler struct{}

func (CSInternalTransferHandler) ID() string { return "CSInternalTransfer" }

var csInternalTransferTerms = []string{"cs", "internal transfer", "gate", "capacity"}

// CSInternalTransferTrigger fires on {CS, internal transfer, gate,
// capacity} terms plus at least one major_gates candidate.
func CSInternalTransferTrigger(signals model.QuerySignals, candidates []model.CandidatePassage) router.TriggerResult {
	result := matchTerms(signals, csInternalTransferTerms)
	if !hasCollectionHit(candidates, model.CollectionMajorGates) {
		result.Fired = false
	}
	return result
}

func hasCollectionHit(candidates []model.CandidatePassage, collection model.Collection) bool {
	for _, c := range candidates {
		if c.Document.Collection == collection {
			return true
		}
	}
	return false
}

var gpaThresholdRe = regexp.MustCompile(`([0-4]\.\d{1,2})\s*(?:gpa|minimum gpa)`)
var acceptanceRateRe = regexp.MustCompile(`(\d{1,2}(?:\.\d+)?)\s*%`)

func (h CSInternalTransferHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	gateDocs := filterCandidatesByCollection(candidates, model.CollectionMajorGates)
	if len(gateDocs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no major_gates document for this institution's CS transfer policy was retrieved")
	}

	doc := gateDocs[0].Document
	lower := strings.ToLower(doc.Body)

	gpaMatch := gpaThresholdRe.FindStringSubmatch(lower)
	rateMatch := acceptanceRateRe.FindStringSubmatch(lower)
	if gpaMatch == nil || rateMatch == nil {
		return model.HandlerResult{}, insufficientEvidence("the retrieved major_gates document does not state both a GPA threshold and an acceptance rate")
	}

	eligibility := []model.Paragraph{
		paragraph(fmt.Sprintf("The published minimum GPA for internal transfer into Computer Science is %s.", gpaMatch[1]), doc),
		paragraph(fmt.Sprintf("This major is capacity-constrained; the published internal-transfer acceptance rate is approximately %s%%.", rateMatch[1]), doc),
	}

	risk := []model.Paragraph{
		paragraph("Meeting the minimum GPA does not guarantee admission because the program is capacity-constrained; applicants should plan a non-CS backup major and retake or strengthen prerequisite coursework before reapplying.", doc),
	}

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{Heading: "Transfer Requirements", Paragraphs: eligibility},
			{Heading: "Risk Mitigation", Paragraphs: risk},
		},
		Confidence: 0.8,
	}, nil
}

func filterCandidatesByCollection(candidates []model.CandidatePassage, collection model.Collection) []model.CandidatePassage {
	var out []model.CandidatePassage
	for _, c := range candidates {
		if c.Document.Collection == collection {
			out = append(out, c)
		}
	}
	return out
}
