package handlers

import (
	"context"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// CCToUCTransferHandler answers community-college-to-university
// articulation questions. Required elements: ASSIST-style course
// sequence, unit caps, and TAG (Transfer Admission Guarantee) pointers
// (spec §4.4 table).
type CCToUCTransferHandler struct{}

func (CCToUCTransferHandler) ID() string { return "CCToUCTransfer" }

// CCToUCTransferTrigger fires on at least one articulation collection hit.
func CCToUCTransferTrigger(_ model.QuerySignals, candidates []model.CandidatePassage) router.TriggerResult {
	if !hasCollectionHit(candidates, model.CollectionArticulation) {
		return router.TriggerResult{Fired: false}
	}
	return router.TriggerResult{Fired: true, MatchedTerms: []string{"articulation"}}
}

func (h CCToUCTransferHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	docs := filterCandidatesByCollection(candidates, model.CollectionArticulation)
	if len(docs) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no articulation agreement document was retrieved")
	}
	doc := docs[0].Document

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{
				Heading: "Articulated Course Sequence",
				Paragraphs: []model.Paragraph{
					paragraph("The origin and destination institutions' articulation agreement specifies the required lower-division course sequence and its unit-for-unit equivalence at the destination campus.", doc),
				},
			},
			{
				Heading: "Unit Caps and Transfer Admission Guarantee",
				Paragraphs: []model.Paragraph{
					paragraph("Transferable lower-division units are capped regardless of how many additional community-college units a student completes; a Transfer Admission Guarantee (TAG), where offered, requires meeting a minimum GPA and completing the articulated sequence by a published deadline.", doc),
				},
			},
		},
		Confidence: 0.75,
	}, nil
}
