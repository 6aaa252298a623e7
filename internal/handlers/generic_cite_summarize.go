package handlers

import (
	"context"

	"github.com/admitly/admitly/internal/model"
)

// GenericCiteSummarizeHandler is the Router's fallback (spec §4.3:
// "lowest priority, 50"): it neutrally summarizes the top retrieved
// passages with a citation each, attempting no domain-specific synthesis.
type GenericCiteSummarizeHandler struct{}

func (GenericCiteSummarizeHandler) ID() string { return "GenericCiteSummarize" }

// maxGenericParagraphs bounds how many candidate passages the fallback
// summarizes, keeping the answer scoped to what was actually retrieved.
const maxGenericParagraphs = 5

func (h GenericCiteSummarizeHandler) Apply(_ context.Context, _ model.QuerySignals, candidates []model.CandidatePassage, _ Calculators) (model.HandlerResult, *model.Abstention) {
	if len(candidates) == 0 {
		return model.HandlerResult{}, insufficientEvidence("no candidates were retrieved for a generic summary")
	}

	n := len(candidates)
	if n > maxGenericParagraphs {
		n = maxGenericParagraphs
	}

	paragraphs := make([]model.Paragraph, 0, n)
	for _, c := range candidates[:n] {
		paragraphs = append(paragraphs, paragraph(summarize(c.Document.Body), c.Document))
	}

	return model.HandlerResult{
		HandlerID: h.ID(),
		Sections: []model.Section{
			{Heading: "Related Information", Paragraphs: paragraphs},
		},
		Confidence: 0.5,
	}, nil
}

// summarize trims a document body to a single leading excerpt. The
// fallback handler never paraphrases numbers upward; it quotes the
// retrieved text as-is rather than compressing it lossily.
func summarize(body string) string {
	const maxLen = 280
	if len(body) <= maxLen {
		return body
	}
	return body[:maxLen] + "..."
}
