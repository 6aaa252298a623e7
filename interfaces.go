package admitly

import (
	"context"

	"github.com/admitly/admitly/internal/model"
)

// Formatter renders a sealed answer (or an abstention) into whatever
// surface the host application presents to a user. It is an external
// collaborator (spec §6): the core never formats prose beyond the
// Paragraph/Section text a handler already produced, it only decides what
// to show and in what shape (Markdown, JSON, plain text, a chat bubble).
//
// A Formatter must never introduce facts, numbers, or citations that were
// not already present in the Answer it is given — doing so would defeat
// the cite-or-abstain guarantee the Validator enforces upstream.
type Formatter interface {
	Format(ctx context.Context, answer model.Answer) (string, error)
}

// PlainTextFormatter is the reference Formatter: it renders sections and
// paragraphs as plain text with inline bracketed citation markers, and
// abstentions as a one-line refusal plus (if present) a retrieval plan.
// Host applications needing Markdown/HTML/JSON presentation should supply
// their own Formatter.
type PlainTextFormatter struct{}

// Format implements Formatter.
func (PlainTextFormatter) Format(_ context.Context, answer model.Answer) (string, error) {
	if answer.IsAbstention() {
		out := string(answer.Abstention.Reason) + ": " + answer.Abstention.Message
		if answer.Abstention.RetrievalPlan != "" {
			out += "\n" + answer.Abstention.RetrievalPlan
		}
		return out, nil
	}

	var out string
	for _, s := range answer.Result.Sections {
		out += "## " + s.Heading + "\n"
		for _, p := range s.Paragraphs {
			out += p.Text
			for _, c := range p.Citations {
				out += " [" + c.URL + "]"
			}
			out += "\n"
		}
	}
	return out, nil
}
