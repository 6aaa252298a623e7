// Package handlers implements the ~20 domain-specific synthesizers of
// spec §4.4: each handler declares a trigger predicate (consumed by
// internal/router) and an Apply function that weaves retrieved passages
// and calculator output into a cited, sectioned HandlerResult.
package handlers

import (
	"context"
	"strings"

	"github.com/admitly/admitly/internal/calculators"
	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/router"
)

// Handler is the polymorphic unit spec §4.4 and §9 describe ("a variant/
// interface per handler is preferred over open recursion"): every domain
// handler implements Apply; trigger predicate and priority are registered
// separately with the Router so that package stays free of domain logic.
type Handler interface {
	ID() string
	Apply(ctx context.Context, signals model.QuerySignals, candidates []model.CandidatePassage, calc Calculators) (model.HandlerResult, *model.Abstention)
}

// Calculators is the narrow seam handlers use to reach the deterministic
// calculators (spec §4.4: "may consult one or more calculators"). It lets
// handler tests substitute a fake, and keeps internal/handlers from
// depending on calculators' concrete input/output shapes at the interface
// level.
type Calculators interface {
	SAI(in calculators.SAIInput) (calculators.SAIResult, error)
	COA(schedule calculators.COASchedule) (calculators.COAResult, error)
}

// calculatorSet is the production Calculators implementation: direct calls
// into internal/calculators' pure functions.
type calculatorSet struct{}

// DefaultCalculators is the Calculators implementation wired in production.
var DefaultCalculators Calculators = calculatorSet{}

func (calculatorSet) SAI(in calculators.SAIInput) (calculators.SAIResult, error) {
	return calculators.ComputeSAI(in)
}

func (calculatorSet) COA(schedule calculators.COASchedule) (calculators.COAResult, error) {
	return calculators.ComputeCOA(schedule)
}

// insufficientEvidence builds the standard abstention a handler returns
// when it cannot satisfy its required elements (spec §4.4).
func insufficientEvidence(message string) *model.Abstention {
	return &model.Abstention{Reason: model.ReasonInsufficientEvidence, Message: message}
}

// filterByTerms returns the candidates whose document body satisfies
// contains (the body is passed as stored; callers lowercase it), the common
// "filter candidates to those matching its topic" step (spec §4.4b).
func filterByTerms(candidates []model.CandidatePassage, contains func(body string) bool) []model.CandidatePassage {
	var out []model.CandidatePassage
	for _, c := range candidates {
		if contains(c.Document.Body) {
			out = append(out, c)
		}
	}
	return out
}

// citationFor builds a web citation from a document, using its smallest
// citing sub-URL (spec §4.4: "attaches the smallest citing sub-URL
// available").
func citationFor(doc model.Document) model.Citation {
	lastVerified := ""
	if !doc.LastVerified.IsZero() {
		lastVerified = doc.LastVerified.Format("2006-01-02")
	}
	return model.Citation{URL: doc.CitingURL(), Kind: model.CitationWeb, LastVerified: lastVerified}
}

// paragraph builds a single-citation paragraph, the common case for a
// claim drawn from one retrieved document.
func paragraph(text string, doc model.Document) model.Paragraph {
	return model.Paragraph{Text: text, Citations: []model.Citation{citationFor(doc)}}
}

// matchTerms is the common trigger shape: a handler fires when the raw
// query (lowercased) contains any of terms. MatchedTerms carries exactly
// the terms that matched, for the Router's disjoint-trigger composition
// check and its matched-term tie-break.
func matchTerms(signals model.QuerySignals, terms []string) router.TriggerResult {
	lower := strings.ToLower(signals.RawQuery)
	var matched []string
	for _, t := range terms {
		if strings.Contains(lower, t) {
			matched = append(matched, t)
		}
	}
	return router.TriggerResult{Fired: len(matched) > 0, MatchedTerms: matched}
}

// matchTermsOrStatus fires either on a raw-text term match or when signals
// already carries one of the listed closed-vocabulary status terms (some
// handlers trigger on normalized status rather than raw substrings).
func matchTermsOrStatus(signals model.QuerySignals, terms []string, statuses []model.StatusTerm) router.TriggerResult {
	result := matchTerms(signals, terms)
	if signals.HasAnyStatus(statuses...) {
		result.Fired = true
		for _, s := range statuses {
			if signals.HasStatus(s) {
				result.MatchedTerms = append(result.MatchedTerms, string(s))
			}
		}
	}
	return result
}
