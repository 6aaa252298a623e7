// Package router implements the Router (spec §4.3): it evaluates every
// registered handler's trigger predicate against Query Signals and the
// retrieved candidates, selects the highest-priority match (with the
// spec's tie-break rules), falls back to a generic handler, or composes
// two close-priority handlers with disjoint triggers.
package router

import (
	"sort"

	"github.com/admitly/admitly/internal/model"
)

// TriggerResult reports whether a handler's predicate fired and which
// trigger terms matched, for the Router's tie-break-by-match-count rule.
type TriggerResult struct {
	Fired        bool
	MatchedTerms []string
}

// Predicate evaluates a handler's trigger condition over the normalized
// signals and the retrieved candidates.
type Predicate func(signals model.QuerySignals, candidates []model.CandidatePassage) TriggerResult

// Registration is one handler's entry in the registry: its id, priority,
// and trigger predicate. The apply function itself lives in
// internal/handlers; the Router only needs enough to select, not to run.
type Registration struct {
	ID       string
	Priority int
	Trigger  Predicate
}

// FallbackID is the generic cite-and-summarize handler's id (spec §4.3:
// "lowest priority, 50"), used when no registered handler fires but
// retrieval returned at least 3 candidates.
const FallbackID = "GenericCiteSummarize"

// FallbackPriority is FallbackID's priority.
const FallbackPriority = 50

// composeWindow is the maximum priority difference within which two fired,
// disjoint-trigger handlers may be composed (spec §4.3).
const composeWindow = 5

// minCandidatesForFallback is the minimum candidate count required before
// the Router will fall back to the generic handler rather than abstaining.
const minCandidatesForFallback = 3

// Decision is the Router's output: either one or more handler ids to run
// (composed results are concatenated by the caller), or an abstention.
type Decision struct {
	HandlerIDs []string
	Abstention *model.Abstention
}

// Router holds the read-only handler registry (spec §5: "the handler
// registry is read-only after startup").
type Router struct {
	registrations []Registration
}

// New builds a Router from registrations. Order is insignificant; Route
// always evaluates every registration.
func New(registrations []Registration) *Router {
	sorted := make([]Registration, len(registrations))
	copy(sorted, registrations)
	return &Router{registrations: sorted}
}

type firedHandler struct {
	reg          Registration
	matchedTerms []string
}

// Route selects the handler(s) for a request.
func (r *Router) Route(signals model.QuerySignals, candidates []model.CandidatePassage) Decision {
	var fired []firedHandler
	for _, reg := range r.registrations {
		result := reg.Trigger(signals, candidates)
		if result.Fired {
			fired = append(fired, firedHandler{reg: reg, matchedTerms: result.MatchedTerms})
		}
	}

	if len(fired) == 0 {
		if len(candidates) >= minCandidatesForFallback {
			return Decision{HandlerIDs: []string{FallbackID}}
		}
		return Decision{Abstention: &model.Abstention{
			Reason:  model.ReasonInsufficientEvidence,
			Message: "no handler matched this query and too few candidates were retrieved to attempt a generic summary",
		}}
	}

	sortFired(fired)

	primary := fired[0]
	if len(fired) > 1 {
		second := fired[1]
		if primary.reg.Priority-second.reg.Priority <= composeWindow && disjointTriggers(primary.matchedTerms, second.matchedTerms) {
			return Decision{HandlerIDs: []string{primary.reg.ID, second.reg.ID}}
		}
	}

	return Decision{HandlerIDs: []string{primary.reg.ID}}
}

// sortFired orders by descending priority, then by descending matched-term
// count, then by ascending handler id (spec §4.3's stable tie-break chain).
func sortFired(fired []firedHandler) {
	sort.SliceStable(fired, func(i, j int) bool {
		a, b := fired[i], fired[j]
		if a.reg.Priority != b.reg.Priority {
			return a.reg.Priority > b.reg.Priority
		}
		if len(a.matchedTerms) != len(b.matchedTerms) {
			return len(a.matchedTerms) > len(b.matchedTerms)
		}
		return a.reg.ID < b.reg.ID
	})
}

// disjointTriggers reports whether two matched-term sets share no term,
// the condition spec §4.3 requires before composing two handlers.
func disjointTriggers(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t]; ok {
			return false
		}
	}
	return true
}
