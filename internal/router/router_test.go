package router

import (
	"testing"

	"github.com/admitly/admitly/internal/model"
	"github.com/stretchr/testify/assert"
)

func fires(terms ...string) Predicate {
	return func(model.QuerySignals, []model.CandidatePassage) TriggerResult {
		return TriggerResult{Fired: true, MatchedTerms: terms}
	}
}

func neverFires() Predicate {
	return func(model.QuerySignals, []model.CandidatePassage) TriggerResult {
		return TriggerResult{Fired: false}
	}
}

func TestRouteSelectsHighestPriority(t *testing.T) {
	r := New([]Registration{
		{ID: "Low", Priority: 100, Trigger: fires("a")},
		{ID: "High", Priority: 150, Trigger: fires("b")},
	})
	d := r.Route(model.QuerySignals{}, nil)
	assert.Equal(t, []string{"High"}, d.HandlerIDs)
}

func TestRouteFallsBackWhenNoneFireAndEnoughCandidates(t *testing.T) {
	r := New([]Registration{{ID: "X", Priority: 100, Trigger: neverFires()}})
	candidates := make([]model.CandidatePassage, 3)
	d := r.Route(model.QuerySignals{}, candidates)
	assert.Equal(t, []string{FallbackID}, d.HandlerIDs)
}

func TestRouteAbstainsWhenNoneFireAndTooFewCandidates(t *testing.T) {
	r := New([]Registration{{ID: "X", Priority: 100, Trigger: neverFires()}})
	d := r.Route(model.QuerySignals{}, nil)
	assert.Nil(t, d.HandlerIDs)
	assert.NotNil(t, d.Abstention)
	assert.Equal(t, model.ReasonInsufficientEvidence, d.Abstention.Reason)
}

func TestRouteComposesCloseDisjointHandlers(t *testing.T) {
	r := New([]Registration{
		{ID: "InternationalTransfer", Priority: 130, Trigger: fires("ects", "a-level", "international")},
		{ID: "NCAAandNIL", Priority: 126, Trigger: fires("ncaa", "nil", "eligibility")},
	})
	d := r.Route(model.QuerySignals{}, nil)
	assert.ElementsMatch(t, []string{"InternationalTransfer", "NCAAandNIL"}, d.HandlerIDs)
}

func TestRouteDoesNotComposeOverlappingTriggers(t *testing.T) {
	r := New([]Registration{
		{ID: "A", Priority: 130, Trigger: fires("shared", "a-term")},
		{ID: "B", Priority: 128, Trigger: fires("shared", "b-term")},
	})
	d := r.Route(model.QuerySignals{}, nil)
	assert.Equal(t, []string{"A"}, d.HandlerIDs)
}

func TestRouteDoesNotComposeFarPriorities(t *testing.T) {
	r := New([]Registration{
		{ID: "A", Priority: 150, Trigger: fires("a")},
		{ID: "B", Priority: 100, Trigger: fires("b")},
	})
	d := r.Route(model.QuerySignals{}, nil)
	assert.Equal(t, []string{"A"}, d.HandlerIDs)
}

func TestRouteTieBreaksByMatchCountThenID(t *testing.T) {
	r := New([]Registration{
		{ID: "Zeta", Priority: 100, Trigger: fires("a", "b")},
		{ID: "Alpha", Priority: 100, Trigger: fires("a", "b")},
	})
	d := r.Route(model.QuerySignals{}, nil)
	assert.Equal(t, []string{"Alpha"}, d.HandlerIDs)
}
