// Package reqctx holds the per-request state named in spec §5 and §9
// ("scoped acquisition for per-request state"): the candidate passages a
// request is working with and its handler retry counter. The request
// deadline is not held here; it is the deadline of the context.Context
// itself. State is acquired once at request entry and carried through context.Context
// so no pipeline stage needs to thread extra parameters just to read or
// bump the retry count.
package reqctx

import (
	"context"

	"github.com/admitly/admitly/internal/model"
	"github.com/google/uuid"
)

type contextKey string

const stateKey contextKey = "admitly.reqctx.state"

// State is the mutable per-request record. It is never shared across
// requests (spec §3 invariant: "no Candidate Passage crosses request
// boundaries").
type State struct {
	RequestID  string
	RetryCount int
	RetryLimit int
	Candidates []model.CandidatePassage
}

// New acquires a fresh State and returns a context carrying it, per spec
// §9's scoped-acquisition note. Release happens implicitly when the
// request's context is discarded; there is nothing to explicitly free.
func New(ctx context.Context, retryLimit int) (context.Context, *State) {
	state := &State{RequestID: uuid.NewString(), RetryLimit: retryLimit}
	return context.WithValue(ctx, stateKey, state), state
}

// From retrieves the State acquired by New, or nil if none was acquired on
// this context.
func From(ctx context.Context) *State {
	s, _ := ctx.Value(stateKey).(*State)
	return s
}

// CanRetry reports whether another handler retry is permitted (spec §4.4:
// "stateless within a request except for a retry counter... max 1").
func (s *State) CanRetry() bool {
	return s.RetryCount < s.RetryLimit
}

// RecordRetry increments the retry counter. Callers should check CanRetry
// first; RecordRetry does not itself enforce the limit.
func (s *State) RecordRetry() {
	s.RetryCount++
}
