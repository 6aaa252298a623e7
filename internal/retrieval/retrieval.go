// Package retrieval implements the Hybrid Retriever (spec §4.2): parallel
// BM25 + dense retrieval, Reciprocal Rank Fusion, authority boost, and
// threshold/top-N selection with deterministic tie-breaks.
package retrieval

import (
	"context"
	"sort"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Params configures the three retrieval stages; values default to the
// spec's named constants but are wired from internal/config so they can be
// overridden per environment.
type Params struct {
	RetrievalK     int     // per-arm result count before fusion (default 50)
	FusionC        float64 // RRF constant c (default 60)
	AuthorityBoost float64 // multiplier for .edu/.gov sources (default 1.5)
	ScoreFloor     float64 // post-boost minimum to survive (default 0.3)
	TopN           int     // candidates returned after filtering (default 8)

	// MinSurvivingForAnswer is the count below which Retrieve reports
	// INSUFFICIENT_EVIDENCE (default 3); it is the caller's choice whether
	// to abstain immediately or attempt a widened retry.
	MinSurvivingForAnswer int
}

// Embedder produces a query embedding for dense search. It is a narrow
// seam so the Retriever never depends on a specific embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever runs the three-stage hybrid retrieval pipeline against a
// Storage backend.
type Retriever struct {
	store    storage.Storage
	embedder Embedder
	params   Params
}

// New builds a Retriever.
func New(store storage.Storage, embedder Embedder, params Params) *Retriever {
	return &Retriever{store: store, embedder: embedder, params: params}
}

// Result is the Retriever's output: the surviving candidates plus whether
// the survivor count fell below MinSurvivingForAnswer.
type Result struct {
	Candidates            []model.CandidatePassage
	InsufficientEvidence  bool
}

// Retrieve runs Stage A (parallel lexical + dense), Stage B (RRF fusion),
// and Stage C (authority boost, threshold, top-N, tie-break) for the given
// query tokens, optionally scoped to collection.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, tokens []string, collection *model.Collection) (Result, error) {
	var lexical []storage.LexicalResult
	var dense []storage.DenseResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.store.SearchLexical(gctx, tokens, collection, r.params.RetrievalK)
		if err != nil {
			return err
		}
		lexical = res
		return nil
	})
	g.Go(func() error {
		if r.embedder == nil {
			return nil
		}
		emb, err := r.embedder.Embed(gctx, queryText)
		if err != nil {
			return err
		}
		res, err := r.store.SearchDense(gctx, emb, collection, r.params.RetrievalK)
		if err != nil {
			return err
		}
		dense = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	fused := fuse(lexical, dense, r.params.FusionC)

	candidates := make([]model.CandidatePassage, 0, len(fused))
	for docID, fc := range fused {
		doc, err := r.store.GetDocument(ctx, docID)
		if err != nil {
			continue // a doc referenced by the index but missing from the store is dropped, not fatal
		}
		final := fc.score
		if doc.IsAuthoritative() {
			final *= r.params.AuthorityBoost
		}
		if final < r.params.ScoreFloor {
			continue
		}
		candidates = append(candidates, model.CandidatePassage{
			Document:    doc,
			FusedScore:  fc.score,
			FinalScore:  final,
			Source:      fc.source,
			LexicalRank: fc.lexicalRank,
			DenseRank:   fc.denseRank,
		})
	}

	sortCandidates(candidates)
	if r.params.TopN > 0 && len(candidates) > r.params.TopN {
		candidates = candidates[:r.params.TopN]
	}

	return Result{
		Candidates:           candidates,
		InsufficientEvidence: len(candidates) < r.params.MinSurvivingForAnswer,
	}, nil
}

type fusedCandidate struct {
	score       float64
	source      model.ScoreSource
	lexicalRank int
	denseRank   int
}

// fuse computes Reciprocal Rank Fusion scores (spec §4.2 Stage B) over the
// two ranked lists. Rank is 1-based; a document absent from a list
// contributes only the term for the list it appears in.
func fuse(lexical []storage.LexicalResult, dense []storage.DenseResult, c float64) map[string]fusedCandidate {
	out := make(map[string]fusedCandidate)

	for i, r := range lexical {
		rank := i + 1
		fc := out[r.DocID]
		fc.score += 1.0 / (c + float64(rank))
		fc.lexicalRank = rank
		fc.source = combineSource(fc.source, model.ScoreSourceLexical)
		out[r.DocID] = fc
	}
	for i, r := range dense {
		rank := i + 1
		fc := out[r.DocID]
		fc.score += 1.0 / (c + float64(rank))
		fc.denseRank = rank
		fc.source = combineSource(fc.source, model.ScoreSourceDense)
		out[r.DocID] = fc
	}

	return out
}

func combineSource(existing, next model.ScoreSource) model.ScoreSource {
	if existing == "" {
		return next
	}
	if existing != next {
		return model.ScoreSourceBoth
	}
	return existing
}

// sortCandidates orders by descending final score, then the deterministic
// tie-breaks from spec §4.2: higher authority, more recent last-verified,
// lexicographic document id.
func sortCandidates(candidates []model.CandidatePassage) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Document.IsAuthoritative() != b.Document.IsAuthoritative() {
			return a.Document.IsAuthoritative()
		}
		if !a.Document.LastVerified.Equal(b.Document.LastVerified) {
			return a.Document.LastVerified.After(b.Document.LastVerified)
		}
		return a.Document.ID < b.Document.ID
	})
}
