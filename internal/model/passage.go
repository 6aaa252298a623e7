package model

// ScoreSource identifies which retrieval arm produced a candidate's raw
// score, for debugging and for the Stage B fusion accounting.
type ScoreSource string

const (
	ScoreSourceLexical ScoreSource = "lexical"
	ScoreSourceDense   ScoreSource = "dense"
	ScoreSourceBoth    ScoreSource = "both"
)

// CandidatePassage is the transient, per-request unit the Retriever produces
// and the Router/Handlers consume. It never crosses a request boundary
// (spec §3 invariant): construct a fresh slice per query.
type CandidatePassage struct {
	Document Document

	// FusedScore is the Stage B Reciprocal Rank Fusion score, before the
	// Stage C authority multiplier.
	FusedScore float64
	// FinalScore is FusedScore after the Stage C authority boost; this is
	// what Stage C's threshold filter and the tie-break rules operate on.
	FinalScore float64

	Source ScoreSource

	// LexicalRank and DenseRank are 1-based ranks in their respective
	// method's result list, or 0 if the document did not appear in that
	// list. Used for RRF and for debugging/testing.
	LexicalRank int
	DenseRank   int
}
