package admitly

import "github.com/admitly/admitly/internal/model"

// Public type aliases over internal/model's answer shape. internal/model
// has no dependency back on this package, so aliasing (rather than a
// curated copy) is safe and keeps Ask's return value usable without an
// internal import.
type (
	Answer      = model.Answer
	HandlerResult = model.HandlerResult
	Abstention  = model.Abstention
	ReasonCode  = model.ReasonCode
	Section     = model.Section
	Paragraph   = model.Paragraph
	Citation    = model.Citation
)

const (
	ReasonTemporalOutOfRange  = model.ReasonTemporalOutOfRange
	ReasonUnknownEntity       = model.ReasonUnknownEntity
	ReasonSubjectiveDecision  = model.ReasonSubjectiveDecision
	ReasonInsufficientEvidence = model.ReasonInsufficientEvidence
	ReasonOutOfScope          = model.ReasonOutOfScope
)
