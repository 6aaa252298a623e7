package model

// StatusTerm is a member of the closed status vocabulary the Normalizer
// recognizes (spec GLOSSARY). Handlers trigger on these rather than on raw
// substrings so synonyms ("undocumented", "DACA") route identically.
type StatusTerm string

const (
	StatusFoster                StatusTerm = "foster"
	StatusUnaccompaniedHomeless StatusTerm = "unaccompanied_homeless_youth"
	StatusWardOfCourt           StatusTerm = "ward_of_court"
	StatusDACA                  StatusTerm = "daca"
	StatusTPS                   StatusTerm = "tps"
	StatusUndocumented          StatusTerm = "undocumented"
	StatusF1Visa                StatusTerm = "f1"
	StatusVeteran               StatusTerm = "veteran"
	StatusDependent             StatusTerm = "dependent"
	StatusIncarcerated          StatusTerm = "incarcerated"
	StatusDisabled              StatusTerm = "disabled"
	StatusMissionDeferral       StatusTerm = "mission_deferral"
	StatusTribal                StatusTerm = "tribal"
	StatusLDS                   StatusTerm = "lds"
)

// TemporalMarker classifies when a query is asking about, relative to the
// configured CurrentYear.
type TemporalMarker int

const (
	TemporalUnspecified TemporalMarker = iota
	TemporalPresent
	TemporalHistorical
	TemporalFutureBounded // triggers TEMPORAL_OUT_OF_RANGE
)

// NumericParameters holds the numeric fields the Normalizer can extract from
// free text. A nil pointer means "not present in the query"; zero is a valid
// extracted value and must be distinguished from absence.
type NumericParameters struct {
	Income        *float64
	GPA           *float64
	TestScore     *float64
	HouseholdSize *int
	Year          *int
}

// QuerySignals is the single artifact the Normalizer produces and every
// downstream stage consumes. It is query-scoped: nothing in it survives past
// the response (spec §3 invariants).
type QuerySignals struct {
	RawQuery string
	Tokens   []string // lowercased, whitespace-normalized, for BM25

	// EntityCandidates holds institution/program name candidates extracted
	// from the query, in the order encountered.
	EntityCandidates []string
	// UnknownEntityLiteral is set when a candidate entity looks like a named
	// institution (quoted/capitalized noun phrase) but matches no document's
	// entity tags. Non-empty triggers UNKNOWN_ENTITY (subject to the
	// Retriever/Validator's actual corpus cross-check).
	UnknownEntityLiteral string

	StatusTerms []StatusTerm

	Numeric NumericParameters

	Temporal     TemporalMarker
	TemporalYear *int // the year driving the Temporal classification, if any

	// SubjectiveDecision is set when the query frames a first-person
	// decision ("should I...", "which is better for me...") without
	// accompanying constraints that would make it an objective lookup.
	SubjectiveDecision bool

	// CollectionHint narrows retrieval to one collection when the query
	// signals are unambiguous about which collection answers it (e.g. an
	// articulation query). Empty means "search all collections".
	CollectionHint Collection
}

// HasStatus reports whether the signals carry the given status term.
func (s QuerySignals) HasStatus(term StatusTerm) bool {
	for _, t := range s.StatusTerms {
		if t == term {
			return true
		}
	}
	return false
}

// HasAnyStatus reports whether the signals carry any of the given terms.
func (s QuerySignals) HasAnyStatus(terms ...StatusTerm) bool {
	for _, t := range terms {
		if s.HasStatus(t) {
			return true
		}
	}
	return false
}

// ContainsAnyToken reports whether any token equals (case-sensitive, already
// lowercased at normalization time) one of the given words. RawQuery is not
// consulted, so a multi-word phrase never matches.
func (s QuerySignals) ContainsAnyToken(words ...string) bool {
	tokenSet := make(map[string]struct{}, len(s.Tokens))
	for _, t := range s.Tokens {
		tokenSet[t] = struct{}{}
	}
	for _, w := range words {
		if _, ok := tokenSet[w]; ok {
			return true
		}
	}
	return false
}
