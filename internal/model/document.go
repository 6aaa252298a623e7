// Package model defines the core data types shared by every stage of the
// query-answering pipeline: documents and collections (the corpus),
// query signals (the normalized request), candidate passages (retrieval
// output), and handler results / abstentions (the final answer shape).
package model

import "time"

// Collection names the homogeneous-schema groupings the core recognizes.
// Storage implementations are free to hold other collections, but the
// Retriever and handlers only reason about these five.
type Collection string

const (
	CollectionAidPolicies  Collection = "aid_policies"
	CollectionMajorGates   Collection = "major_gates"
	CollectionCDSData      Collection = "cds_data"
	CollectionArticulation Collection = "articulation"
	CollectionCitedAnswers Collection = "cited_answers"
)

// AllCollections lists every collection the core searches by default when
// no explicit filter is given.
var AllCollections = []Collection{
	CollectionAidPolicies,
	CollectionMajorGates,
	CollectionCDSData,
	CollectionArticulation,
	CollectionCitedAnswers,
}

// RequiredTags returns the tag keys a document must carry to belong to c.
// Storage implementations validate against this at ingestion time (outside
// the core); the core itself only consults tags it is given.
func RequiredTags(c Collection) []string {
	switch c {
	case CollectionAidPolicies:
		return []string{"institution", "policy_topic"}
	case CollectionMajorGates:
		return []string{"institution", "major", "gpa_threshold", "capacity_flag"}
	case CollectionCDSData:
		return []string{"institution", "academic_year", "metric_kind"}
	case CollectionArticulation:
		return []string{"origin_institution", "destination_institution", "course_equivalence"}
	case CollectionCitedAnswers:
		return nil
	default:
		return nil
	}
}

// EffectiveRange is a document's nullable period of applicability (e.g. a
// policy that only held for a given academic year).
type EffectiveRange struct {
	From *time.Time
	To   *time.Time
}

// Covers reports whether t falls within the range. A nil bound is open.
func (r EffectiveRange) Covers(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Document is a single unit of the curated corpus. Documents are immutable
// once ingested: an upstream change produces a new ID, never a mutation of
// an existing one.
type Document struct {
	ID               string
	Collection       Collection
	SourceURL        string
	Body             string
	LastVerified     time.Time
	EntityTags       map[string]string // e.g. institution, program, policy_topic
	EffectiveRange   EffectiveRange
	ContentHash      string
	SubURL           string // smallest citing sub-URL, e.g. a section anchor; falls back to SourceURL
}

// CitingURL returns the most specific URL a citation to this document
// should use: the sub-URL when present, otherwise the source URL.
func (d Document) CitingURL() string {
	if d.SubURL != "" {
		return d.SubURL
	}
	return d.SourceURL
}

// IsAuthoritative reports whether the document's source host is a trusted
// .edu or .gov domain, per the Retriever's Stage C authority boost.
func (d Document) IsAuthoritative() bool {
	return hostHasAuthoritativeSuffix(d.SourceURL)
}
