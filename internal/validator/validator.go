// Package validator implements the Validator & Gate (spec §4.6): six
// ordered checks a HandlerResult must pass before it is sealed and handed
// to the Formatter. Failures are either retryable (the caller re-invokes
// the handler with widened retrieval) or terminal abstentions.
package validator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/admitly/admitly/internal/model"
)

// Params configures the Validator's thresholds (spec §6 environment
// parameters).
type Params struct {
	CitationCoverageFloor   float64 // default 0.90
	MinAuthoritativeSources int     // default 3
}

// Validator runs the six ordered checks of spec §4.6.
type Validator struct {
	params Params
}

// New builds a Validator.
func New(params Params) *Validator {
	return &Validator{params: params}
}

// Outcome is the Validator's verdict: exactly one of Accepted, Abstention,
// or Retry is meaningful, selected by Retryable/Abstention being set.
type Outcome struct {
	// Accepted is the sealed result, set only when Abstention is nil and
	// Retryable is false.
	Accepted model.HandlerResult
	// Abstention is set on a terminal failure.
	Abstention *model.Abstention
	// Retryable reports whether the caller should retry the handler with
	// widened retrieval (spec §4.4 failure semantics) before giving up.
	Retryable bool
	// FailedCheck names the first check that failed, for logging/metrics.
	FailedCheck string
}

// Validate runs the checks in spec §4.6 order against a candidate result.
// candidates is the retrieval set the handler drew from (for the
// fabrication and numeric-traceability checks); declaredOrder is the
// handler's fixed section-heading order (for schema conformance).
func (v *Validator) Validate(result model.HandlerResult, candidates []model.CandidatePassage, declaredOrder []string) Outcome {
	if outcome, ok := v.checkCitationCoverage(result); !ok {
		return outcome
	}
	if outcome, ok := v.checkFabrication(result, candidates); !ok {
		return outcome
	}
	if outcome, ok := v.checkNumericTraceability(result, candidates); !ok {
		return outcome
	}
	if outcome, ok := v.checkAuthorityFloor(result, candidates); !ok {
		return outcome
	}
	if outcome, ok := v.checkSchemaConformance(result, declaredOrder); !ok {
		return outcome
	}
	if outcome, ok := v.checkSubjectiveRecommendation(&result); !ok {
		return outcome
	}

	return Outcome{Accepted: result.Seal()}
}

// isFactualClaim reports whether a paragraph's text is the kind of claim
// spec §4.6 check 1 requires a citation for: it contains a name, number,
// date, proper noun, or policy term. A purely transitional sentence with
// none of these is not required to carry a citation.
var (
	digitRe      = regexp.MustCompile(`\d`)
	properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
)

func isFactualClaim(text string) bool {
	return digitRe.MatchString(text) || properNounRe.MatchString(text)
}

func (v *Validator) checkCitationCoverage(result model.HandlerResult) (Outcome, bool) {
	claims := result.Claims()
	var factual, cited int
	for _, p := range claims {
		if !isFactualClaim(p.Text) {
			continue
		}
		factual++
		if len(p.Citations) > 0 {
			cited++
		}
	}
	if factual == 0 {
		return Outcome{}, true
	}
	coverage := float64(cited) / float64(factual)
	if coverage >= v.params.CitationCoverageFloor {
		return Outcome{}, true
	}
	return Outcome{Retryable: true, FailedCheck: "citation_coverage"}, false
}

func (v *Validator) checkFabrication(result model.HandlerResult, candidates []model.CandidatePassage) (Outcome, bool) {
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.Document.CitingURL()] = struct{}{}
		known[c.Document.SourceURL] = struct{}{}
	}

	for _, url := range result.AllCitationURLs() {
		if strings.HasPrefix(url, "formula:") {
			continue // calculator formula registry citations are always trusted
		}
		if _, ok := known[url]; !ok {
			return Outcome{
				Abstention:  &model.Abstention{Reason: model.ReasonInsufficientEvidence, Message: "a citation referenced a URL outside the retrieval set"},
				FailedCheck: "fabrication",
			}, false
		}
	}
	return Outcome{}, true
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?%?`)

func (v *Validator) checkNumericTraceability(result model.HandlerResult, candidates []model.CandidatePassage) (Outcome, bool) {
	bodies := make([]string, 0, len(candidates))
	for _, c := range candidates {
		bodies = append(bodies, c.Document.Body)
	}

	calculatorNumbers := make(map[string]struct{})
	for _, calc := range result.Calculations {
		for _, out := range calc.Outputs {
			calculatorNumbers[formatNumber(out)] = struct{}{}
		}
	}

	for _, p := range result.Claims() {
		for _, n := range numberRe.FindAllString(p.Text, -1) {
			if _, ok := calculatorNumbers[n]; ok {
				continue
			}
			if appearsInAny(n, bodies) {
				continue
			}
			return Outcome{Retryable: true, FailedCheck: "numeric_traceability"}, false
		}
	}
	return Outcome{}, true
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return ""
	}
}

func appearsInAny(needle string, haystacks []string) bool {
	bare := strings.TrimSuffix(needle, "%")
	for _, h := range haystacks {
		if strings.Contains(h, needle) || strings.Contains(h, bare) {
			return true
		}
	}
	return false
}

func (v *Validator) checkAuthorityFloor(result model.HandlerResult, candidates []model.CandidatePassage) (Outcome, bool) {
	byURL := make(map[string]model.CandidatePassage, len(candidates))
	for _, c := range candidates {
		byURL[c.Document.CitingURL()] = c
		byURL[c.Document.SourceURL] = c
	}

	authoritative := 0
	for _, url := range result.AllCitationURLs() {
		c, ok := byURL[url]
		if !ok {
			continue
		}
		if c.Document.IsAuthoritative() || c.Document.Collection == model.CollectionCitedAnswers {
			authoritative++
		}
	}
	if authoritative >= v.params.MinAuthoritativeSources {
		return Outcome{}, true
	}
	return Outcome{
		Abstention:  &model.Abstention{Reason: model.ReasonInsufficientEvidence, Message: "fewer than the required number of authoritative sources were cited"},
		FailedCheck: "authority_floor",
	}, false
}

func (v *Validator) checkSchemaConformance(result model.HandlerResult, declaredOrder []string) (Outcome, bool) {
	for _, s := range result.Sections {
		if s.Heading == "" || len(s.Paragraphs) == 0 {
			return Outcome{Retryable: true, FailedCheck: "schema_conformance"}, false
		}
	}
	if len(declaredOrder) == 0 {
		return Outcome{}, true
	}

	idx := 0
	for _, heading := range declaredOrder {
		if idx < len(result.Sections) && result.Sections[idx].Heading == heading {
			idx++
		}
	}
	if idx != len(declaredOrder) {
		return Outcome{Retryable: true, FailedCheck: "schema_conformance"}, false
	}
	return Outcome{}, true
}

var subjectiveImperativeRe = regexp.MustCompile(`(?i)\byou should (?:pick|choose|go with|attend|apply to) .+ over\b`)

// checkSubjectiveRecommendation strips any first-person imperative
// advocacy sentence from result's paragraphs in place. If stripping a
// section empties it entirely, the whole result is abstained rather than
// returned with a missing required section (spec §4.6 check 6).
func (v *Validator) checkSubjectiveRecommendation(result *model.HandlerResult) (Outcome, bool) {
	stripped := false
	for si := range result.Sections {
		var kept []model.Paragraph
		for _, p := range result.Sections[si].Paragraphs {
			if subjectiveImperativeRe.MatchString(p.Text) {
				stripped = true
				continue
			}
			kept = append(kept, p)
		}
		result.Sections[si].Paragraphs = kept
	}
	if !stripped {
		return Outcome{}, true
	}
	for _, s := range result.Sections {
		if len(s.Paragraphs) == 0 {
			return Outcome{
				Abstention:  &model.Abstention{Reason: model.ReasonSubjectiveDecision, Message: "the answer relied on unsourced personal-decision advocacy that could not be safely removed"},
				FailedCheck: "subjective_recommendation",
			}, false
		}
	}
	return Outcome{}, true
}
