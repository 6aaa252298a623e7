// Package normalizer implements the Query Normalizer (spec §4.1): it turns
// a raw query string into model.QuerySignals, flagging the three
// abstention-relevant conditions (temporal overreach, unknown entities,
// subjective decision framing) the Validator and Router cross-check later.
package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/admitly/admitly/internal/model"
)

// Normalizer extracts Query Signals from raw query text.
type Normalizer struct {
	currentYear int
	knownEntities []string
}

// New returns a Normalizer that treats years after currentYear as future
// dates, and checks entity candidates against knownEntities (institution
// names drawn from the corpus at startup, used only to flag unknown-entity
// queries — the Normalizer never consults Storage directly, per the
// leaves-first dependency order in spec §2).
func New(currentYear int, knownEntities []string) *Normalizer {
	lower := make([]string, len(knownEntities))
	for i, e := range knownEntities {
		lower[i] = strings.ToLower(e)
	}
	return &Normalizer{currentYear: currentYear, knownEntities: lower}
}

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	yearRe           = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	placeholderRe    = regexp.MustCompile(`(?i)university of xyz|college of xyz|\bany school\b|\bsome university\b`)
	subjectiveOpener = regexp.MustCompile(`(?i)^\s*(should i|which is better for me|what should i do|what's best for me)\b`)
	moneyRe          = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)
	gpaRe            = regexp.MustCompile(`(?i)\b([0-4]\.\d{1,2})\s*gpa\b`)
	testScoreRe      = regexp.MustCompile(`\b(1[0-5]\d{2}|[1-3]?\d0)\s*(?:sat|act)\b`)
	householdRe      = regexp.MustCompile(`(?i)household of (\d+)|family of (\d+)|(\d+)\s*in (?:the )?household`)
)

// statusVocabulary is the closed vocabulary the Normalizer recognizes,
// mapped from the surface phrases used in queries to model.StatusTerm.
var statusVocabulary = map[string]model.StatusTerm{
	"foster":                  model.StatusFoster,
	"foster care":             model.StatusFoster,
	"unaccompanied homeless":  model.StatusUnaccompaniedHomeless,
	"homeless youth":          model.StatusUnaccompaniedHomeless,
	"ward of the court":       model.StatusWardOfCourt,
	"ward of court":           model.StatusWardOfCourt,
	"daca":                    model.StatusDACA,
	"tps":                     model.StatusTPS,
	"undocumented":            model.StatusUndocumented,
	"f-1":                     model.StatusF1Visa,
	"f1 visa":                 model.StatusF1Visa,
	"f-1 visa":                model.StatusF1Visa,
	"veteran":                 model.StatusVeteran,
	"post-9/11":               model.StatusVeteran,
	"gi bill":                 model.StatusVeteran,
	"dependent":                model.StatusDependent,
	"active duty":             model.StatusDependent,
	"incarcerated":            model.StatusIncarcerated,
	"disability":              model.StatusDisabled,
	"disabled":                model.StatusDisabled,
	"504":                      model.StatusDisabled,
	"iep":                      model.StatusDisabled,
	"mission":                 model.StatusMissionDeferral,
	"deferral":                model.StatusMissionDeferral,
	"lds":                     model.StatusLDS,
	"tribal":                  model.StatusTribal,
	"bia":                     model.StatusTribal,
	"navajo":                  model.StatusTribal,
}

// Normalize turns raw into Query Signals, or an abstention when the query
// cannot be meaningfully processed.
func (n *Normalizer) Normalize(raw string) (model.QuerySignals, *model.Abstention) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.QuerySignals{}, &model.Abstention{
			Reason:  model.ReasonOutOfScope,
			Message: "the query was empty",
		}
	}

	cleaned := whitespaceRe.ReplaceAllString(trimmed, " ")
	lower := strings.ToLower(cleaned)

	signals := model.QuerySignals{
		RawQuery: cleaned,
		Tokens:   tokenize(lower),
	}

	signals.StatusTerms = detectStatusTerms(lower)
	signals.Numeric = extractNumeric(lower)
	signals.EntityCandidates, signals.UnknownEntityLiteral = n.detectEntities(cleaned)
	signals.Temporal, signals.TemporalYear = n.detectTemporal(lower)
	signals.SubjectiveDecision = detectSubjective(cleaned, signals.Numeric)

	if signals.Temporal == model.TemporalFutureBounded {
		return signals, &model.Abstention{
			Reason:  model.ReasonTemporalOutOfRange,
			Message: "this query asks about a year beyond the system's current reference year",
		}
	}
	if signals.UnknownEntityLiteral != "" {
		return signals, &model.Abstention{
			Reason:  model.ReasonUnknownEntity,
			Message: "the query names an institution that does not match any document in the corpus",
		}
	}

	return signals, nil
}

func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func detectStatusTerms(lower string) []model.StatusTerm {
	seen := make(map[model.StatusTerm]struct{})
	var out []model.StatusTerm
	for phrase, term := range statusVocabulary {
		if strings.Contains(lower, phrase) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

func extractNumeric(lower string) model.NumericParameters {
	var p model.NumericParameters

	if m := moneyRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			p.Income = &v
		}
	}
	if m := gpaRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.GPA = &v
		}
	}
	if m := testScoreRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.TestScore = &v
		}
	}
	if m := householdRe.FindStringSubmatch(lower); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if v, err := strconv.Atoi(g); err == nil {
				p.HouseholdSize = &v
				break
			}
		}
	}
	return p
}

// detectEntities finds capitalized multi-word candidates and checks them
// against the known-entity list. A placeholder-style phrase ("University
// of XYZ", "any school") or an unrecognized named institution produces a
// non-empty UnknownEntityLiteral.
func (n *Normalizer) detectEntities(cleaned string) (candidates []string, unknown string) {
	if loc := placeholderRe.FindString(cleaned); loc != "" {
		return nil, loc
	}

	candidates = extractCapitalizedPhrases(cleaned)
	for _, c := range candidates {
		lc := strings.ToLower(c)
		matched := false
		for _, known := range n.knownEntities {
			if strings.Contains(known, lc) || strings.Contains(lc, known) {
				matched = true
				break
			}
		}
		if !matched && looksLikeInstitutionName(c) {
			return candidates, c
		}
	}
	return candidates, ""
}

var capitalizedPhraseRe = regexp.MustCompile(`\b([A-Z][a-zA-Z]*(?:\s+(?:of|the|at|[A-Z][a-zA-Z]*))*)\b`)

func extractCapitalizedPhrases(s string) []string {
	matches := capitalizedPhraseRe.FindAllString(s, -1)
	var out []string
	for _, m := range matches {
		if len(strings.Fields(m)) >= 2 {
			out = append(out, m)
		}
	}
	return out
}

// looksLikeInstitutionName is a conservative heuristic: only phrases
// containing an institution-shaped keyword are treated as entity claims
// worth cross-checking, so ordinary proper-noun phrases ("Parent PLUS",
// "Pell Grant") never misfire as unknown institutions.
func looksLikeInstitutionName(phrase string) bool {
	lower := strings.ToLower(phrase)
	for _, kw := range []string{"university", "college", "institute"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (n *Normalizer) detectTemporal(lower string) (model.TemporalMarker, *int) {
	match := yearRe.FindString(lower)
	if match == "" {
		return model.TemporalUnspecified, nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return model.TemporalUnspecified, nil
	}
	if year > n.currentYear {
		return model.TemporalFutureBounded, &year
	}
	if year < n.currentYear {
		return model.TemporalHistorical, &year
	}
	return model.TemporalPresent, &year
}

// detectSubjective flags first-person decision framing that lacks
// accompanying constraints (numeric parameters or named alternatives to
// compare), per spec §4.1.
func detectSubjective(cleaned string, numeric model.NumericParameters) bool {
	if !subjectiveOpener.MatchString(cleaned) {
		return false
	}
	hasConstraint := numeric.Income != nil || numeric.GPA != nil ||
		numeric.TestScore != nil || numeric.HouseholdSize != nil
	return !hasConstraint
}
