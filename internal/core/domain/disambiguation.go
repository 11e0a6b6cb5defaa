package domain

import "strings"

// Confidence is how certain the classifier is about the target document.
type Confidence string

// Confidence levels.
const (
	// ConfidenceHigh means the document was resolved.
	ConfidenceHigh Confidence = "high"

	// ConfidenceLow means no scoping: search the whole corpus.
	ConfidenceLow Confidence = "low"

	// ConfidenceAmbiguous means the user must be asked which document they mean.
	ConfidenceAmbiguous Confidence = "ambiguous"
)

// ParseConfidence maps a raw classifier value to a confidence level.
// The second return is false for unrecognised values.
func ParseConfidence(s string) (Confidence, bool) {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ConfidenceHigh, ConfidenceLow, ConfidenceAmbiguous:
		return c, true
	default:
		return "", false
	}
}

// String returns the string representation.
func (c Confidence) String() string {
	return string(c)
}

// DisambiguationResult is the classifier's decision for one question.
type DisambiguationResult struct {
	// Language is the detected language of the question.
	Language Language

	// Document is a catalog key, or empty when no document was resolved.
	Document string

	// Confidence is how certain the document resolution is.
	Confidence Confidence

	// ListingRequest is true when the user asked what documents exist.
	ListingRequest bool

	// ClarificationQuestion is required when Confidence is ambiguous.
	ClarificationQuestion string

	// ReformulatedQuery is a search-optimised rewrite of the question.
	ReformulatedQuery string
}

// Normalize enforces the result contract against the catalog.
//
//   - Language defaults to English.
//   - Document must be a catalog key; loose references are resolved,
//     unknown ones are cleared and a high confidence drops to low.
//   - Unrecognised confidence becomes high with a document, low without.
//   - Ambiguous results always carry a clarification question.
//   - ReformulatedQuery falls back to the question.
func (r *DisambiguationResult) Normalize(question string, catalog *Catalog) {
	r.Language = ParseLanguage(string(r.Language))

	if r.Document != "" {
		key, ok := catalog.Resolve(r.Document)
		if ok {
			r.Document = key
		} else {
			r.Document = ""
			if r.Confidence == ConfidenceHigh {
				r.Confidence = ConfidenceLow
			}
		}
	}

	if _, ok := ParseConfidence(string(r.Confidence)); !ok {
		if r.Document != "" {
			r.Confidence = ConfidenceHigh
		} else {
			r.Confidence = ConfidenceLow
		}
	}

	r.ClarificationQuestion = strings.TrimSpace(r.ClarificationQuestion)
	if r.Confidence == ConfidenceAmbiguous && r.ClarificationQuestion == "" {
		r.ClarificationQuestion = r.Language.DefaultClarification()
	}

	r.ReformulatedQuery = strings.TrimSpace(r.ReformulatedQuery)
	if r.ReformulatedQuery == "" {
		r.ReformulatedQuery = question
	}
}

// DocumentFilter returns the retrieval scope: empty means the whole corpus.
func (r DisambiguationResult) DocumentFilter() string {
	if r.Confidence == ConfidenceLow {
		return ""
	}
	return r.Document
}
