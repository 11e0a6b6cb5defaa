package domain

import (
	"fmt"
	"strings"
)

// Role identifies the author of a transcript message.
type Role string

// Transcript roles. Other roles are ignored.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true for roles the pipeline processes.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single transcript turn supplied by the caller.
type Message struct {
	// Role is user or assistant.
	Role Role

	// Content is the message text.
	Content string
}

// clarificationMarker is a phrase that identifies a clarification turn.
type clarificationMarker struct {
	phrase   string
	language Language
}

// clarificationMarkers are matched as lowercase substrings.
var clarificationMarkers = []clarificationMarker{
	{"producto te refieres", LanguageSpanish},
	{"cual de estos productos", LanguageSpanish},
	{"which product", LanguageEnglish},
	{"productos disponibles", LanguageSpanish},
	{"available products", LanguageEnglish},
	{"documento te refieres", LanguageSpanish},
	{"cual de estos documentos", LanguageSpanish},
	{"which document", LanguageEnglish},
	{"documentos disponibles", LanguageSpanish},
	{"available documents", LanguageEnglish},
}

// ClarificationMarkers returns the marker phrases.
func ClarificationMarkers() []string {
	out := make([]string, len(clarificationMarkers))
	for i, m := range clarificationMarkers {
		out[i] = m.phrase
	}
	return out
}

// IsClarification reports whether an assistant message asked the user to pick a document.
func IsClarification(text string) bool {
	_, ok := ClarificationLanguage(text)
	return ok
}

// ClarificationLanguage returns the language of the first marker found in text.
func ClarificationLanguage(text string) (Language, bool) {
	lower := strings.ToLower(text)
	for _, m := range clarificationMarkers {
		if strings.Contains(lower, m.phrase) {
			return m.language, true
		}
	}
	return "", false
}

// ConversationContext is the implicit state reconstructed from a transcript.
// It is derived per request and never persisted.
type ConversationContext struct {
	// PreviousDocument is the catalog key discussed in the last answer, if any.
	PreviousDocument string
}

// IsEmpty returns true when no prior document was found.
func (c ConversationContext) IsEmpty() bool {
	return c.PreviousDocument == ""
}

// Hint returns the one-line hint appended to the disambiguation prompt.
func (c ConversationContext) Hint() string {
	if c.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("\nPreviously discussed document: %s", c.PreviousDocument)
}

// PendingClarification is an unanswered clarification request.
type PendingClarification struct {
	// OriginalQuery is the user question that triggered the clarification.
	OriginalQuery string

	// Question is the assistant's clarification text.
	Question string
}

// Language returns the language the clarification was asked in.
func (p PendingClarification) Language() Language {
	if l, ok := ClarificationLanguage(p.Question); ok {
		return l
	}
	return LanguageEnglish
}

// Merge combines the original question with the user's reply.
func (p PendingClarification) Merge(reply string) string {
	return fmt.Sprintf("%s. %s %s", p.OriginalQuery, p.Language().MergeToken(), reply)
}
