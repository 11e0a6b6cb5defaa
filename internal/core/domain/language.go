package domain

import "strings"

// Language is a supported answer language.
type Language string

// Supported languages.
const (
	// LanguageEnglish is the default language.
	LanguageEnglish Language = "en"

	// LanguageSpanish is Spanish.
	LanguageSpanish Language = "es"
)

// languageTable holds the fixed localised strings for one language.
// Adding a language means adding a table entry, not changing logic.
type languageTable struct {
	noResults     string
	instruction   string
	mergeToken    string
	catalogHeader string
	clarification string
	name          string
}

var languageTables = map[Language]languageTable{
	LanguageEnglish: {
		noResults:     "I couldn't find relevant information in the available documentation for your query.",
		instruction:   "Always respond in ENGLISH.",
		mergeToken:    "The document is:",
		catalogHeader: "Available documents:",
		clarification: "Which document are you asking about?",
		name:          "English",
	},
	LanguageSpanish: {
		noResults:     "No encontré información relevante en la documentación disponible para tu consulta.",
		instruction:   "Responde siempre en ESPANOL.",
		mergeToken:    "El documento es:",
		catalogHeader: "Documentos disponibles:",
		clarification: "¿A qué documento te refieres?",
		name:          "Spanish",
	},
}

// ParseLanguage maps a language code to a supported language.
// Unknown or empty codes resolve to English.
func ParseLanguage(code string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := languageTables[l]; ok {
		return l
	}
	return LanguageEnglish
}

// IsValid returns true if the language has a localisation table.
func (l Language) IsValid() bool {
	_, ok := languageTables[l]
	return ok
}

// String returns the language code.
func (l Language) String() string {
	return string(l)
}

// table returns the localisation table, falling back to English.
func (l Language) table() languageTable {
	if t, ok := languageTables[l]; ok {
		return t
	}
	return languageTables[LanguageEnglish]
}

// Name returns the English name of the language.
func (l Language) Name() string {
	return l.table().name
}

// NoResultsMessage is the canned reply used when retrieval finds nothing.
func (l Language) NoResultsMessage() string {
	return l.table().noResults
}

// ResponseInstruction tells the answering model which language to use.
func (l Language) ResponseInstruction() string {
	return l.table().instruction
}

// MergeToken joins an original question with a clarification reply.
func (l Language) MergeToken() string {
	return l.table().mergeToken
}

// CatalogHeader introduces the document listing in a clarification reply.
func (l Language) CatalogHeader() string {
	return l.table().catalogHeader
}

// DefaultClarification is used when the classifier marks a question
// ambiguous without supplying its own clarification question.
func (l Language) DefaultClarification() string {
	return l.table().clarification
}

// AllLanguages returns the supported languages.
func AllLanguages() []Language {
	return []Language{LanguageEnglish, LanguageSpanish}
}
