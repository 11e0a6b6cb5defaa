package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("system").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestIsClarification(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
		language Language
	}{
		{"english document", "Which document do you mean?", true, LanguageEnglish},
		{"english listing", "Here are the Available Documents:", true, LanguageEnglish},
		{"english product", "Which product are you asking about?", true, LanguageEnglish},
		{"spanish document", "¿A cual de estos documentos te refieres?", true, LanguageSpanish},
		{"spanish header", "Documentos disponibles:\n- PCGH", true, LanguageSpanish},
		{"spanish product", "¿A qué producto te refieres?", true, LanguageSpanish},
		{"plain answer", "## PCGH\nThe maximum pressure is 10 bar.", false, ""},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsClarification(tt.text))
			lang, ok := ClarificationLanguage(tt.text)
			assert.Equal(t, tt.expected, ok)
			assert.Equal(t, tt.language, lang)
		})
	}
}

func TestClarificationMarkers(t *testing.T) {
	markers := ClarificationMarkers()
	assert.Len(t, markers, 10)
	assert.Contains(t, markers, "which document")
	assert.Contains(t, markers, "cual de estos documentos")
}

func TestConversationContext_Hint(t *testing.T) {
	assert.Equal(t, "", ConversationContext{}.Hint())
	assert.True(t, ConversationContext{}.IsEmpty())
	assert.Equal(t, "\nPreviously discussed document: PCGH_2025_Eurovent",
		ConversationContext{PreviousDocument: "PCGH_2025_Eurovent"}.Hint())
}

func TestPendingClarification_Merge(t *testing.T) {
	t.Run("english", func(t *testing.T) {
		p := PendingClarification{
			OriginalQuery: "What are the requirements?",
			Question:      "Which document are you asking about?\n\nAvailable documents:\n- **PCGH_2025_Eurovent**: PCGH (2025 - Eurovent)",
		}
		assert.Equal(t, LanguageEnglish, p.Language())
		assert.Equal(t, "What are the requirements?. The document is: PCGH", p.Merge("PCGH"))
	})

	t.Run("spanish", func(t *testing.T) {
		p := PendingClarification{
			OriginalQuery: "¿Cuáles son los requisitos?",
			Question:      "¿A qué documento te refieres?\n\nDocumentos disponibles:",
		}
		assert.Equal(t, LanguageSpanish, p.Language())
		assert.Equal(t, "¿Cuáles son los requisitos?. El documento es: PCGH", p.Merge("PCGH"))
	})

	t.Run("unmarked question defaults to english", func(t *testing.T) {
		p := PendingClarification{OriginalQuery: "q", Question: "hmm?"}
		assert.Equal(t, LanguageEnglish, p.Language())
	})
}
