package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

var testKeys = []string{"CNP_2026_Oposiciones", "GC_2026_Oposiciones", "PCGH_2025_Eurovent"}

func user(content string) domain.Message {
	return domain.Message{Role: domain.RoleUser, Content: content}
}

func assistant(content string) domain.Message {
	return domain.Message{Role: domain.RoleAssistant, Content: content}
}

func TestResolveConversation_EmptyHistory(t *testing.T) {
	assert.True(t, ResolveConversation(nil, testKeys).IsEmpty())
}

func TestResolveConversation_FindsShortCode(t *testing.T) {
	history := []domain.Message{
		user("What is the PCGH heating capacity?"),
		assistant("The PCGH unit delivers 12 kW."),
	}

	convo := ResolveConversation(history, testKeys)

	assert.Equal(t, "PCGH_2025_Eurovent", convo.PreviousDocument)
}

func TestResolveConversation_OnlyLatestAssistantMessage(t *testing.T) {
	history := []domain.Message{
		user("q1"),
		assistant("About PCGH: 12 kW."),
		user("q2"),
		assistant("Nothing specific here."),
	}

	assert.True(t, ResolveConversation(history, testKeys).IsEmpty())
}

func TestResolveConversation_ClarificationHasNoDocument(t *testing.T) {
	history := []domain.Message{
		user("What are the tests?"),
		assistant("Which document are you asking about?\n\nAvailable documents:\n- **GC_2026_Oposiciones**: GC"),
	}

	assert.True(t, ResolveConversation(history, testKeys).IsEmpty())
}

func TestResolveConversation_IgnoresTrailingUserMessages(t *testing.T) {
	history := []domain.Message{
		assistant("GC requires a physical test."),
		user("thanks"),
	}

	assert.Equal(t, "GC_2026_Oposiciones", ResolveConversation(history, testKeys).PreviousDocument)
}

func TestDetectPendingClarification(t *testing.T) {
	history := []domain.Message{
		user("What is the max temperature?"),
		assistant("Which document are you asking about?"),
	}

	pending, ok := DetectPendingClarification(history)

	assert.True(t, ok)
	assert.Equal(t, "What is the max temperature?", pending.OriginalQuery)
	assert.Equal(t, domain.LanguageEnglish, pending.Language())
}

func TestDetectPendingClarification_NeedsTwoMessages(t *testing.T) {
	_, ok := DetectPendingClarification([]domain.Message{assistant("Which document are you asking about?")})
	assert.False(t, ok)
}

func TestDetectPendingClarification_AnsweredClarification(t *testing.T) {
	history := []domain.Message{
		user("What is the max temperature?"),
		assistant("Which document are you asking about?"),
		user("PCGH"),
		assistant("The PCGH maximum is 60 C."),
	}

	_, ok := DetectPendingClarification(history)
	assert.False(t, ok)
}

func TestEffectiveQuestion_MergesClarificationReply(t *testing.T) {
	history := []domain.Message{
		user("What is the max temperature?"),
		assistant("Which document are you asking about?"),
	}

	q, merged := EffectiveQuestion("PCGH", history)

	assert.True(t, merged)
	assert.Equal(t, "What is the max temperature?. The document is: PCGH", q)
}

func TestEffectiveQuestion_SpanishMergeToken(t *testing.T) {
	history := []domain.Message{
		user("¿Cuál es la temperatura máxima?"),
		assistant("¿A qué documento te refieres?\n\nDocumentos disponibles:\n- **PCGH_2025_Eurovent**: PCGH"),
	}

	q, merged := EffectiveQuestion("PCGH", history)

	assert.True(t, merged)
	assert.Equal(t, "¿Cuál es la temperatura máxima?. El documento es: PCGH", q)
}

func TestEffectiveQuestion_NoPendingClarification(t *testing.T) {
	q, merged := EffectiveQuestion("hello", []domain.Message{user("a"), assistant("b")})

	assert.False(t, merged)
	assert.Equal(t, "hello", q)
}
