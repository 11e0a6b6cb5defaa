package services

import (
	"strings"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

// ResolveConversation reconstructs which document the last answer discussed.
//
// Only the most recent assistant message is inspected. A clarification
// request yields an empty context; otherwise the first catalog key whose
// short code occurs literally in that message is returned.
func ResolveConversation(history []domain.Message, catalogKeys []string) domain.ConversationContext {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role != domain.RoleAssistant {
			continue
		}
		if domain.IsClarification(msg.Content) {
			return domain.ConversationContext{}
		}
		for _, key := range catalogKeys {
			code := domain.ShortCode(key)
			if code != "" && strings.Contains(msg.Content, code) {
				return domain.ConversationContext{PreviousDocument: key}
			}
		}
		return domain.ConversationContext{}
	}
	return domain.ConversationContext{}
}

// DetectPendingClarification returns the unanswered clarification, if the
// most recent assistant message asked the user to pick a document.
func DetectPendingClarification(history []domain.Message) (domain.PendingClarification, bool) {
	if len(history) < 2 {
		return domain.PendingClarification{}, false
	}

	last := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleAssistant {
			last = i
			break
		}
	}
	if last < 0 || !domain.IsClarification(history[last].Content) {
		return domain.PendingClarification{}, false
	}

	for j := last - 1; j >= 0; j-- {
		if history[j].Role == domain.RoleUser {
			return domain.PendingClarification{
				OriginalQuery: history[j].Content,
				Question:      history[last].Content,
			}, true
		}
	}
	return domain.PendingClarification{}, false
}

// EffectiveQuestion merges a clarification reply with the question that
// prompted it. The second return reports whether a merge happened.
func EffectiveQuestion(message string, history []domain.Message) (string, bool) {
	pending, ok := DetectPendingClarification(history)
	if !ok {
		return message, false
	}
	return pending.Merge(message), true
}
