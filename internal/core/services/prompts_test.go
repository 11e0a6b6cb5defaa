package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

func TestDefaultPrompts_AllNamesPresent(t *testing.T) {
	defaults := DefaultPrompts()
	for _, name := range driven.AllPromptNames() {
		assert.NotEmpty(t, defaults[name], name)
	}
}

func TestPromptSet_NilStoreUsesDefaults(t *testing.T) {
	p := promptSet{}
	assert.Equal(t, DefaultPrompts()[driven.PromptAnswerUser], p.load(driven.PromptAnswerUser))
}

func TestPromptSet_OverrideIsUsed(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerUser: "Q=%s C=%s",
	}}

	got := promptSet{store: store}.render(driven.PromptAnswerUser, "why", "because")

	assert.Equal(t, "Q=why C=because", got)
}

func TestPromptSet_OverrideWithWrongPlaceholdersIgnored(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerUser:   "only one %s",
		driven.PromptTriageSystem: "   ",
	}}
	p := promptSet{store: store}

	assert.Equal(t, DefaultPrompts()[driven.PromptAnswerUser], p.load(driven.PromptAnswerUser))
	assert.Equal(t, DefaultPrompts()[driven.PromptTriageSystem], p.load(driven.PromptTriageSystem))
}

func TestCountVerbs(t *testing.T) {
	assert.Equal(t, 0, countVerbs("100%% sure"))
	assert.Equal(t, 2, countVerbs("%s and %s"))
	assert.Equal(t, 3, countVerbs(DefaultPrompts()[driven.PromptTriageUser]))
}
