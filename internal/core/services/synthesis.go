package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Synthesizer composes answers strictly from retrieved context.
type Synthesizer struct {
	llm         driven.LLMService
	executor    *ModelExecutor
	prompts     promptSet
	maxTokens   int
	temperature float64
}

// NewSynthesizer creates a synthesizer. prompts may be nil.
func NewSynthesizer(llm driven.LLMService, executor *ModelExecutor, prompts driven.PromptStore) *Synthesizer {
	return &Synthesizer{
		llm:      llm,
		executor: executor,
		prompts:  promptSet{store: prompts},
	}
}

// SetGenerationOptions sets answer length and randomness.
func (s *Synthesizer) SetGenerationOptions(maxTokens int, temperature float64) {
	s.maxTokens = maxTokens
	s.temperature = temperature
}

// Synthesize answers the question in the given language using only the
// context. It must not be called with empty context.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextBlocks string, lang domain.Language) (string, error) {
	logger.Section("Answer Synthesis")
	if strings.TrimSpace(contextBlocks) == "" {
		return "", fmt.Errorf("%w: synthesis requires context", domain.ErrInvalidInput)
	}

	req := driven.CompletionRequest{
		System:      s.prompts.render(driven.PromptAnswerSystem, lang.ResponseInstruction()),
		Prompt:      s.prompts.render(driven.PromptAnswerUser, question, contextBlocks),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	answer, err := Execute(ctx, s.executor, "synthesis", func(ctx context.Context, model string) (string, error) {
		r := req
		r.Model = model
		return s.llm.Complete(ctx, r)
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	logger.Debug("Answer length: %d characters", len(answer))
	return answer, nil
}
