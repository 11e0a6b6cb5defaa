package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/logger"
)

// listDocumentsTool exposes the catalog to the classifier.
type listDocumentsTool struct {
	catalog *domain.Catalog
}

var _ driven.Tool = listDocumentsTool{}

func (t listDocumentsTool) Name() string { return listDocumentsToolName }

func (t listDocumentsTool) Description() string {
	return "List all available documents in the knowledge base. Call this when the user asks " +
		"what documents exist, or when the query is ambiguous and you need to show document options."
}

func (t listDocumentsTool) Call(_ context.Context) (string, error) {
	return "Available documents:\n" + t.catalog.Formatted(), nil
}

// triageReply is the JSON object the classifier returns.
type triageReply struct {
	DetectedLanguage      string  `json:"detected_language"`
	IdentifiedDocument    *string `json:"identified_document"`
	IdentifiedProduct     *string `json:"identified_product"`
	Confidence            string  `json:"confidence"`
	IsListingRequest      bool    `json:"is_listing_request"`
	ClarificationQuestion *string `json:"clarification_question"`
	ReformulatedQuery     string  `json:"reformulated_query"`
}

func (r triageReply) result() domain.DisambiguationResult {
	res := domain.DisambiguationResult{
		Language:          domain.Language(r.DetectedLanguage),
		Confidence:        domain.Confidence(strings.ToLower(strings.TrimSpace(r.Confidence))),
		ListingRequest:    r.IsListingRequest,
		ReformulatedQuery: r.ReformulatedQuery,
	}
	switch {
	case r.IdentifiedDocument != nil:
		res.Document = *r.IdentifiedDocument
	case r.IdentifiedProduct != nil:
		res.Document = *r.IdentifiedProduct
	}
	if r.ClarificationQuestion != nil {
		res.ClarificationQuestion = *r.ClarificationQuestion
	}
	return res
}

// Disambiguator decides which document a question targets by asking a
// model classifier, then validates the classifier's answer.
type Disambiguator struct {
	llm      driven.LLMService
	executor *ModelExecutor
	prompts  promptSet
}

// NewDisambiguator creates a disambiguator. prompts may be nil.
func NewDisambiguator(llm driven.LLMService, executor *ModelExecutor, prompts driven.PromptStore) *Disambiguator {
	return &Disambiguator{
		llm:      llm,
		executor: executor,
		prompts:  promptSet{store: prompts},
	}
}

// Disambiguate classifies the question against the catalog. The result
// always satisfies the DisambiguationResult contract.
func (d *Disambiguator) Disambiguate(
	ctx context.Context,
	question string,
	catalog *domain.Catalog,
	convo domain.ConversationContext,
) (domain.DisambiguationResult, error) {
	logger.Section("Disambiguation")
	logger.Debug("Question: %q", question)
	if !convo.IsEmpty() {
		logger.Debug("Previously discussed document: %s", convo.PreviousDocument)
	}

	req := driven.CompletionRequest{
		System: d.prompts.load(driven.PromptTriageSystem),
		Prompt: d.prompts.render(driven.PromptTriageUser, question, convo.Hint(), catalog.Formatted()),
		Tools:  []driven.Tool{listDocumentsTool{catalog: catalog}},
	}

	result, err := Execute(ctx, d.executor, "disambiguation", func(ctx context.Context, model string) (domain.DisambiguationResult, error) {
		r := req
		r.Model = model
		text, err := d.llm.Complete(ctx, r)
		if err != nil {
			return domain.DisambiguationResult{}, err
		}
		return ParseDisambiguation(text)
	})
	if err != nil {
		return domain.DisambiguationResult{}, fmt.Errorf("disambiguate: %w", err)
	}

	result.Normalize(question, catalog)
	logger.Info("Disambiguation: document=%q confidence=%s language=%s listing=%t",
		result.Document, result.Confidence, result.Language, result.ListingRequest)
	logger.Debug("Reformulated query: %q", result.ReformulatedQuery)
	return result, nil
}

// ParseDisambiguation extracts the classifier's JSON object from a reply.
// Models sometimes wrap the object in prose or code fences; the outermost
// braces are used.
func ParseDisambiguation(text string) (domain.DisambiguationResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return domain.DisambiguationResult{}, fmt.Errorf("%w: no JSON object in classifier reply", domain.ErrMalformedResponse)
	}

	var reply triageReply
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return domain.DisambiguationResult{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return reply.result(), nil
}
