package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driven"
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
	"github.com/custodia-labs/docbot/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.AssistantService = (*Pipeline)(nil)

// Error categories rendered into user-facing error text.
const (
	categoryConfiguration = "configuration error"
	categoryRateLimit     = "rate limit exceeded"
	categoryInvalidInput  = "invalid input"
	categoryProcessing    = "processing error"
)

// PipelineConfig holds the tunables of the request pipeline.
type PipelineConfig struct {
	// Model is the primary model reference.
	Model string

	// FallbackModel is tried once when Model is rate limited.
	FallbackModel string

	// TopK is the number of chunks requested from the index.
	TopK int

	// SimilarityThreshold is the minimum similarity for a chunk to be used.
	SimilarityThreshold float64

	// MetadataLimit caps catalog discovery.
	MetadataLimit int

	// MaxTokens bounds answer length.
	MaxTokens int

	// Temperature controls answer randomness.
	Temperature float64
}

// PipelineConfigFromSettings maps application settings onto the pipeline.
func PipelineConfigFromSettings(s *domain.AppSettings) PipelineConfig {
	return PipelineConfig{
		Model:               s.LLM.Model,
		FallbackModel:       s.LLM.FallbackModel,
		TopK:                s.Retrieval.TopK,
		SimilarityThreshold: s.Retrieval.SimilarityThreshold,
		MetadataLimit:       s.Index.MetadataLimit,
		MaxTokens:           s.LLM.MaxTokens,
		Temperature:         s.LLM.Temperature,
	}
}

// PipelineOption configures optional pipeline collaborators.
type PipelineOption func(*Pipeline)

// WithPromptStore sets the prompt store for customisable prompts.
func WithPromptStore(store driven.PromptStore) PipelineOption {
	return func(p *Pipeline) { p.prompts = store }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m driven.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithValidator sets a check run at the start of every initialisation
// attempt, typically credential validation.
func WithValidator(fn func() error) PipelineOption {
	return func(p *Pipeline) { p.validate = fn }
}

// Pipeline answers questions about the corpus. It is the explicit context
// object shared by all request handlers: the catalog is discovered once,
// lazily, and concurrent first requests share a single initialisation.
type Pipeline struct {
	llm      driven.LLMService
	index    driven.ChunkIndex
	prompts  driven.PromptStore
	metrics  driven.Metrics
	validate func() error
	cfg      PipelineConfig

	executor      *ModelExecutor
	disambiguator *Disambiguator
	retriever     *Retriever
	synthesizer   *Synthesizer

	init    singleflight.Group
	mu      sync.RWMutex
	catalog *domain.Catalog
}

// NewPipeline creates a pipeline. No outbound call is made until the
// first request or an explicit Initialize.
func NewPipeline(llm driven.LLMService, index driven.ChunkIndex, cfg PipelineConfig, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		llm:   llm,
		index: index,
		cfg:   cfg,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.executor = NewModelExecutor(cfg.Model, cfg.FallbackModel, p.metrics)
	p.disambiguator = NewDisambiguator(llm, p.executor, p.prompts)
	p.retriever = NewRetriever(index, cfg.TopK, cfg.SimilarityThreshold)
	p.synthesizer = NewSynthesizer(llm, p.executor, p.prompts)
	p.synthesizer.SetGenerationOptions(cfg.MaxTokens, cfg.Temperature)
	return p
}

// Initialize discovers the catalog if it has not been discovered yet.
// Failures are not cached: the next call tries again.
func (p *Pipeline) Initialize(ctx context.Context) error {
	if p.Catalog() != nil {
		return nil
	}

	_, err, shared := p.init.Do("init", func() (any, error) {
		if c := p.Catalog(); c != nil {
			return c, nil
		}
		if p.validate != nil {
			if err := p.validate(); err != nil {
				return nil, err
			}
		}
		if p.llm == nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrLLMUnavailable)
		}
		if p.index == nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrIndexUnavailable)
		}

		// Shared by every waiter, so detached from the first caller's cancellation.
		catalog, err := DiscoverCatalog(context.WithoutCancel(ctx), p.index, p.cfg.MetadataLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}

		p.mu.Lock()
		p.catalog = catalog
		p.mu.Unlock()
		logger.Info("Pipeline ready with %d documents", catalog.Len())
		return catalog, nil
	})
	if shared {
		logger.Debug("Initialization shared with a concurrent request")
	}
	return err
}

// Reset forgets the catalog so the next request rediscovers it.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.catalog = nil
	p.mu.Unlock()
}

// Catalog returns the discovered catalog, or nil before initialisation.
func (p *Pipeline) Catalog() *domain.Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.catalog
}

// Documents returns the catalog in catalog order.
func (p *Pipeline) Documents(ctx context.Context) ([]domain.DocumentDescriptor, error) {
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	return p.Catalog().Descriptors(), nil
}

// Status reports readiness without triggering initialisation.
func (p *Pipeline) Status(ctx context.Context) domain.Status {
	st := domain.Status{
		Chunks:        -1,
		Model:         p.executor.Primary(),
		FallbackModel: p.executor.Fallback(),
	}
	if c := p.Catalog(); c != nil {
		st.Initialized = true
		st.Documents = c.Len()
	}
	if p.index != nil {
		if n, err := p.index.Count(ctx); err == nil {
			st.Chunks = n
		}
	}
	return st
}

// Ask answers one message. Failures never escape: they are rendered as
// "Error: <category>: <message>".
func (p *Pipeline) Ask(ctx context.Context, message string, history []domain.Message) domain.Reply {
	start := time.Now()

	reply, err := p.run(ctx, message, history)
	if err != nil {
		logger.Error("Request failed: %v", err)
		reply = domain.Reply{
			Text:       RenderError(err),
			Outcome:    domain.OutcomeError,
			Language:   reply.Language,
			Document:   reply.Document,
			Confidence: reply.Confidence,
		}
	}

	if p.metrics != nil {
		p.metrics.ObserveRequest(string(reply.Outcome), time.Since(start))
	}
	logger.Debug("Outcome: %s in %s", reply.Outcome, time.Since(start).Round(time.Millisecond))
	return reply
}

// run walks the request states:
// START -> CONTEXT_RESOLVED -> DISAMBIGUATED -> {CLARIFYING | RETRIEVING} -> {ANSWERED | NO_RESULTS}.
func (p *Pipeline) run(ctx context.Context, message string, history []domain.Message) (domain.Reply, error) {
	logger.Section("Request")
	if strings.TrimSpace(message) == "" {
		return domain.Reply{}, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if err := p.Initialize(ctx); err != nil {
		return domain.Reply{}, err
	}
	catalog := p.Catalog()

	// START
	question, merged := EffectiveQuestion(message, history)
	if merged {
		logger.Info("Merged clarification reply: %q", question)
	}

	// CONTEXT_RESOLVED
	convo := ResolveConversation(history, catalog.Keys())

	// DISAMBIGUATED
	result, err := p.disambiguator.Disambiguate(ctx, question, catalog, convo)
	if err != nil {
		return domain.Reply{}, err
	}
	reply := domain.Reply{
		Language:   result.Language,
		Document:   result.Document,
		Confidence: result.Confidence,
	}

	// CLARIFYING
	if result.Confidence == domain.ConfidenceAmbiguous {
		logger.Info("Document ambiguous, asking for clarification")
		reply.Text = ClarificationResponse(result, catalog)
		reply.Outcome = domain.OutcomeClarifying
		return reply, nil
	}

	// RETRIEVING
	if result.Confidence == domain.ConfidenceLow {
		logger.Info("Low confidence, searching all documents")
	}
	chunks, err := p.retriever.Chunks(ctx, result.ReformulatedQuery, result.DocumentFilter())
	if err != nil {
		return reply, err
	}

	// NO_RESULTS
	if len(chunks) == 0 {
		reply.Text = result.Language.NoResultsMessage()
		reply.Outcome = domain.OutcomeNoResults
		return reply, nil
	}

	// ANSWERED
	answer, err := p.synthesizer.Synthesize(ctx, message, domain.JoinContext(chunks), result.Language)
	if err != nil {
		return reply, err
	}
	reply.Text = answer
	reply.Outcome = domain.OutcomeAnswered
	reply.Chunks = len(chunks)
	return reply, nil
}

// ClarificationResponse renders the clarification question followed by
// the localised catalog listing.
func ClarificationResponse(result domain.DisambiguationResult, catalog *domain.Catalog) string {
	return fmt.Sprintf("%s\n\n%s\n%s", result.ClarificationQuestion, result.Language.CatalogHeader(), catalog.Markdown())
}

// RenderError formats a failure for the caller without internal detail
// beyond the error message.
func RenderError(err error) string {
	category := ErrorCategory(err)
	msg := strings.TrimPrefix(err.Error(), category+": ")
	return fmt.Sprintf("Error: %s: %s", category, msg)
}

// ErrorCategory classifies a failure for rendering.
func ErrorCategory(err error) string {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return categoryConfiguration
	case errors.Is(err, domain.ErrInvalidInput):
		return categoryInvalidInput
	case IsRateLimited(err):
		return categoryRateLimit
	default:
		return categoryProcessing
	}
}
