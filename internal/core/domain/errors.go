package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfiguration indicates a missing credential or backing index.
	// It is fatal for initialisation and is surfaced to the caller verbatim.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotInitialized indicates the pipeline has not completed initialisation.
	ErrNotInitialized = errors.New("pipeline not initialized")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Query embedding is required by index backends that do not embed server-side.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the chunk index could not be reached or does not exist.
	ErrIndexUnavailable = errors.New("chunk index unavailable")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedResponse indicates a model reply could not be parsed.
	ErrMalformedResponse = errors.New("malformed model response")
)
