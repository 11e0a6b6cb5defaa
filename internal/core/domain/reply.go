package domain

// Outcome is the terminal state of one request.
type Outcome string

// Request outcomes.
const (
	OutcomeAnswered   Outcome = "answered"
	OutcomeNoResults  Outcome = "no_results"
	OutcomeClarifying Outcome = "clarifying"
	OutcomeError      Outcome = "error"
)

// Reply is the assistant's answer to one message.
type Reply struct {
	// Text is the user-facing response.
	Text string

	// Outcome is the terminal state reached.
	Outcome Outcome

	// Language is the detected language (empty if the request failed early).
	Language Language

	// Document is the resolved document key, if any.
	Document string

	// Confidence is the disambiguation confidence, if reached.
	Confidence Confidence

	// Chunks is the number of context blocks used.
	Chunks int
}

// Status reports pipeline readiness.
type Status struct {
	// Initialized is true once the catalog has been discovered.
	Initialized bool

	// Documents is the catalog size.
	Documents int

	// Chunks is the number of indexed chunks, or -1 if unknown.
	Chunks int

	// Model is the primary model reference.
	Model string

	// FallbackModel is the fallback model reference, if configured.
	FallbackModel string
}

// IngestOptions configures an ingestion run.
type IngestOptions struct {
	// Replace clears the index before adding chunks.
	Replace bool

	// BatchSize is the number of chunks embedded per call (0 = default).
	BatchSize int
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// Files is the number of files ingested.
	Files int

	// Chunks is the number of chunks stored.
	Chunks int

	// Tables is the number of chunks that are whole tables.
	Tables int

	// Documents lists the document keys (or sources) ingested.
	Documents []string

	// Skipped lists files that were not markdown.
	Skipped []string
}
