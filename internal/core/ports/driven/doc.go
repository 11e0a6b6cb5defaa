// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the assistant to function:
//
//   - LLMService: Completion service used for disambiguation and answer synthesis
//   - ChunkIndex: Similarity search over document chunks (SQLite, Chroma, memory)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Needed only when the index does not embed queries itself,
//     and by ingestion.
//   - PromptStore: Without it, compiled-in prompts are used.
//   - Metrics: Without it, outcomes are not counted.
//   - Splitter: Needed only by ingestion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
