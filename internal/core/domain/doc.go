// Package domain defines the core business entities for docbot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Catalog: The set of known documents discovered from the chunk index
//   - Message: A single turn of a caller-supplied transcript
//   - DisambiguationResult: Which document, language and confidence a question resolves to
//   - RetrievedChunk: A passage surfaced by similarity search
//   - Language: Localisation tables for the supported answer languages
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
