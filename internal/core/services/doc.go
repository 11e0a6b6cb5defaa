// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The request pipeline lives in Pipeline: context resolution,
// disambiguation, filtered retrieval and answer synthesis, with
// model calls routed through ModelExecutor for rate-limit fallback.
package services
