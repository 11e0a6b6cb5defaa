// Package httpapi exposes the assistant over HTTP using echo.
//
// Routes:
//   - POST /chat          full reply as {"response": "..."}
//   - POST /chat/stream   reply streamed as server-sent events, one line per event
//   - GET  /suggestions   catalog as {"documents": [{key, description}]}
//   - GET  /healthz       readiness
//   - GET  /metrics       Prometheus metrics, when a handler is configured
//   - ANY  /mcp           MCP streamable HTTP, when a handler is configured
//
// The caller owns the transcript: every request carries the full history.
package httpapi
