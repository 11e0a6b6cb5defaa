package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
	"github.com/custodia-labs/docbot/internal/logger"
)

// HistoryMessage is one prior transcript turn.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message string           `json:"message"`
	History []HistoryMessage `json:"history"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// DocumentItem is one suggestion entry.
type DocumentItem struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// SuggestionsResponse is the body returned by GET /suggestions.
type SuggestionsResponse struct {
	Documents []DocumentItem `json:"documents"`
}

// HealthResponse is the body returned by GET /healthz.
type HealthResponse struct {
	Status      string `json:"status"`
	Initialized bool   `json:"initialized"`
	Documents   int    `json:"documents"`
}

type handler struct {
	assistant   driving.AssistantService
	streamDelay time.Duration
}

// bind decodes and checks a chat request.
func bind(c echo.Context) (ChatRequest, error) {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return req, echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	return req, nil
}

func (h *handler) ask(c echo.Context, req ChatRequest) domain.Reply {
	history := make([]domain.Message, len(req.History))
	for i, m := range req.History {
		history[i] = domain.Message{Role: domain.Role(m.Role), Content: m.Content}
	}
	return h.assistant.Ask(c.Request().Context(), req.Message, history)
}

// chat returns the full reply. Pipeline failures are part of the reply
// text, so the status is 200 for any well-formed request.
func (h *handler) chat(c echo.Context) error {
	req, err := bind(c)
	if err != nil {
		return err
	}
	reply := h.ask(c, req)
	return c.JSON(http.StatusOK, ChatResponse{Response: reply.Text})
}

// chatStream computes the reply, then streams it line by line. Each line
// after the first is sent with its leading newline so clients can
// concatenate event data verbatim. A final "done" event has empty data.
func (h *handler) chatStream(c echo.Context) error {
	req, err := bind(c)
	if err != nil {
		return err
	}
	reply := h.ask(c, req)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for i, line := range strings.Split(reply.Text, "\n") {
		if i > 0 {
			line = "\n" + line
		}
		if err := writeEvent(resp, "", line); err != nil {
			return nil
		}
		resp.Flush()

		if h.streamDelay > 0 {
			select {
			case <-ctx.Done():
				logger.Debug("Stream client went away")
				return nil
			case <-time.After(h.streamDelay):
			}
		}
	}

	if err := writeEvent(resp, "done", ""); err != nil {
		return nil
	}
	resp.Flush()
	return nil
}

// writeEvent writes one SSE event. Multi-line data becomes one data field
// per line, which clients rejoin with "\n".
func writeEvent(resp *echo.Response, event, data string) error {
	var b strings.Builder
	if event != "" {
		b.WriteString("event: ")
		b.WriteString(event)
		b.WriteString("\n")
	}
	for _, part := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(part)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, err := resp.Write([]byte(b.String()))
	return err
}

// suggestions lists the catalog. Discovery failures yield an empty list.
func (h *handler) suggestions(c echo.Context) error {
	out := SuggestionsResponse{Documents: []DocumentItem{}}

	docs, err := h.assistant.Documents(c.Request().Context())
	if err != nil {
		logger.Warn("Suggestions unavailable: %v", err)
		return c.JSON(http.StatusOK, out)
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, DocumentItem{Key: d.Key, Description: d.Description()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handler) healthz(c echo.Context) error {
	st := h.assistant.Status(c.Request().Context())
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Initialized: st.Initialized,
		Documents:   st.Documents,
	})
}
