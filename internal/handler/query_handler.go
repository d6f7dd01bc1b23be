package handler

import (
	"errors"
	"fmt"

	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
	"github.com/arturoeanton/go-license-rag-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// defaultSessionID is used when the client supplies no session identifier.
const defaultSessionID = "default"

// QueryHandler handles question answering and history management.
type QueryHandler struct {
	rag     *service.RAGService
	history *service.ConversationStore
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(rag *service.RAGService, history *service.ConversationStore) *QueryHandler {
	return &QueryHandler{rag: rag, history: history}
}

// Register sets up query routes.
func (h *QueryHandler) Register(router fiber.Router) {
	router.Post("/query", h.Query)
	router.Post("/clear_history", h.ClearHistory)
}

// Query answers one natural-language question for a session.
func (h *QueryHandler) Query(c fiber.Ctx) error {
	var body struct {
		Query     string `json:"query"`
		SessionID string `json:"session_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "please send {\"query\": \"<your question>\"}"})
	}
	if body.SessionID == "" {
		body.SessionID = defaultSessionID
	}

	resp, err := h.rag.Answer(c.Context(), body.Query, body.SessionID)
	if err != nil {
		return queryError(c, err)
	}
	return c.JSON(resp)
}

// ClearHistory drops a session's conversation history. Unknown sessions are
// fine; clearing is idempotent.
func (h *QueryHandler) ClearHistory(c fiber.Ctx) error {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.SessionID == "" {
		body.SessionID = defaultSessionID
	}

	h.history.Clear(body.SessionID)
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Conversation history cleared for session %s", body.SessionID),
	})
}

// queryError maps the error taxonomy onto HTTP statuses so callers can decide
// between wait-and-retry and fail-fast.
func queryError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, port.ErrIndexUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "index not ready", "kind": "index_unavailable",
		})
	case errors.Is(err, port.ErrGenerationTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": err.Error(), "kind": "generation_timeout",
		})
	case errors.Is(err, port.ErrGenerationTransport):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(), "kind": "generation_transport",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
