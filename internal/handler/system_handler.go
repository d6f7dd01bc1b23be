package handler

import (
	"errors"

	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
	"github.com/arturoeanton/go-license-rag-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// SystemInfo is static deployment information surfaced by the health check.
type SystemInfo struct {
	AppName        string
	EmbeddingModel string
	OllamaEndpoint string
	DataSource     string
}

// SystemHandler exposes health and refresh endpoints.
type SystemHandler struct {
	refresh *service.RefreshService
	state   *service.StateHolder
	info    SystemInfo
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(refresh *service.RefreshService, state *service.StateHolder, info SystemInfo) *SystemHandler {
	return &SystemHandler{refresh: refresh, state: state, info: info}
}

// Register sets up root, health, and refresh routes.
func (h *SystemHandler) Register(app *fiber.App, api fiber.Router) {
	app.Get("/", h.Root)
	api.Get("/health", h.Health)
	api.Post("/refresh", h.Refresh)
}

// Root is a minimal liveness probe.
func (h *SystemHandler) Root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "running",
		"indexed_records": h.state.IndexedRecords(),
	})
}

// Health reports index readiness and deployment configuration.
func (h *SystemHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"app":             h.info.AppName,
		"indexed_records": h.state.IndexedRecords(),
		"index_ready":     h.state.Ready(),
		"embedding_model": h.info.EmbeddingModel,
		"ollama_endpoint": h.info.OllamaEndpoint,
		"data_source":     h.info.DataSource,
	})
}

// Refresh re-checks the data source and rebuilds the index if the content
// hash changed. A concurrent rebuild makes this a reported no-op.
func (h *SystemHandler) Refresh(c fiber.Ctx) error {
	result, err := h.refresh.CheckAndRefresh(c.Context())
	if err != nil {
		var formatErr *port.DataFormatError
		if errors.As(err, &formatErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(), "kind": "data_format",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
