package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/source"
	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-license-rag-ollama/internal/index"
	"github.com/arturoeanton/go-license-rag-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

func newSystemApp(t *testing.T, dataJSON string) *fiber.App {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(dataJSON), 0o644))

	state := service.NewStateHolder()
	refresh := service.NewRefreshService(
		store.NewRecordStore(source.NewFileSource(path)),
		index.NewBuilder(&stubProvider{}, 0),
		nil,
		state,
		service.NewResponseCache(10),
	)

	app := fiber.New()
	NewSystemHandler(refresh, state, SystemInfo{AppName: "test"}).Register(app, app.Group("/api/v1"))
	return app
}

func TestRefreshEndpoint_IndexesData(t *testing.T) {
	app := newSystemApp(t, `[{"software": "MATLAB", "server": "s1", "location": "UK", "license": "l1"}]`)

	resp, body := postJSON(t, app, "/api/v1/refresh", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["data_changed"])
	require.Equal(t, float64(1), body["indexed_records"])
}

func TestRefreshEndpoint_MalformedData(t *testing.T) {
	app := newSystemApp(t, `{"not": "an array"}`)

	resp, body := postJSON(t, app, "/api/v1/refresh", "")

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "data_format", body["kind"])
}

func TestRefreshEndpoint_BadRecord(t *testing.T) {
	app := newSystemApp(t, `[{"software": "MATLAB", "server": "s1", "location": "UK",
	                          "license": "l1", "license_day_peak": 3.7}]`)

	resp, body := postJSON(t, app, "/api/v1/refresh", "")

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "data_format", body["kind"])
}
