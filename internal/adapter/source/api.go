package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// APISource fetches license-usage records from an HTTP endpoint returning a
// JSON array of record objects.
type APISource struct {
	url    string
	client *http.Client
}

// NewAPISource creates a source fetching from the given URL.
func NewAPISource(url string) *APISource {
	return &APISource{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies the source for logging and health output.
func (s *APISource) Name() string {
	return "api:" + s.url
}

// Fetch downloads and validates the full record set.
func (s *APISource) Fetch(ctx context.Context) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch records: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeRecords(data)
}
