// Package source provides dataset source adapters implementing port.RecordSource.
package source

import (
	"context"
	"fmt"
	"os"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// FileSource loads license-usage records from a local JSON file holding an
// array of record objects.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading from the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source for logging and health output.
func (s *FileSource) Name() string {
	return "json:" + s.path
}

// Fetch reads and validates the full record set.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return decodeRecords(data)
}
