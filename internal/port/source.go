package port

import (
	"context"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
)

// RecordSource fetches the raw license-usage records from wherever they live:
// a local JSON file, an HTTP endpoint, or a Postgres table.
type RecordSource interface {
	// Fetch loads every record from the source. Implementations validate
	// shape and return *DataFormatError for malformed data.
	Fetch(ctx context.Context) ([]domain.Record, error)

	// Name identifies the source for logging and health output.
	Name() string
}
