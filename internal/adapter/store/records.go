package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
)

// RecordStore loads the raw dataset through a RecordSource and hashes it into
// immutable snapshots. It holds no mutable state itself; snapshot ownership
// transfers to the caller.
type RecordStore struct {
	source port.RecordSource
}

// NewRecordStore creates a record store over the given source.
func NewRecordStore(source port.RecordSource) *RecordStore {
	return &RecordStore{source: source}
}

// SourceName reports which source the store reads from.
func (s *RecordStore) SourceName() string {
	return s.source.Name()
}

// Load fetches the full record set and captures it as a hashed snapshot.
func (s *RecordStore) Load(ctx context.Context) (*domain.DatasetSnapshot, error) {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	snapshot, err := domain.NewDatasetSnapshot(records)
	if err != nil {
		return nil, err
	}

	slog.Info("dataset loaded", "source", s.source.Name(), "records", len(records), "hash", shortHash(snapshot.Hash))
	return snapshot, nil
}

// CurrentHash fetches the source and returns only its content hash.
func (s *RecordStore) CurrentHash(ctx context.Context) (string, error) {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("hash dataset: %w", err)
	}
	return domain.HashRecords(records)
}

// Changed reports whether the source content differs from the previous hash.
func (s *RecordStore) Changed(ctx context.Context, previousHash string) (bool, error) {
	current, err := s.CurrentHash(ctx)
	if err != nil {
		return false, err
	}
	return current != previousHash, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
