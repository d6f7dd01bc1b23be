package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
)

const defaultBatchSize = 128

// Builder turns dataset snapshots into searchable indexes by embedding each
// record's context line in batches.
type Builder struct {
	ai        port.AIProvider
	batchSize int
}

// NewBuilder creates a builder using the given provider for embeddings.
func NewBuilder(ai port.AIProvider, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Builder{ai: ai, batchSize: batchSize}
}

// EmbedModel reports the embedding model identity new indexes will carry.
func (b *Builder) EmbedModel() string {
	return b.ai.EmbedModelName()
}

// Build embeds every record in the snapshot and assembles the index. The new
// index is constructed entirely off to the side; publishing it is the
// caller's responsibility.
func (b *Builder) Build(ctx context.Context, snapshot *domain.DatasetSnapshot) (*Index, error) {
	start := time.Now()
	n := len(snapshot.Records)
	slog.Info("building index", "records", n, "batch_size", b.batchSize)

	ix := &Index{
		Hash:       snapshot.Hash,
		EmbedModel: b.ai.EmbedModelName(),
		Entries:    make([]Entry, 0, n),
	}

	for offset := 0; offset < n; offset += b.batchSize {
		end := offset + b.batchSize
		if end > n {
			end = n
		}

		texts := make([]string, end-offset)
		for i := offset; i < end; i++ {
			texts[i-offset] = snapshot.Records[i].ContextLine()
		}

		vectors, err := b.ai.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", offset, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embed batch at %d: got %d vectors for %d texts", offset, len(vectors), len(texts))
		}

		for i, vec := range vectors {
			if ix.Dim == 0 {
				ix.Dim = len(vec)
			} else if len(vec) != ix.Dim {
				return nil, fmt.Errorf("embed batch at %d: vector dim %d, want %d", offset, len(vec), ix.Dim)
			}
			ix.Entries = append(ix.Entries, Entry{RecordID: offset + i, Vector: vec})
		}
	}

	slog.Info("index built", "records", ix.Len(), "dim", ix.Dim, "elapsed", time.Since(start))
	return ix, nil
}
