package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-license-rag-ollama/internal/index"
)

// RefreshService owns the rebuild lifecycle: it detects dataset changes by
// hash, builds a replacement index off to the side, publishes it atomically,
// and invalidates the response cache. Interval ticks, file-watch events, and
// the on-demand endpoint all funnel into the same CheckAndRefresh.
type RefreshService struct {
	records   *store.RecordStore
	builder   *index.Builder
	cache     *store.IndexCache
	state     *StateHolder
	responses *ResponseCache

	mu sync.Mutex // serializes rebuilds; overlapping triggers are no-ops
}

// NewRefreshService wires the refresh path together. cache may be nil to
// disable persistence.
func NewRefreshService(
	records *store.RecordStore,
	builder *index.Builder,
	cache *store.IndexCache,
	state *StateHolder,
	responses *ResponseCache,
) *RefreshService {
	return &RefreshService{
		records:   records,
		builder:   builder,
		cache:     cache,
		state:     state,
		responses: responses,
	}
}

// Bootstrap performs the startup load: snapshot the dataset, reuse the
// persisted index when its hash and embed model still match, otherwise build
// eagerly (unless lazy, in which case the first scheduled refresh builds and
// earlier queries see "not ready"). Dataset errors here are fatal.
func (s *RefreshService) Bootstrap(ctx context.Context, lazy bool) error {
	if lazy {
		slog.Info("lazy load enabled, skipping startup indexing")
		return nil
	}

	snapshot, err := s.records.Load(ctx)
	if err != nil {
		return err
	}

	if s.cache != nil {
		ix, err := s.cache.LoadCached(snapshot.Hash, s.builder.EmbedModel())
		if err != nil {
			slog.Warn("index cache load failed, rebuilding", "error", err)
		} else if ix != nil {
			s.state.Publish(&ActiveState{Snapshot: snapshot, Index: ix})
			return nil
		}
	}

	ix, err := s.builder.Build(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("initial index build: %w", err)
	}
	s.persist(ix)
	s.state.Publish(&ActiveState{Snapshot: snapshot, Index: ix})
	return nil
}

// CheckAndRefresh compares the source hash to the active index and rebuilds
// on a mismatch. A refresh already in progress makes this call a no-op.
// Failures leave the previously published state untouched.
func (s *RefreshService) CheckAndRefresh(ctx context.Context) (*domain.RefreshResult, error) {
	if !s.mu.TryLock() {
		return &domain.RefreshResult{
			DataChanged:    false,
			IndexedRecords: s.state.IndexedRecords(),
			Message:        "refresh already in progress",
		}, nil
	}
	defer s.mu.Unlock()

	start := time.Now()

	snapshot, err := s.records.Load(ctx)
	if err != nil {
		// The active snapshot, if any, stays good; the caller just learns
		// this refresh attempt failed.
		return nil, err
	}

	active := s.state.Acquire()
	if active != nil && active.Snapshot.Hash == snapshot.Hash {
		return &domain.RefreshResult{
			DataChanged:    false,
			IndexedRecords: active.Index.Len(),
			Message:        "data unchanged",
		}, nil
	}

	var ix *index.Index
	if s.cache != nil {
		cached, err := s.cache.LoadCached(snapshot.Hash, s.builder.EmbedModel())
		if err != nil {
			slog.Warn("index cache load failed, rebuilding", "error", err)
		} else {
			ix = cached
		}
	}

	if ix == nil {
		ix, err = s.builder.Build(ctx, snapshot)
		if err != nil {
			return nil, fmt.Errorf("rebuild index: %w", err)
		}
		s.persist(ix)
	}

	s.state.Publish(&ActiveState{Snapshot: snapshot, Index: ix})
	s.responses.InvalidateAll()

	elapsed := time.Since(start)
	slog.Info("index refreshed", "records", ix.Len(), "elapsed", elapsed)

	return &domain.RefreshResult{
		DataChanged:    true,
		IndexedRecords: ix.Len(),
		Message:        fmt.Sprintf("indexed %d records in %.1fs", ix.Len(), elapsed.Seconds()),
	}, nil
}

// Run drives periodic and file-watch refreshes until ctx is done. changes may
// be nil when file watching is disabled.
func (s *RefreshService) Run(ctx context.Context, interval time.Duration, changes <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("refresh loop started", "interval", interval, "file_watch", changes != nil)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshAndLog(ctx, "interval")
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			s.refreshAndLog(ctx, "file change")
		}
	}
}

func (s *RefreshService) refreshAndLog(ctx context.Context, trigger string) {
	result, err := s.CheckAndRefresh(ctx)
	if err != nil {
		slog.Error("refresh failed", "trigger", trigger, "error", err)
		return
	}
	if result.DataChanged {
		slog.Info("refresh completed", "trigger", trigger, "records", result.IndexedRecords)
	}
}

func (s *RefreshService) persist(ix *index.Index) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Persist(ix); err != nil {
		slog.Warn("index persist failed", "error", err)
	}
}
