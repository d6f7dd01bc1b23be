package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
)

// RAGOptions tunes retrieval and generation for the orchestrator.
type RAGOptions struct {
	TopK            int // retrieved records per semantic query
	HistoryContext  int // trailing exchanges included in the prompt
	Generate        port.GenerateOptions
	GenerateTimeout time.Duration
}

// RAGService is the per-query coordinator: it classifies, retrieves or
// aggregates, assembles the prompt, invokes the model, and records the
// outcome into history and the response cache.
type RAGService struct {
	ai         port.AIProvider
	state      *StateHolder
	classifier *Classifier
	history    *ConversationStore
	cache      *ResponseCache
	opts       RAGOptions
}

// NewRAGService creates the orchestrator over its collaborators.
func NewRAGService(
	ai port.AIProvider,
	state *StateHolder,
	classifier *Classifier,
	history *ConversationStore,
	cache *ResponseCache,
	opts RAGOptions,
) *RAGService {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.HistoryContext <= 0 {
		opts.HistoryContext = 2
	}
	return &RAGService{
		ai:         ai,
		state:      state,
		classifier: classifier,
		history:    history,
		cache:      cache,
		opts:       opts,
	}
}

// Answer resolves one query for one session.
func (s *RAGService) Answer(ctx context.Context, query, sessionID string) (*domain.QueryResponse, error) {
	start := time.Now()
	normalized := NormalizeQuery(query)

	// Classification is pure and cheap; always computed so even cache hits
	// are logged with their intent.
	intent := s.classifier.Classify(query)
	slog.Info("query received",
		"session", sessionID,
		"aggregate", intent.Kind == domain.IntentAggregate,
		"subject", intent.Subject,
	)

	// Cache short-circuit: identical text under an identical conversation
	// context replays the stored answer byte for byte.
	turns := s.history.History(sessionID)
	key := CacheKey(normalized, ContextSignature(turns))
	if entry, ok := s.cache.Get(key); ok {
		slog.Info("cache hit", "session", sessionID)
		return &domain.QueryResponse{
			Answer:             entry.Answer,
			ContextCount:       entry.ContextCount,
			ConversationLength: entry.HistoryLength,
			Cached:             true,
			ElapsedMs:          time.Since(start).Milliseconds(),
		}, nil
	}

	state := s.state.Acquire()
	if state == nil {
		return nil, port.ErrIndexUnavailable
	}

	var answer string
	var contextCount int
	var err error

	if intent.Kind == domain.IntentAggregate {
		// Aggregates come from the complete snapshot, never from top-K
		// retrieval, and are returned directly without a generation pass.
		answer = FormatAggregate(state.Snapshot, intent.Subject)
		contextCount = len(state.Snapshot.Records)
	} else {
		answer, contextCount, err = s.answerSemantic(ctx, query, state, turns)
		if err != nil {
			return nil, err
		}
	}

	// Recording: append the turn, then key the cache entry under the
	// post-append signature — that is the context the next identical query
	// in this session will be asked in.
	s.history.Append(sessionID, domain.ConversationTurn{Question: query, Answer: answer, At: time.Now()})
	newTurns := s.history.History(sessionID)
	s.cache.Put(CacheKey(normalized, ContextSignature(newTurns)), CacheEntry{
		Answer:        answer,
		ContextCount:  contextCount,
		HistoryLength: len(newTurns),
	})

	elapsed := time.Since(start)
	slog.Info("query answered", "session", sessionID, "context_records", contextCount, "elapsed", elapsed)

	return &domain.QueryResponse{
		Answer:             answer,
		ContextCount:       contextCount,
		ConversationLength: len(newTurns),
		ElapsedMs:          elapsed.Milliseconds(),
	}, nil
}

// answerSemantic embeds the query, retrieves top-K records, and asks the
// model to answer grounded in them.
func (s *RAGService) answerSemantic(ctx context.Context, query string, state *ActiveState, turns []domain.ConversationTurn) (string, int, error) {
	queryVector, err := s.ai.Embed(ctx, query)
	if err != nil {
		return "", 0, fmt.Errorf("embed query: %w", err)
	}

	hits := state.Index.Search(queryVector, s.opts.TopK)
	contextLines := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.RecordID >= 0 && hit.RecordID < len(state.Snapshot.Records) {
			contextLines = append(contextLines, state.Snapshot.Records[hit.RecordID].ContextLine())
		}
	}

	prompt := BuildPrompt(query, contextLines, turns, s.opts.HistoryContext)

	genCtx := ctx
	if s.opts.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.GenerateTimeout)
		defer cancel()
	}

	answer, err := s.ai.Generate(genCtx, prompt, s.opts.Generate)
	if err != nil {
		return "", 0, err
	}
	return answer, len(contextLines), nil
}
