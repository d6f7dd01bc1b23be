package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-license-rag-ollama/internal/port"
)

// KeepAlive periodically issues a one-token generation so the model stays
// resident in Ollama between real queries. Purely best-effort: ping failures
// are logged and ignored.
type KeepAlive struct {
	provider port.AIProvider
	interval time.Duration
	cancel   context.CancelFunc
}

// NewKeepAlive creates a keep-alive pinger for the given provider.
func NewKeepAlive(provider port.AIProvider, interval time.Duration) *KeepAlive {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &KeepAlive{provider: provider, interval: interval}
}

// Start launches the background ping loop. Calling Start twice restarts it.
func (k *KeepAlive) Start() {
	k.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel

	go func() {
		slog.Info("keep-alive started", "interval", k.interval)
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				k.ping(ctx)
			}
		}
	}()
}

// Stop halts the ping loop.
func (k *KeepAlive) Stop() {
	if k.cancel != nil {
		k.cancel()
		k.cancel = nil
	}
}

func (k *KeepAlive) ping(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := k.provider.Generate(pingCtx, "ping", port.GenerateOptions{
		MaxTokens:   1,
		Temperature: 0,
		NumCtx:      256,
		TopK:        1,
		TopP:        1,
	})
	if err != nil {
		slog.Warn("keep-alive ping failed", "error", err)
	}
}
