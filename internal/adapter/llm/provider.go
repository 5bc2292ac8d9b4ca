package llm

import (
	"log/slog"

	"peora/internal/domain"
	"peora/internal/infra/config"
)

// New builds the completion provider from config: the HTTP provider,
// optionally behind a client-side limiter and a circuit breaker.
func New(cfg config.LLMConfig, logger *slog.Logger) domain.CompletionProvider {
	var p domain.CompletionProvider = NewOpenAIProvider(cfg.Provider, logger)

	if limiter := NewLimiter(cfg.Provider.RequestsPerMinute); limiter != nil {
		p = NewRateLimitedProvider(p, limiter)
	}
	if cfg.CircuitBreaker.Enabled {
		p = NewCircuitBreakerProvider(p, cfg.CircuitBreaker, logger)
	}
	return p
}
