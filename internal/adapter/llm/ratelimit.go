package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"peora/internal/domain"
)

// NewLimiter spreads requestsPerMinute evenly over the minute with a burst
// of one. It returns nil for zero, meaning unlimited.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
}

// RateLimitedProvider waits for a limiter token before each call, keeping
// the client under the provider's published request quota.
type RateLimitedProvider struct {
	inner   domain.CompletionProvider
	limiter *rate.Limiter
}

func NewRateLimitedProvider(inner domain.CompletionProvider, limiter *rate.Limiter) *RateLimitedProvider {
	return &RateLimitedProvider{inner: inner, limiter: limiter}
}

// Chat blocks until a token is available or ctx is done.
func (p *RateLimitedProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("client throttle wait: %w", err)
	}
	return p.inner.Chat(ctx, req)
}

func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

var _ domain.CompletionProvider = (*RateLimitedProvider)(nil)
