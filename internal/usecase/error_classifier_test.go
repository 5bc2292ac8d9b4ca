package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"peora/internal/domain"
)

func TestClassifyNilError(t *testing.T) {
	got := NewErrorClassifier().Classify(nil)
	assert.Equal(t, ErrorCategoryUnknown, got.Category)
	assert.Nil(t, got.Original)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		sentinel error
		status   int
	}{
		{"api text 429", fmt.Errorf("API error 429: rate limit exceeded"), ErrorCategoryRetryable, domain.ErrRateLimit, 429},
		{"api text 401", fmt.Errorf("API error 401: unauthorized"), ErrorCategoryPermanent, domain.ErrAuthInvalid, 401},
		{"api text 403", fmt.Errorf("API error 403: forbidden"), ErrorCategoryPermanent, domain.ErrAuthInvalid, 403},
		{"api text 413", fmt.Errorf("API error 413: payload too large"), ErrorCategoryRetryable, domain.ErrContextOverflow, 413},
		{"400 overflow", fmt.Errorf("API error 400: maximum context length exceeded"), ErrorCategoryRetryable, domain.ErrContextOverflow, 400},
		{"400 plain", fmt.Errorf("API error 400: bad json"), ErrorCategoryPermanent, nil, 400},
		{"500", fmt.Errorf("API error 500: internal"), ErrorCategoryRetryable, nil, 500},
		{"418", fmt.Errorf("API error 418: teapot"), ErrorCategoryPermanent, nil, 418},
		{"provider error 429", &domain.ProviderError{StatusCode: 429, Message: "slow down", Err: domain.ErrRateLimit}, ErrorCategoryRetryable, domain.ErrRateLimit, 429},
		{"provider error 401", &domain.ProviderError{StatusCode: 401, Message: "invalid api key", Err: domain.ErrAuthInvalid}, ErrorCategoryPermanent, domain.ErrAuthInvalid, 401},
		{"wrapped sentinel", fmt.Errorf("llm: %w", domain.ErrRateLimit), ErrorCategoryRetryable, domain.ErrRateLimit, 0},
		{"circuit open", fmt.Errorf("llm: %w", domain.ErrCircuitOpen), ErrorCategoryRetryable, domain.ErrCircuitOpen, 0},
		{"string rate limit", errors.New("Rate Limit reached"), ErrorCategoryRetryable, domain.ErrRateLimit, 0},
		{"string try again", errors.New("please TRY AGAIN IN 2m"), ErrorCategoryRetryable, domain.ErrRateLimit, 0},
		{"timeout", errors.New("dial tcp: i/o timeout"), ErrorCategoryRetryable, nil, 0},
		{"unknown", errors.New("something odd"), ErrorCategoryUnknown, nil, 0},
		{"cancelled behind limiter text", fmt.Errorf("rate limit wait: %w", context.Canceled), ErrorCategoryRetryable, nil, 0},
		{"deadline behind limiter text", fmt.Errorf("rate limit wait: %w", context.DeadlineExceeded), ErrorCategoryRetryable, nil, 0},
	}
	c := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err)
			assert.Equal(t, tt.category, got.Category, "category")
			assert.Equal(t, tt.sentinel, got.Sentinel, "sentinel")
			assert.Equal(t, tt.status, got.StatusCode, "status")
			assert.Same(t, tt.err, got.Original)
		})
	}
}

func TestClassifyWaitMinutes(t *testing.T) {
	c := NewErrorClassifier()
	got := c.Classify(&domain.ProviderError{StatusCode: 429, Message: "Please try again in 7m32.5s", Err: domain.ErrRateLimit})
	assert.True(t, got.RateLimited())
	assert.Equal(t, 7, got.WaitMinutes)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"429 with minutes",
			&domain.ProviderError{StatusCode: 429, Message: "try again in 5m"},
			"Estou temporariamente sobrecarregado. Volto em cerca de 5 minutos. Tente novamente mais tarde!",
		},
		{
			"429 without minutes",
			&domain.ProviderError{StatusCode: 429, Message: "slow down"},
			"Estou temporariamente sobrecarregado. Volto em cerca de alguns minutos. Tente novamente mais tarde!",
		},
		{
			"phrase without status",
			errors.New("Rate limit reached for model, Try Again In 12m"),
			"Estou temporariamente sobrecarregado. Volto em cerca de 12 minutos. Tente novamente mais tarde!",
		},
		{
			"phrase on auth error",
			&domain.ProviderError{StatusCode: 401, Message: "try again in 1m", Err: domain.ErrAuthInvalid},
			"Estou temporariamente sobrecarregado. Volto em cerca de 1 minutos. Tente novamente mais tarde!",
		},
		{
			"unparseable minutes",
			errors.New("rate limit, try again in 99999999999999999999999m"),
			"Estou temporariamente sobrecarregado. Volto em cerca de alguns minutos. Tente novamente mais tarde!",
		},
		{"unrelated", errors.New("connection refused"), GenericErrorReply},
		{"auth", &domain.ProviderError{StatusCode: 401, Message: "Invalid API Key", Err: domain.ErrAuthInvalid}, GenericErrorReply},
		{"nil", nil, GenericErrorReply},
		{"cancelled during throttle wait", fmt.Errorf("client throttle wait: %w", context.Canceled), GenericErrorReply},
		{"cancelled behind rate limit text", fmt.Errorf("client rate limiter: %w", context.Canceled), GenericErrorReply},
		{"deadline behind rate limit text", fmt.Errorf("rate limit: %w", context.DeadlineExceeded), GenericErrorReply},
	}
	c := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.UserMessage(tt.err))
		})
	}
}

func TestUserMessageScenarioRateLimit(t *testing.T) {
	err := &domain.ProviderError{StatusCode: 429, Message: "rate limit, try again in 3m", Err: domain.ErrRateLimit}
	assert.Contains(t, NewErrorClassifier().UserMessage(err), "3 minutos")
}

type panickyError struct{}

func (*panickyError) Error() string { panic("no message") }

func TestClassifierNeverPanics(t *testing.T) {
	c := NewErrorClassifier()
	var err error = &panickyError{}

	assert.NotPanics(t, func() {
		assert.Equal(t, GenericErrorReply, c.UserMessage(err))
		assert.Equal(t, ErrorCategoryUnknown, c.Classify(err).Category)
	})
}

func TestErrorCategoryString(t *testing.T) {
	assert.Equal(t, "retryable", ErrorCategoryRetryable.String())
	assert.Equal(t, "permanent", ErrorCategoryPermanent.String())
	assert.Equal(t, "unknown", ErrorCategoryUnknown.String())
}
