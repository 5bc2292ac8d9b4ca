package llm

import (
	"context"
	"sync/atomic"

	"peora/internal/domain"
)

type mockProvider struct {
	name     string
	calls    atomic.Int32
	chatFunc func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

func (m *mockProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.calls.Add(1)
	if m.chatFunc != nil {
		return m.chatFunc(ctx, req)
	}
	return &domain.ChatResponse{}, nil
}

func (m *mockProvider) Name() string { return m.name }
