package usecase

import (
	"context"
	"log/slog"
	"strings"

	"peora/internal/domain"
)

// FallbackReply is used when the provider answers without usable content.
const FallbackReply = "Desculpe, não consegui entender sua mensagem, tente ser mais específico."

// CompletionClient sends one request per call to the completion provider.
// It never retries; provider errors are returned unchanged.
type CompletionClient struct {
	provider domain.CompletionProvider
	logger   *slog.Logger
}

func NewCompletionClient(provider domain.CompletionProvider, logger *slog.Logger) *CompletionClient {
	return &CompletionClient{provider: provider, logger: logger}
}

// Complete returns the first choice's content, or FallbackReply when the
// response carries no choice or only whitespace.
func (c *CompletionClient) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	resp, err := c.provider.Chat(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		c.logger.Warn("completion returned no choices", "provider", c.provider.Name())
		return FallbackReply, nil
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		c.logger.Warn("completion returned empty content", "provider", c.provider.Name())
		return FallbackReply, nil
	}
	return content, nil
}
