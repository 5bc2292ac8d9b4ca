package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"peora/internal/domain"
	"peora/internal/infra/tracer"
)

// maxResponseBody is the maximum response body size we read from the API.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// maxErrorMessage bounds the raw body kept on a ProviderError when the
// error payload is not JSON.
const maxErrorMessage = 512

// doJSONRequest performs a JSON POST and returns the body of a 200 response.
// Any other status becomes a *domain.ProviderError.
func doJSONRequest(ctx context.Context, client *http.Client, provider, url string, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, MapHTTPError(provider, httpResp.StatusCode, respBody)
	}

	return respBody, nil
}

// apiErrorBody is the OpenAI-style error envelope.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// MapHTTPError turns a non-200 response into a *domain.ProviderError whose
// Err is the matching sentinel, so the classifier and the circuit breaker
// can tell rate limits and auth failures apart.
func MapHTTPError(provider string, statusCode int, body []byte) error {
	pe := &domain.ProviderError{Provider: provider, StatusCode: statusCode}

	var env apiErrorBody
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		pe.Message = env.Error.Message
		pe.Type = env.Error.Type
	} else {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorMessage {
			msg = msg[:maxErrorMessage]
		}
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		pe.Message = msg
	}

	switch {
	case statusCode == http.StatusTooManyRequests: // 429
		pe.Err = domain.ErrRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden: // 401, 403
		pe.Err = domain.ErrAuthInvalid
	case statusCode == http.StatusRequestEntityTooLarge: // 413
		pe.Err = domain.ErrContextOverflow
	default:
		pe.Err = domain.ErrProviderError
	}
	return pe
}

func logChatCompleted(logger *slog.Logger, providerName string, result *domain.ChatResponse) {
	logger.Debug("llm chat completed",
		"provider", providerName,
		"model", result.Model,
		"choices", len(result.Choices),
		"tokens", result.Usage.TotalTokens,
	)
}

func setUsageAttrs(span trace.Span, usage domain.Usage) {
	span.SetAttributes(
		tracer.IntAttr("llm.prompt_tokens", usage.PromptTokens),
		tracer.IntAttr("llm.completion_tokens", usage.CompletionTokens),
	)
}
