package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"peora/internal/domain"
)

// User-facing replies for failed turns.
const (
	GenericErrorReply = "Ocorreu um erro inesperado. Tente novamente."
	rateLimitReply    = "Estou temporariamente sobrecarregado. Volto em cerca de %s. Tente novamente mais tarde!"
	vagueWait         = "alguns minutos"
)

// ErrorCategory indicates whether an error is retryable or permanent.
type ErrorCategory int

const (
	ErrorCategoryUnknown   ErrorCategory = iota
	ErrorCategoryRetryable               // 429, 5xx, connection errors, context overflow
	ErrorCategoryPermanent               // 401, 403, 400 (non-overflow), malformed
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryRetryable:
		return "retryable"
	case ErrorCategoryPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ClassifiedError holds the result of error classification.
type ClassifiedError struct {
	Original    error
	Category    ErrorCategory
	Sentinel    error // mapped domain sentinel (e.g. domain.ErrRateLimit), or nil
	StatusCode  int   // extracted HTTP status, or 0 if unknown
	WaitMinutes int   // cooldown announced by the provider, 0 if unknown
}

// RateLimited reports whether the provider asked the caller to back off.
func (c ClassifiedError) RateLimited() bool {
	return c.StatusCode == 429 || errors.Is(c.Sentinel, domain.ErrRateLimit)
}

// ErrorClassifier turns provider failures into categories for logging and
// into the reply shown in the chat.
type ErrorClassifier struct{}

func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

var (
	// apiErrorPattern matches "API error <status_code>:" as produced by the adapters.
	apiErrorPattern = regexp.MustCompile(`API error (\d+):`)
	waitPattern     = regexp.MustCompile(`(?i)try again in (\d+)m`)
)

// statusCoder is implemented by errors that carry an HTTP status.
type statusCoder interface {
	Status() int
}

var rateLimitPhrases = []string{"rate limit", "try again in", "too many requests"}

// contextOverflowKeywords indicate a context length issue within a 400 response.
var contextOverflowKeywords = []string{
	"context", "token", "length", "too long", "maximum",
}

// Classify inspects an error and returns its category, mapped sentinel,
// status code and announced cooldown. It never panics.
func (c *ErrorClassifier) Classify(err error) (out ClassifiedError) {
	if err == nil {
		return ClassifiedError{}
	}
	defer func() {
		if r := recover(); r != nil {
			out = ClassifiedError{Original: err, Category: ErrorCategoryUnknown}
		}
	}()

	errStr := err.Error()
	out = c.classify(err, errStr)
	if out.RateLimited() {
		out.WaitMinutes = waitMinutes(errStr)
	}
	return out
}

func (c *ErrorClassifier) classify(err error, errStr string) ClassifiedError {
	code := statusOf(err, errStr)

	// Wrapped domain sentinels first (from the adapters' HTTP mapping).
	if s := c.classifyBySentinel(err); s.Category != ErrorCategoryUnknown {
		s.StatusCode = code
		return s
	}
	if code != 0 {
		return c.classifyByStatus(err, code, errStr)
	}
	// Cancelled or expired requests never carry a provider verdict, whatever
	// the wrapping text says.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassifiedError{Original: err, Category: ErrorCategoryRetryable}
	}
	return c.classifyByString(err, errStr)
}

// statusOf extracts an HTTP status from a typed error or from the
// "API error NNN:" text.
func statusOf(err error, errStr string) int {
	var sc statusCoder
	if errors.As(err, &sc) && sc.Status() != 0 {
		return sc.Status()
	}
	if m := apiErrorPattern.FindStringSubmatch(errStr); len(m) == 2 {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			return code
		}
	}
	return 0
}

func (c *ErrorClassifier) classifyBySentinel(err error) ClassifiedError {
	switch {
	case errors.Is(err, domain.ErrRateLimit):
		return ClassifiedError{Original: err, Category: ErrorCategoryRetryable, Sentinel: domain.ErrRateLimit}
	case errors.Is(err, domain.ErrCircuitOpen):
		return ClassifiedError{Original: err, Category: ErrorCategoryRetryable, Sentinel: domain.ErrCircuitOpen}
	case errors.Is(err, domain.ErrContextOverflow):
		return ClassifiedError{Original: err, Category: ErrorCategoryRetryable, Sentinel: domain.ErrContextOverflow}
	case errors.Is(err, domain.ErrAuthInvalid):
		return ClassifiedError{Original: err, Category: ErrorCategoryPermanent, Sentinel: domain.ErrAuthInvalid}
	default:
		return ClassifiedError{Original: err, Category: ErrorCategoryUnknown}
	}
}

func (c *ErrorClassifier) classifyByStatus(err error, code int, body string) ClassifiedError {
	out := ClassifiedError{Original: err, StatusCode: code, Category: ErrorCategoryPermanent}
	switch {
	case code == 429:
		out.Category, out.Sentinel = ErrorCategoryRetryable, domain.ErrRateLimit
	case code == 401 || code == 403:
		out.Sentinel = domain.ErrAuthInvalid
	case code == 413:
		out.Category, out.Sentinel = ErrorCategoryRetryable, domain.ErrContextOverflow
	case code == 400:
		lower := strings.ToLower(body)
		for _, kw := range contextOverflowKeywords {
			if strings.Contains(lower, kw) {
				out.Category, out.Sentinel = ErrorCategoryRetryable, domain.ErrContextOverflow
				break
			}
		}
	case code >= 500 && code < 600:
		out.Category = ErrorCategoryRetryable
	}
	if out.Sentinel == nil && containsAny(strings.ToLower(body), rateLimitPhrases) {
		out.Category, out.Sentinel = ErrorCategoryRetryable, domain.ErrRateLimit
	}
	return out
}

func (c *ErrorClassifier) classifyByString(err error, errStr string) ClassifiedError {
	lower := strings.ToLower(errStr)

	switch {
	case containsAny(lower, rateLimitPhrases):
		return ClassifiedError{Original: err, Category: ErrorCategoryRetryable, Sentinel: domain.ErrRateLimit}
	case containsAny(lower, []string{"context length", "token limit", "maximum context"}):
		return ClassifiedError{Original: err, Category: ErrorCategoryRetryable, Sentinel: domain.ErrContextOverflow}
	case containsAny(lower, []string{
		"connection refused", "no such host", "timeout",
		"deadline exceeded", "connection reset",
	}):
		return ClassifiedError{Original: err, Category: ErrorCategoryRetryable}
	}
	return ClassifiedError{Original: err, Category: ErrorCategoryUnknown}
}

// UserMessage returns the chat reply for a failed turn: a cooldown notice
// for rate limits, the generic retry message otherwise. It never panics.
func (c *ErrorClassifier) UserMessage(err error) (msg string) {
	if err == nil {
		return GenericErrorReply
	}
	defer func() {
		if r := recover(); r != nil {
			msg = GenericErrorReply
		}
	}()

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return GenericErrorReply
	}
	errStr := err.Error()
	if !c.Classify(err).RateLimited() && !containsAny(strings.ToLower(errStr), rateLimitPhrases) {
		return GenericErrorReply
	}
	wait := vagueWait
	if n := waitMinutes(errStr); n > 0 {
		wait = fmt.Sprintf("%d minutos", n)
	}
	return fmt.Sprintf(rateLimitReply, wait)
}

// waitMinutes returns the N in "try again in Nm", or 0 when absent or unparseable.
func waitMinutes(s string) int {
	m := waitPattern.FindStringSubmatch(s)
	if len(m) != 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
