package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"peora/internal/domain"
	"peora/internal/infra/tracer"
)

// TurnController runs one user turn: append the user message, ask the
// provider, append exactly one bot reply.
//
// Send does not serialize concurrent calls; the presentation layer must not
// submit while Session.Busy reports true.
type TurnController struct {
	session    *Session
	prompts    *PromptBuilder
	completion *CompletionClient
	classifier *ErrorClassifier
	logger     *slog.Logger
}

func NewTurnController(
	session *Session,
	prompts *PromptBuilder,
	completion *CompletionClient,
	classifier *ErrorClassifier,
	logger *slog.Logger,
) *TurnController {
	return &TurnController{
		session:    session,
		prompts:    prompts,
		completion: completion,
		classifier: classifier,
		logger:     logger.With("session_id", session.ID()),
	}
}

// Send dispatches the pending input. It returns false, changing nothing,
// when the trimmed input is empty or no role has been selected. Otherwise
// it blocks until the bot reply is in the log and the busy flag is down.
func (t *TurnController) Send(ctx context.Context) (sent bool) {
	pt, ok := t.session.beginTurn(ctx)
	if !ok {
		return false
	}

	ctx, span := tracer.StartSpan(ctx, "turn.send")
	span.SetAttributes(
		tracer.StringAttr("session.id", t.session.ID()),
		tracer.StringAttr("role", string(pt.role)),
		tracer.IntAttr("history.len", len(pt.history)),
	)

	var (
		reply string
		err   error
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("turn panicked: %v", r)
			t.logger.Error("turn panicked", "panic", r)
			reply = t.classifier.UserMessage(err)
			sent = true
		}
		t.session.finishTurn(ctx, reply)
		tracer.End(span, err)
	}()

	reply, err = t.respond(ctx, pt)
	return true
}

func (t *TurnController) respond(ctx context.Context, pt pendingTurn) (string, error) {
	req, err := t.prompts.Build(pt.history, pt.turn, pt.role)
	if err != nil {
		t.logger.Error("build prompt failed", "error", err)
		return t.classifier.UserMessage(err), err
	}

	text, err := t.completion.Complete(ctx, req)
	if err != nil {
		cl := t.classifier.Classify(err)
		t.logger.Error("completion failed",
			"error", err,
			"code", string(domain.ErrorCodeOf(err)),
			"category", cl.Category.String(),
			"status", cl.StatusCode,
		)
		return t.classifier.UserMessage(err), err
	}

	t.logger.Debug("bot reply received", "turn_id", pt.turn.ID, "len", len(text))
	return text, nil
}
