package usecase

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"peora/internal/domain"
)

//go:embed prompts/system.tmpl
var systemPromptTemplate string

// Temperature is sent with every completion request.
const Temperature = 0.7

// PromptBuilder turns the conversation log into a completion request.
// The system prompt is a pure function of the role, rendered once per role
// at construction.
type PromptBuilder struct {
	model   string
	prompts map[domain.Role]string
}

// NewPromptBuilder renders the system prompt for every known role.
func NewPromptBuilder(model string) (*PromptBuilder, error) {
	tmpl, err := template.New("system").Parse(systemPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse system prompt: %w", err)
	}

	prompts := make(map[domain.Role]string, len(domain.Roles()))
	for _, role := range domain.Roles() {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, struct{ Label string }{role.Label()}); err != nil {
			return nil, fmt.Errorf("render system prompt for %s: %w", role, err)
		}
		prompts[role] = strings.TrimSpace(sb.String())
	}

	return &PromptBuilder{model: model, prompts: prompts}, nil
}

// SystemPrompt returns the rendered instructions for role.
func (b *PromptBuilder) SystemPrompt(role domain.Role) (string, error) {
	p, ok := b.prompts[role]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	return p, nil
}

// Build returns the system entry followed by history and turn in order.
// Message IDs and statuses do not reach the payload.
func (b *PromptBuilder) Build(history []domain.Message, turn domain.Message, role domain.Role) (domain.ChatRequest, error) {
	system, err := b.SystemPrompt(role)
	if err != nil {
		return domain.ChatRequest{}, err
	}

	msgs := make([]domain.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, domain.ChatMessage{Role: domain.ChatRoleSystem, Content: system})
	for _, m := range history {
		msgs = append(msgs, toChatMessage(m))
	}
	msgs = append(msgs, toChatMessage(turn))

	return domain.ChatRequest{
		Messages:    msgs,
		Model:       b.model,
		Temperature: Temperature,
	}, nil
}

func toChatMessage(m domain.Message) domain.ChatMessage {
	role := domain.ChatRoleAssistant
	if m.FromUser() {
		role = domain.ChatRoleUser
	}
	return domain.ChatMessage{Role: role, Content: m.Text}
}
