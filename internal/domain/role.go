package domain

import (
	"fmt"
	"strings"
)

// Role is the profile the user picks before the conversation starts.
// It is selected once per session and never changes afterwards.
type Role string

const (
	RoleManager      Role = "manager"
	RoleCollaborator Role = "collaborator"
)

// roleLabels are the Portuguese labels shown to the user and injected into
// the system prompt.
var roleLabels = map[Role]string{
	RoleManager:      "gestor",
	RoleCollaborator: "colaborador",
}

// Roles returns the selectable roles in display order.
func Roles() []Role {
	return []Role{RoleManager, RoleCollaborator}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the user-facing label for r.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// ParseRole accepts either the canonical name or the Portuguese label.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, label := range roleLabels {
		if s == string(r) || s == label {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Phase is the top-level state of a session: either waiting for the user to
// pick a profile, or holding a conversation.
type Phase int

const (
	PhaseProfileSelection Phase = iota
	PhaseConversation
)

func (p Phase) String() string {
	switch p {
	case PhaseProfileSelection:
		return "profile_selection"
	case PhaseConversation:
		return "conversation"
	default:
		return "unknown"
	}
}
