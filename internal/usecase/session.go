package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"peora/internal/domain"
)

// Session is the state of one conversation: the message log, the role gate,
// the pending input buffer and the busy flag. All of it sits behind one
// mutex so observers never see a half-applied transition.
type Session struct {
	mu      sync.Mutex
	id      string
	store   *MessageStore
	bus     domain.EventBus // may be nil
	role    domain.Role
	phase   domain.Phase
	pending string
	locked  bool // pending input is owned by an in-flight transcription
	busy    bool
}

// SessionSnapshot is a consistent, read-only view of a Session.
type SessionSnapshot struct {
	ID       string
	Messages []domain.Message
	Role     domain.Role
	Phase    domain.Phase
	Pending  string
	Busy     bool
	Locked   bool
}

// HasRole reports whether a profile has been selected.
func (s SessionSnapshot) HasRole() bool { return s.Phase == domain.PhaseConversation }

// NewSession creates a session in the profile-selection phase, with the
// greeting already in the log.
func NewSession(bus domain.EventBus) *Session {
	id := generateULID(time.Now())
	s := &Session{
		id:    id,
		store: NewMessageStore(bus, id),
		bus:   bus,
		phase: domain.PhaseProfileSelection,
	}
	s.store.add(domain.AuthorBot, GreetingText)
	return s
}

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ID returns the session identifier used to correlate logs and spans.
func (s *Session) ID() string { return s.id }

// Store exposes the message log.
func (s *Session) Store() *MessageStore { return s.store }

// SelectRole moves the session into the conversation phase. The role can
// be chosen only once.
func (s *Session) SelectRole(ctx context.Context, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	s.mu.Lock()
	if s.phase == domain.PhaseConversation {
		current := s.role
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrRoleAlreadySelected, current)
	}
	s.role = role
	s.phase = domain.PhaseConversation
	s.mu.Unlock()

	s.publish(ctx, domain.EventRoleSelected, map[string]string{"role": string(role)})
	return nil
}

// Role returns the selected role and whether one has been selected.
func (s *Session) Role() (domain.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role, s.phase == domain.PhaseConversation
}

func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SetPendingInput replaces the input buffer. It returns false, leaving the
// buffer untouched, while a transcription owns the input.
func (s *Session) SetPendingInput(text string) bool {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return false
	}
	changed := s.pending != text
	s.pending = text
	s.mu.Unlock()

	if changed {
		s.publish(context.Background(), domain.EventPendingInput, nil)
	}
	return true
}

func (s *Session) PendingInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// InputLocked reports whether a transcription currently owns the input.
func (s *Session) InputLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Snapshot returns a consistent copy of the whole session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		ID:       s.id,
		Messages: s.store.All(),
		Role:     s.role,
		Phase:    s.phase,
		Pending:  s.pending,
		Busy:     s.busy,
		Locked:   s.locked,
	}
}

// pendingTurn is a user turn that has been appended and is awaiting a reply.
type pendingTurn struct {
	history []domain.Message // log before the user turn
	turn    domain.Message
	role    domain.Role
}

// beginTurn validates the input and role, then in one step appends the user
// turn, clears the input and raises the busy flag. ok is false when there is
// nothing to send.
func (s *Session) beginTurn(ctx context.Context) (pendingTurn, bool) {
	s.mu.Lock()
	text := strings.TrimSpace(s.pending)
	if text == "" || s.phase != domain.PhaseConversation {
		s.mu.Unlock()
		return pendingTurn{}, false
	}
	history := s.store.All()
	turn := s.store.add(domain.AuthorUser, text)
	s.pending = ""
	s.busy = true
	role := s.role
	s.mu.Unlock()

	s.store.announce(ctx, turn)
	s.publish(ctx, domain.EventPendingInput, nil)
	s.publish(ctx, domain.EventBusyChanged, map[string]bool{"busy": true})
	return pendingTurn{history: history, turn: turn, role: role}, true
}

// finishTurn appends the bot reply and lowers the busy flag in one step.
func (s *Session) finishTurn(ctx context.Context, reply string) domain.Message {
	s.mu.Lock()
	msg := s.store.add(domain.AuthorBot, reply)
	s.busy = false
	s.mu.Unlock()

	s.store.announce(ctx, msg)
	s.publish(ctx, domain.EventBusyChanged, map[string]bool{"busy": false})
	return msg
}

// lockInput hands the input buffer to a transcription. The caller announces
// the change.
func (s *Session) lockInput() {
	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
}

// unlockInput releases the buffer, replacing its content with transcript
// when replace is true.
func (s *Session) unlockInput(transcript string, replace bool) {
	s.mu.Lock()
	if replace {
		s.pending = transcript
	}
	s.locked = false
	s.mu.Unlock()
	s.publish(context.Background(), domain.EventPendingInput, nil)
}

func (s *Session) publish(ctx context.Context, t domain.EventType, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, domain.NewEvent(t, s.id, payload))
}
