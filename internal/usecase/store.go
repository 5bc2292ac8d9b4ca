package usecase

import (
	"context"
	"sync"

	"peora/internal/domain"
)

// GreetingText opens every conversation.
const GreetingText = "Olá! Informe o número de colaborador para iniciarmos."

// MessageStore is the append-only, ordered conversation log.
// IDs come from a per-store counter so they are unique and strictly
// increasing in creation order.
type MessageStore struct {
	mu        sync.RWMutex
	msgs      []domain.Message
	lastID    int64
	bus       domain.EventBus // may be nil
	sessionID string
}

// NewMessageStore creates an empty store. Appends are announced on bus
// as EventMessageAppended when bus is non-nil.
func NewMessageStore(bus domain.EventBus, sessionID string) *MessageStore {
	return &MessageStore{bus: bus, sessionID: sessionID}
}

// Append adds a message to the end of the log and announces it.
func (s *MessageStore) Append(author domain.Author, text string) domain.Message {
	msg := s.add(author, text)
	s.announce(context.Background(), msg)
	return msg
}

// add appends without publishing. Callers holding other locks use it and
// announce once those locks are released.
func (s *MessageStore) add(author domain.Author, text string) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	msg := domain.Message{ID: s.lastID, Author: author, Text: text, Status: domain.StatusDone}
	s.msgs = append(s.msgs, msg)
	return msg
}

func (s *MessageStore) announce(ctx context.Context, msg domain.Message) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, domain.NewEvent(domain.EventMessageAppended, s.sessionID, msg))
}

// All returns a copy of the log in display order.
func (s *MessageStore) All() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]domain.Message, len(s.msgs))
	copy(cp, s.msgs)
	return cp
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// Last returns the most recent message, if any.
func (s *MessageStore) Last() (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.msgs) == 0 {
		return domain.Message{}, false
	}
	return s.msgs[len(s.msgs)-1], true
}
