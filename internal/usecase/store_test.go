package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peora/internal/domain"
	"peora/internal/infra/logger"
	"peora/internal/usecase/eventbus"
)

func TestMessageStoreAppendOrderAndIDs(t *testing.T) {
	s := NewMessageStore(nil, "")

	a := s.Append(domain.AuthorUser, "oi")
	b := s.Append(domain.AuthorBot, "olá")
	c := s.Append(domain.AuthorUser, "tudo bem?")

	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, c.ID)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"oi", "olá", "tudo bem?"}, []string{all[0].Text, all[1].Text, all[2].Text})
	assert.Equal(t, 3, s.Len())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, c, last)
}

func TestMessageStoreAllReturnsCopy(t *testing.T) {
	s := NewMessageStore(nil, "")
	s.Append(domain.AuthorUser, "original")

	cp := s.All()
	cp[0].Text = "mutated"

	assert.Equal(t, "original", s.All()[0].Text)
}

func TestMessageStoreLastEmpty(t *testing.T) {
	_, ok := NewMessageStore(nil, "").Last()
	assert.False(t, ok)
}

func TestMessageStoreConcurrentAppendsUniqueIDs(t *testing.T) {
	s := NewMessageStore(nil, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(domain.AuthorUser, "x")
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	var prev int64
	for _, m := range s.All() {
		assert.False(t, seen[m.ID], "duplicate id %d", m.ID)
		seen[m.ID] = true
		assert.Greater(t, m.ID, prev, "ids must increase in log order")
		prev = m.ID
	}
	assert.Len(t, seen, 50)
}

func TestMessageStorePublishesAppend(t *testing.T) {
	bus := eventbus.New(logger.Discard())
	s := NewMessageStore(bus, "sess-1")

	var mu sync.Mutex
	var got []domain.Message
	bus.Subscribe(domain.EventMessageAppended, func(_ context.Context, e domain.Event) {
		var m domain.Message
		if err := json.Unmarshal(e.Payload, &m); err == nil && e.SessionID == "sess-1" {
			mu.Lock()
			got = append(got, m)
			mu.Unlock()
		}
	})

	s.Append(domain.AuthorUser, "primeira")
	s.Append(domain.AuthorBot, "segunda")
	bus.Close()

	require.Len(t, got, 2)
	assert.Equal(t, "primeira", got[0].Text)
	assert.Equal(t, "segunda", got[1].Text)
}
