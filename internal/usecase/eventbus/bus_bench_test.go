package eventbus

import (
	"context"
	"testing"

	"peora/internal/domain"
	"peora/internal/infra/logger"
)

func BenchmarkPublish(b *testing.B) {
	bus := New(logger.Discard())
	ctx := context.Background()
	event := domain.NewEvent(domain.EventMessageAppended, "bench-session", map[string]int{"id": 1})

	bus.Subscribe(domain.EventMessageAppended, func(_ context.Context, _ domain.Event) {})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(ctx, event)
	}
	bus.Close()
}

func BenchmarkPublishFanOut(b *testing.B) {
	bus := New(logger.Discard())
	ctx := context.Background()
	event := domain.NewEvent(domain.EventMessageAppended, "bench-session", nil)

	for i := 0; i < 10; i++ {
		bus.SubscribeAll(func(_ context.Context, _ domain.Event) {})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(ctx, event)
	}
	bus.Close()
}
