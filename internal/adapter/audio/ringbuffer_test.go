package audio

import (
	"strings"
	"sync"
	"testing"
)

func TestRingBufferKeepsTail(t *testing.T) {
	rb := newRingBuffer(8)
	_, _ = rb.Write([]byte("hello "))
	_, _ = rb.Write([]byte("world"))

	if got := rb.String(); got != "lo world" {
		t.Errorf("String() = %q, want %q", got, "lo world")
	}
}

func TestRingBufferConcurrentWrites(t *testing.T) {
	rb := newRingBuffer(1024)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = rb.Write([]byte("x"))
		}()
	}
	wg.Wait()

	if got := rb.String(); got != strings.Repeat("x", 10) {
		t.Errorf("String() = %q", got)
	}
}
