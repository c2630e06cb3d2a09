package realtime

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"beacon_chat_server/pkg/constants"
)

func TestChannelBusPreservesPublishOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	bus := NewChannelBus(func(data []byte) {
		mu.Lock()
		got = append(got, string(data))
		mu.Unlock()
	})

	const n = 100
	for i := 0; i < n; i++ {
		if err := bus.Publish(context.Background(), []byte(fmt.Sprintf("env-%03d", i))); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}

	done := make(chan struct{})
	go func() {
		bus.Start()
		close(done)
	}()
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop did not drain after Close")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != n {
		t.Fatalf("expected %d delivered envelopes, got %d", n, len(got))
	}
	for i, data := range got {
		if want := fmt.Sprintf("env-%03d", i); data != want {
			t.Fatalf("envelope %d out of order: got %s want %s", i, data, want)
		}
	}
}

func TestChannelBusPublishHonorsContext(t *testing.T) {
	// No consumer, so the buffer fills and Publish must block until
	// the context gives up.
	bus := NewChannelBus(func([]byte) {})
	for i := 0; i < constants.CHANNEL_SIZE; i++ {
		if err := bus.Publish(context.Background(), []byte("x")); err != nil {
			t.Fatalf("Publish into free buffer: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := bus.Publish(ctx, []byte("overflow")); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline error on full buffer, got %v", err)
	}
}
