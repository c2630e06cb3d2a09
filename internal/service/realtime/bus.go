package realtime

import (
	"context"

	"beacon_chat_server/pkg/constants"
)

// EventBus carries serialized envelopes from the message engine to the
// gateway. Two implementations exist: ChannelBus (in-process, default)
// and KafkaBus (publish to a topic, a consumer feeds the local gateway).
type EventBus interface {
	// Publish enqueues one envelope. Per-chat delivery order follows
	// publish order.
	Publish(ctx context.Context, data []byte) error
	// Start runs the consume loop until Close.
	Start()
	// Close releases the transport.
	Close()
}

// ChannelBus is the standalone transport: one buffered channel drained
// by a single consumer goroutine, which preserves publish order.
type ChannelBus struct {
	transmit chan []byte
	sink     func([]byte)
}

// NewChannelBus creates the in-process bus delivering into sink.
func NewChannelBus(sink func([]byte)) *ChannelBus {
	return &ChannelBus{
		transmit: make(chan []byte, constants.CHANNEL_SIZE),
		sink:     sink,
	}
}

// Publish blocks when the buffer is full rather than dropping or
// reordering events.
func (b *ChannelBus) Publish(ctx context.Context, data []byte) error {
	select {
	case b.transmit <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *ChannelBus) Start() {
	for data := range b.transmit {
		b.sink(data)
	}
}

func (b *ChannelBus) Close() {
	close(b.transmit)
}

var _ EventBus = (*ChannelBus)(nil)
