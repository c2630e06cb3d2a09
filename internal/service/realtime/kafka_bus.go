package realtime

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"beacon_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBus routes envelopes through a kafka topic. The consumer feeds
// the local gateway only; it does not coordinate multiple gateway
// processes.
type KafkaBus struct {
	producer *kafka.Writer
	consumer *kafka.Reader
	sink     func([]byte)
	key      []byte
}

// NewKafkaBus builds producer and consumer from the kafka config
// section and delivers consumed envelopes into sink.
func NewKafkaBus(conf config.KafkaConfig, sink func([]byte)) *KafkaBus {
	return &KafkaBus{
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireNone,
			AllowAutoTopicCreation: false,
		},
		consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.EventTopic,
			CommitInterval: conf.Timeout * time.Second,
			GroupID:        "beacon_chat_events",
			StartOffset:    kafka.LastOffset,
		}),
		sink: sink,
		// Single fixed key keeps every envelope on one partition so
		// per-chat ordering survives the broker hop.
		key: []byte(strconv.Itoa(conf.Partition)),
	}
}

func (b *KafkaBus) Publish(ctx context.Context, data []byte) error {
	return b.producer.WriteMessages(ctx, kafka.Message{
		Key:   b.key,
		Value: data,
	})
}

func (b *KafkaBus) Start() {
	for {
		m, err := b.consumer.ReadMessage(context.Background())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("kafka consume failed", zap.Error(err))
			continue
		}
		b.sink(m.Value)
	}
}

func (b *KafkaBus) Close() {
	if err := b.producer.Close(); err != nil {
		zap.L().Error("kafka producer close", zap.Error(err))
	}
	if err := b.consumer.Close(); err != nil {
		zap.L().Error("kafka consumer close", zap.Error(err))
	}
}

var _ EventBus = (*KafkaBus)(nil)
