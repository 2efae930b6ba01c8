package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/rovora/search-service/internal/config"
	"github.com/rovora/search-service/pkg/log"
)

// ConfluentConsumer implements CatalogChangeConsumer using confluent-kafka-go.
type ConfluentConsumer struct {
	consumer *kafka.Consumer
	topic    string
	handler  CatalogChangeHandler
	doneCh   chan struct{}
	started  bool
}

// NewConfluentConsumer creates a new Kafka consumer for catalog change events.
func NewConfluentConsumer(cfg config.KafkaConfig, handler CatalogChangeHandler) (*ConfluentConsumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(cfg.Brokers, ","),
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "latest",
		"enable.auto.commit": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &ConfluentConsumer{
		consumer: c,
		topic:    cfg.Topic,
		handler:  handler,
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins consuming messages from Kafka.
func (cc *ConfluentConsumer) Start(ctx context.Context) error {
	if err := cc.consumer.Subscribe(cc.topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", cc.topic, err)
	}
	cc.started = true

	l := log.L()
	l.Info().Str(log.FieldTopic, cc.topic).Msg("catalog change consumer started")

	go cc.consumeLoop(ctx)

	return nil
}

func (cc *ConfluentConsumer) consumeLoop(ctx context.Context) {
	l := log.L()
	defer close(cc.doneCh)

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("catalog change consumer shutting down")
			return
		default:
			msg, err := cc.consumer.ReadMessage(100 * time.Millisecond)
			if err != nil {
				var kerr kafka.Error
				if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				l.Error().Err(err).Msg("catalog change consumer error")
				continue
			}

			processMessage(ctx, cc.handler, msg.Value)
		}
	}
}

// processMessage decodes and dispatches one payload. Malformed payloads
// are logged and skipped.
func processMessage(ctx context.Context, handler CatalogChangeHandler, value []byte) {
	l := log.L()

	event, err := decodeEvent(value)
	if err != nil {
		l.Warn().Err(err).Msg("skipping catalog change event")
		return
	}

	if err := handler.HandleCatalogChange(ctx, event); err != nil {
		l.Error().Err(err).Str("entity", event.Entity).Msg("failed to handle catalog change event")
	}
}

// Close releases the consumer. The context passed to Start must be
// cancelled first so the poll loop can exit.
func (cc *ConfluentConsumer) Close() error {
	if cc.started {
		<-cc.doneCh
	}
	if err := cc.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	return nil
}
