package kafka

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	publishedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope Envelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.ID != "outbox-1" || envelope.AggregateID != "order-123" {
			return errors.New("unexpected envelope ids")
		}
		if envelope.EventType != domain.EventTypeOrderCreated {
			return errors.New("unexpected event type " + envelope.EventType)
		}
		if string(envelope.Payload) != `{"order_id":"order-123"}` {
			return errors.New("payload not passed through: " + string(envelope.Payload))
		}
		if !envelope.PublishedAt.Equal(publishedAt) {
			return errors.New("unexpected published_at")
		}
		return nil
	})

	producer := newProducer(mockProducer, log.WithField("component", "kafka-outbox-publisher-test"))
	publisher := NewOutboxPublisher(producer, TopicOrderEvents)
	publisher.now = func() time.Time { return publishedAt }

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-123",
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{"order_id":"order-123"}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_KeyFallsBackToOutboxID(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "outbox-9" {
			return errors.New("unexpected key " + string(key))
		}
		if msg.Topic != TopicOrderEvents {
			return errors.New("expected default topic, got " + msg.Topic)
		}
		return nil
	})

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil), "")
	if err := publisher.Publish(domain.OutboxMessage{ID: "outbox-9", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil), TopicOrderEvents)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-234",
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{}`),
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_NilProducer(t *testing.T) {
	t.Parallel()

	var publisher *OutboxTopicPublisher
	if err := publisher.Publish(domain.OutboxMessage{}); !errors.Is(err, errPublisherNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}
