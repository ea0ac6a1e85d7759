package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Astemirdum/catalogue-service/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

type Type string

const (
	BookCreated   Type = "book.created"
	BookUpdated   Type = "book.updated"
	BookDeleted   Type = "book.deleted"
	ReviewCreated Type = "review.created"
	ReviewUpdated Type = "review.updated"
	ReviewDeleted Type = "review.deleted"
)

// Event announces a change of the catalogue. Consumers fetch the current state
// through the HTTP API.
type Event struct {
	Type      Type      `json:"type"`
	BookID    string    `json:"bookId"`
	ReviewID  string    `json:"reviewId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(t Type, bookID, reviewID string) Event {
	return Event{
		Type:      t,
		BookID:    bookID,
		ReviewID:  reviewID,
		Timestamp: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type noop struct{}

// NewNoop returns a Publisher that drops every event.
func NewNoop() Publisher {
	return noop{}
}

func (noop) Publish(context.Context, Event) error { return nil }

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
}

// NewKafkaPublisher sends events keyed by book id, so the events of one book
// land on one partition in order.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, cb circuit_breaker.CircuitBreaker) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		cb:       cb,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.BookID),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return errors.Wrapf(err, "send %s", e.Type)
	})
}
