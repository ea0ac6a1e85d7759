package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/events"
	"github.com/Astemirdum/catalogue-service/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "catalogue.events" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "b1" {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var e events.Event
		if err = json.Unmarshal(value, &e); err != nil {
			return err
		}
		if e.Type != events.ReviewCreated || e.ReviewID != "r1" {
			return errors.New("unexpected event")
		}
		return nil
	})

	cb := circuit_breaker.New(circuit_breaker.Config{RecordLength: 4, Timeout: time.Minute, Percentile: 0.5, RecoveryRequests: 1})
	pub := events.NewKafkaPublisher(producer, "catalogue.events", cb)
	require.NoError(t, pub.Publish(context.Background(), events.NewEvent(events.ReviewCreated, "b1", "r1")))
}

func TestKafkaPublisher_OpensBreaker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	cb := circuit_breaker.New(circuit_breaker.Config{RecordLength: 2, Timeout: time.Minute, Percentile: 0.5, RecoveryRequests: 1})
	pub := events.NewKafkaPublisher(producer, "catalogue.events", cb)

	ctx := context.Background()
	err := pub.Publish(ctx, events.NewEvent(events.BookDeleted, "b1", ""))
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.Equal(t, circuit_breaker.Open, cb.State())

	// the second expectation is never reached while the breaker is open
	err = pub.Publish(ctx, events.NewEvent(events.BookDeleted, "b1", ""))
	require.ErrorIs(t, err, circuit_breaker.ErrOpenCB)

	cb.Reset()
	err = pub.Publish(ctx, events.NewEvent(events.BookDeleted, "b1", ""))
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestNoop(t *testing.T) {
	require.NoError(t, events.NewNoop().Publish(context.Background(), events.NewEvent(events.BookCreated, "b1", "")))
}
