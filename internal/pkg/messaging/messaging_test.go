package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishEvent(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	res, err := PublishEvent(context.Background(), m, "seedvault.security", Event{
		ID:         "e1",
		Type:       "auth.login.failed",
		OccurredAt: at,
		Client:     "203.0.113.7",
		Data:       map[string]any{"remaining": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", res.MessageID)
	assert.Equal(t, "seedvault.security", res.Topic)

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "seedvault.security", msgs[0].Destination)
	assert.Equal(t, []byte("auth.login.failed"), msgs[0].Message.Key)
	assert.Equal(t, "auth.login.failed", msgs[0].Message.Attributes[HeaderEventType])
	require.Len(t, msgs[0].Message.Headers, 1)
	assert.Equal(t, HeaderEventType, msgs[0].Message.Headers[0].Key)

	var got Event
	require.NoError(t, json.Unmarshal(msgs[0].Message.Body, &got))
	assert.Equal(t, "auth.login.failed", got.Type)
	assert.Equal(t, "203.0.113.7", got.Client)
	assert.True(t, got.OccurredAt.Equal(at))
	assert.InDelta(t, 3, got.Data["remaining"], 0)
}

func TestMemory_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	_, err := m.Publish(ctx, "t", OutgoingMessage{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Messages())
}

func TestNewFromDriver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	p, err := NewFromDriver(ctx, "", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, Discard{}, p)

	p, err = NewFromDriver(ctx, " Memory ", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, p)

	_, err = NewFromDriver(ctx, "rabbitmq", FactoryOptions{})
	require.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(ctx, DriverKafka, FactoryOptions{})
	require.ErrorIs(t, err, ErrKafkaBrokersRequired)

	_, err = NewFromDriver(ctx, DriverNATS, FactoryOptions{})
	require.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewFromDriver(ctx, DriverNSQ, FactoryOptions{})
	require.ErrorIs(t, err, ErrNSQProducerAddrRequired)

	_, err = NewFromDriver(ctx, DriverGooglePubSub, FactoryOptions{})
	require.ErrorIs(t, err, ErrPubSubProjectIDRequired)

	p, err = NewFromDriver(ctx, DriverKafka, FactoryOptions{Kafka: KafkaConfig{Brokers: []string{"localhost:9092"}}})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestKafka_PublishValidation(t *testing.T) {
	t.Parallel()

	k, err := NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	_, err = k.Publish(context.Background(), "", OutgoingMessage{})
	require.ErrorIs(t, err, ErrKafkaTopicRequired)

	_, err = k.Publish(context.Background(), "t", OutgoingMessage{Delay: time.Second})
	require.ErrorIs(t, err, ErrUnsupported)

	require.NoError(t, k.Close())
	require.NoError(t, k.Close())
}
