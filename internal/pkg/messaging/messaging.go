package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when a feature is not supported by the selected broker.
//
// For example, not all brokers support delayed delivery.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	io.Closer

	// Publish sends a message to the destination.
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte

	// Key is used by Kafka for partitioning.
	Key []byte

	// Headers support arbitrary binary values and duplicate keys.
	Headers []Header

	// Attributes is a convenience for brokers that model string attributes (e.g. Pub/Sub).
	Attributes map[string]string

	// OrderingKey is used by Google Pub/Sub.
	OrderingKey string

	// Delay is used for deferred delivery (when supported).
	Delay time.Duration
}

// Header is a key/value pair used for message headers.
type Header struct {
	// Key is the header name.
	Key string
	// Value is the header value.
	Value []byte
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	// MessageID is the broker-assigned message ID.
	MessageID string
	// Topic is the destination used for publishing.
	Topic string
	// Timestamp is when the broker accepted the message.
	Timestamp time.Time
}

// Event is the JSON document published for every security event.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Client     string         `json:"client,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// HeaderEventType carries Event.Type so consumers can route without decoding.
const HeaderEventType = "event-type"

// PublishEvent encodes e as JSON and publishes it to topic. The event type is
// copied into a header, a Pub/Sub attribute and the Kafka key. Extra headers
// are sent after the event type header.
func PublishEvent(ctx context.Context, p Publisher, topic string, e Event, extra ...Header) (PublishResult, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return PublishResult{}, err
	}

	return p.Publish(ctx, topic, OutgoingMessage{
		Body:       body,
		Key:        []byte(e.Type),
		Headers:    append([]Header{{Key: HeaderEventType, Value: []byte(e.Type)}}, extra...),
		Attributes: map[string]string{HeaderEventType: e.Type},
	})
}
