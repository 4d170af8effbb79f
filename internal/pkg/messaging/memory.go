package messaging

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Published is a message recorded by Memory.
type Published struct {
	Destination string
	Message     OutgoingMessage
}

// Memory records published messages in process. It backs the "memory"
// driver and tests.
type Memory struct {
	mu       sync.Mutex
	messages []Published
}

// NewMemory returns an empty recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records msg.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	m.mu.Lock()
	m.messages = append(m.messages, Published{Destination: destination, Message: msg})
	id := len(m.messages)
	m.mu.Unlock()

	return PublishResult{
		MessageID: strconv.Itoa(id),
		Topic:     destination,
		Timestamp: time.Now(),
	}, nil
}

// Messages returns a snapshot of everything published so far.
func (m *Memory) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Discard drops every message. It backs the "none" driver.
type Discard struct{}

// Publish accepts and drops msg.
func (Discard) Publish(_ context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	return PublishResult{Topic: destination}, nil
}

// Close is a no-op.
func (Discard) Close() error {
	return nil
}
