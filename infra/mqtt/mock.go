package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Message is a payload captured by MockPublisher.
type Message struct {
	Topic    string
	Retained bool
	Payload  []byte
}

// MockPublisher records published messages. It is used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []Message
	Fail     bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishJSON records the message or fails when configured to.
func (m *MockPublisher) PublishJSON(topic string, retained bool, v any) error {
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, Message{Topic: topic, Retained: retained, Payload: payload})
	return nil
}

// Topics returns the topics published so far, in order.
func (m *MockPublisher) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Messages))
	for i, msg := range m.Messages {
		out[i] = msg.Topic
	}
	return out
}
