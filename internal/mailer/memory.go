package mailer

import (
	"context"
	"sync"
)

// Memory records messages for tests.
type Memory struct {
	mu   sync.Mutex
	sent []Message

	// FailWith, when set, is returned from Send without recording.
	FailWith error
}

// NewMemory constructs a recording mailer.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of everything delivered so far.
func (m *Memory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
