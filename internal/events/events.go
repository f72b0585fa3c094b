// SPDX-License-Identifier: MIT

// Package events publishes producer lifecycle events to a message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TopicStatus carries producer status transitions.
const TopicStatus = "producer.status"

// StatusChange is published whenever a producer changes status.
type StatusChange struct {
	ProducerID string    `json:"producer_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	At         time.Time `json:"at"`
}

// Publisher sends encoded events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, body []byte) error
	Close() error
}

// PublishStatus encodes and publishes a status transition.
func PublishStatus(ctx context.Context, p Publisher, ev StatusChange) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}
	return p.Publish(ctx, TopicStatus, body)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }
func (Nop) Close() error                                  { return nil }

// Memory keeps published events in memory, grouped by topic.
type Memory struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

// NewMemory returns an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{sent: make(map[string][][]byte)}
}

func (m *Memory) Publish(_ context.Context, topic string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(body))
	copy(cp, body)
	m.sent[topic] = append(m.sent[topic], cp)
	return nil
}

func (m *Memory) Close() error { return nil }

// Statuses decodes every status event published so far.
func (m *Memory) Statuses() []StatusChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StatusChange, 0, len(m.sent[TopicStatus]))
	for _, b := range m.sent[TopicStatus] {
		var ev StatusChange
		if err := json.Unmarshal(b, &ev); err == nil {
			out = append(out, ev)
		}
	}
	return out
}
