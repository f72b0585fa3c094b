// SPDX-License-Identifier: MIT

// Package memory is an in-process producer store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ManuGH/smsmanager/internal/producer"
)

// Store keeps producers and messages in maps guarded by a single lock.
type Store struct {
	mu        sync.RWMutex
	producers map[string]producer.Producer
	// messages keeps insertion order per producer.
	messages map[string][]producer.Message
	index    map[string]msgRef
}

type msgRef struct {
	producerID string
	pos        int
}

var _ producer.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		producers: make(map[string]producer.Producer),
		messages:  make(map[string][]producer.Message),
		index:     make(map[string]msgRef),
	}
}

func (s *Store) CreateProducer(_ context.Context, p producer.Producer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.producers[p.ID] = cloneProducer(p)
	return nil
}

func (s *Store) UpdateProducer(_ context.Context, p producer.Producer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.producers[p.ID]
	if !ok {
		return producer.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	s.producers[p.ID] = cloneProducer(p)
	return nil
}

func (s *Store) GetProducer(_ context.Context, id string) (producer.Producer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.producers[id]
	if !ok {
		return producer.Producer{}, producer.ErrNotFound
	}
	return cloneProducer(p), nil
}

func (s *Store) ListProducers(_ context.Context) ([]producer.Producer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]producer.Producer, 0, len(s.producers))
	for _, p := range s.producers {
		out = append(out, cloneProducer(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteProducer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.producers[id]; !ok {
		return producer.ErrNotFound
	}
	for _, m := range s.messages[id] {
		delete(s.index, m.ID)
	}
	delete(s.messages, id)
	delete(s.producers, id)
	return nil
}

func (s *Store) SetStatus(_ context.Context, id string, status producer.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.producers[id]
	if !ok {
		return producer.ErrNotFound
	}
	p.Status = status
	s.producers[id] = p
	return nil
}

func (s *Store) InsertMessages(_ context.Context, msgs []producer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		if _, ok := s.producers[m.ProducerID]; !ok {
			return producer.ErrNotFound
		}
	}
	for _, m := range msgs {
		s.index[m.ID] = msgRef{producerID: m.ProducerID, pos: len(s.messages[m.ProducerID])}
		s.messages[m.ProducerID] = append(s.messages[m.ProducerID], cloneMessage(m))
	}
	return nil
}

func (s *Store) ListMessages(_ context.Context, producerID string) ([]producer.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.messages[producerID]
	out := make([]producer.Message, 0, len(src))
	for _, m := range src {
		out = append(out, cloneMessage(m))
	}
	return out, nil
}

func (s *Store) ListUnsent(_ context.Context, producerID string) ([]producer.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []producer.Message
	for _, m := range s.messages[producerID] {
		if !m.Sent {
			out = append(out, cloneMessage(m))
		}
	}
	return out, nil
}

func (s *Store) RecordResult(_ context.Context, r producer.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.index[r.MessageID]
	if !ok {
		return producer.ErrNotFound
	}
	m := &s.messages[ref.producerID][ref.pos]
	m.Sent = true
	m.Failed = r.Failed
	m.TimeTook = producer.IntPtr(r.TimeTook)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func cloneProducer(p producer.Producer) producer.Producer {
	if p.NumSenders != nil {
		p.NumSenders = producer.IntPtr(*p.NumSenders)
	}
	return p
}

func cloneMessage(m producer.Message) producer.Message {
	if m.TimeTook != nil {
		m.TimeTook = producer.IntPtr(*m.TimeTook)
	}
	return m
}
