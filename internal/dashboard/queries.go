// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/smsmanager/internal/cache"
	"github.com/ManuGH/smsmanager/internal/metrics"
	"github.com/ManuGH/smsmanager/internal/producer"
)

// DefaultStaleTime is how long a read is served from the cache.
const DefaultStaleTime = 5 * time.Second

// Cache keys. Invalidating a key also drops every key it prefixes.
const KeyProducers = "producers"

func KeyProducer(id string) string { return KeyProducers + "/" + id }
func KeyProgress(id string) string { return KeyProducers + "/progress/" + id }

// API is the typed backend surface the dashboard reads and mutates through.
type API interface {
	ListProducers(ctx context.Context) ([]producer.Producer, error)
	GetProducer(ctx context.Context, id string) (producer.Producer, error)
	GetProgress(ctx context.Context, id string) (producer.Progress, error)
	CreateProducer(ctx context.Context, args producer.Args) (producer.Producer, error)
	UpdateProducer(ctx context.Context, id string, args producer.Args) (producer.Producer, error)
	DeleteProducer(ctx context.Context, id string) (string, error)
	GenerateMessages(ctx context.Context, id string) (int, error)
	ActivateProducer(ctx context.Context, id string) (string, error)
	ActivateProducerAndWait(ctx context.Context, id string) (string, error)
}

// Queries reads through the cache, collapsing concurrent loads of the same
// key, and invalidates the affected keys after each successful mutation.
type Queries struct {
	api    API
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger
}

// NewQueries wires the query layer. A nil cache disables caching.
func NewQueries(api API, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *Queries {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if ttl <= 0 {
		ttl = DefaultStaleTime
	}
	return &Queries{api: api, cache: c, ttl: ttl, logger: logger}
}

func load[T any](ctx context.Context, q *Queries, key string, fresh bool, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if !fresh {
		if raw, ok := q.cache.Get(key); ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				metrics.IncCacheLookup("hit")
				return v, nil
			}
			q.cache.Delete(key)
		}
		metrics.IncCacheLookup("miss")
	}

	v, err, _ := q.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(v); err == nil {
			q.cache.Set(key, raw, q.ttl)
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// AllProducers lists every producer.
func (q *Queries) AllProducers(ctx context.Context) ([]producer.Producer, error) {
	return load(ctx, q, KeyProducers, false, q.api.ListProducers)
}

// Producer fetches one producer. fresh bypasses the cache.
func (q *Queries) Producer(ctx context.Context, id string, fresh bool) (producer.Producer, error) {
	return load(ctx, q, KeyProducer(id), fresh, func(ctx context.Context) (producer.Producer, error) {
		return q.api.GetProducer(ctx, id)
	})
}

// Progress fetches the delivery progress of a producer. fresh bypasses the cache.
func (q *Queries) Progress(ctx context.Context, id string, fresh bool) (producer.Progress, error) {
	return load(ctx, q, KeyProgress(id), fresh, func(ctx context.Context) (producer.Progress, error) {
		return q.api.GetProgress(ctx, id)
	})
}

// Create adds a producer and invalidates every producer query.
func (q *Queries) Create(ctx context.Context, args producer.Args) (producer.Producer, error) {
	p, err := q.api.CreateProducer(ctx, args)
	if err != nil {
		return p, err
	}
	q.cache.InvalidatePrefix(KeyProducers)
	return p, nil
}

// Update edits a producer and invalidates its detail and progress.
func (q *Queries) Update(ctx context.Context, id string, args producer.Args) (producer.Producer, error) {
	p, err := q.api.UpdateProducer(ctx, id, args)
	if err != nil {
		return p, err
	}
	q.invalidateProducer(id)
	return p, nil
}

// Delete removes a producer and invalidates every producer query.
func (q *Queries) Delete(ctx context.Context, id string) (string, error) {
	msg, err := q.api.DeleteProducer(ctx, id)
	if err != nil {
		return msg, err
	}
	q.cache.InvalidatePrefix(KeyProducers)
	return msg, nil
}

// Generate creates the producer's messages.
func (q *Queries) Generate(ctx context.Context, id string) (int, error) {
	n, err := q.api.GenerateMessages(ctx, id)
	if err != nil {
		return n, err
	}
	q.invalidateProducer(id)
	return n, nil
}

// Activate sends the pending messages. With wait it returns once the backend
// processed all of them.
func (q *Queries) Activate(ctx context.Context, id string, wait bool) (string, error) {
	activate := q.api.ActivateProducer
	if wait {
		activate = q.api.ActivateProducerAndWait
	}
	msg, err := activate(ctx, id)
	if err != nil {
		return msg, err
	}
	q.invalidateProducer(id)
	return msg, nil
}

func (q *Queries) invalidateProducer(id string) {
	q.cache.InvalidatePrefix(KeyProducer(id))
	q.cache.InvalidatePrefix(KeyProgress(id))
	q.logger.Debug().Str("producer_id", id).Msg("producer queries invalidated")
}
