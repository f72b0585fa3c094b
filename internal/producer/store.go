// SPDX-License-Identifier: MIT

package producer

import "context"

// Store persists producers and their messages. Implementations must be safe
// for concurrent use and return ErrNotFound for unknown producers.
type Store interface {
	CreateProducer(ctx context.Context, p Producer) error
	UpdateProducer(ctx context.Context, p Producer) error
	GetProducer(ctx context.Context, id string) (Producer, error)
	ListProducers(ctx context.Context) ([]Producer, error)
	// DeleteProducer removes the producer and all of its messages.
	DeleteProducer(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status Status) error

	// InsertMessages stores a batch atomically.
	InsertMessages(ctx context.Context, msgs []Message) error
	ListMessages(ctx context.Context, producerID string) ([]Message, error)
	ListUnsent(ctx context.Context, producerID string) ([]Message, error)
	RecordResult(ctx context.Context, r Result) error

	Ping(ctx context.Context) error
	Close() error
}

// Dispatcher delivers pending messages for a producer and blocks until every
// message has been processed or ctx is cancelled.
type Dispatcher interface {
	Dispatch(ctx context.Context, p Producer, pending []Message) error
}
