// SPDX-License-Identifier: MIT

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/nsqio/go-nsq"
	"github.com/rs/zerolog"
)

// NSQPublisher publishes events to a single nsqd.
type NSQPublisher struct {
	producer *nsq.Producer
}

// nsqLogger adapts zerolog to the go-nsq logger interface.
type nsqLogger struct {
	logger zerolog.Logger
}

func (l nsqLogger) Output(_ int, s string) error {
	l.logger.Debug().Str("event", "nsq.log").Msg(s)
	return nil
}

// NewNSQPublisher connects to nsqd at addr and verifies it is reachable.
func NewNSQPublisher(addr string, logger zerolog.Logger) (*NSQPublisher, error) {
	if addr == "" {
		return nil, errors.New("events: nsqd address is required")
	}
	producer, err := nsq.NewProducer(addr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("events: create nsq producer: %w", err)
	}
	producer.SetLogger(nsqLogger{logger: logger}, nsq.LogLevelWarning)
	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, fmt.Errorf("events: ping nsqd %s: %w", addr, err)
	}
	return &NSQPublisher{producer: producer}, nil
}

// Publish sends body to topic. Empty bodies are dropped.
func (p *NSQPublisher) Publish(ctx context.Context, topic string, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	if topic == "" {
		return errors.New("events: no topic provided")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.producer.Publish(topic, body)
}

// Close stops the underlying producer.
func (p *NSQPublisher) Close() error {
	p.producer.Stop()
	return nil
}

// Open returns a publisher for the configured backend ("", "none" or "nsq").
func Open(backend, addr string, logger zerolog.Logger) (Publisher, error) {
	switch backend {
	case "", "none":
		return Nop{}, nil
	case "nsq":
		p, err := NewNSQPublisher(addr, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("events: unknown backend %q", backend)
	}
}
