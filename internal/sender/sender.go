// SPDX-License-Identifier: MIT

// Package sender simulates delivering a producer's pending messages with a
// bounded pool of workers feeding a single result updater.
package sender

import (
	"context"
	"fmt"
	"runtime"
	"time"

	xglog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/metrics"
	"github.com/ManuGH/smsmanager/internal/producer"
	"github.com/ManuGH/smsmanager/internal/producer/random"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ResultBuffer is the capacity of the channel between workers and the updater.
const ResultBuffer = 100

// ResultStore persists the outcome of a single message.
type ResultStore interface {
	RecordResult(ctx context.Context, r producer.Result) error
}

// Sleeper waits d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Config tunes the pool.
type Config struct {
	// MaxWorkers caps concurrency. Zero means runtime.NumCPU().
	MaxWorkers int
	// RatePerSecond caps sends across all workers. Zero disables the cap.
	RatePerSecond float64
	Burst         int
	// TimeUnit is the real duration of one simulated second.
	TimeUnit time.Duration
}

// Pool implements producer.Dispatcher.
type Pool struct {
	store   ResultStore
	rand    *random.Rand
	sleep   Sleeper
	limiter *rate.Limiter
	unit    time.Duration
	max     int
	logger  zerolog.Logger
}

// Option customises a Pool.
type Option func(*Pool)

// WithSleeper replaces the context-aware timer sleep.
func WithSleeper(s Sleeper) Option {
	return func(p *Pool) { p.sleep = s }
}

// WithRand sets the random source for delays and failures.
func WithRand(r *random.Rand) Option {
	return func(p *Pool) { p.rand = r }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// New builds a Pool writing results to store.
func New(store ResultStore, cfg Config, opts ...Option) *Pool {
	p := &Pool{
		store:  store,
		sleep:  Sleep,
		unit:   cfg.TimeUnit,
		max:    cfg.MaxWorkers,
		logger: xglog.WithComponent("sender"),
	}
	if p.unit <= 0 {
		p.unit = time.Second
	}
	if p.max <= 0 {
		p.max = runtime.NumCPU()
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rand == nil {
		p.rand = random.NewTimeSeeded()
	}
	return p
}

// Workers clamps the requested sender count to [1, max]. A nil request uses max.
func Workers(requested *int, max int) int {
	if max < 1 {
		max = 1
	}
	if requested == nil {
		return max
	}
	n := *requested
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

// Dispatch sends pending and blocks until every message was processed and its
// result persisted, or ctx is cancelled.
func (p *Pool) Dispatch(ctx context.Context, prod producer.Producer, pending []producer.Message) error {
	workers := Workers(prod.NumSenders, p.max)
	logger := p.logger.With().
		Str(xglog.FieldProducerID, prod.ID).
		Int(xglog.FieldSenders, workers).
		Int(xglog.FieldPending, len(pending)).
		Logger()
	logger.Debug().Str(xglog.FieldEvent, "sender.started").Msg("dispatching messages")

	queue := make(chan producer.Message, len(pending))
	for _, m := range pending {
		queue <- m
	}
	close(queue)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan producer.Result, ResultBuffer)
	updated := make(chan error, 1)
	go func() {
		updated <- p.update(runCtx, cancel, results, logger)
	}()

	g, gctx := errgroup.WithContext(runCtx)
	for i := 0; i < workers; i++ {
		worker := i
		g.Go(func() error {
			metrics.AddActiveSenders(1)
			defer metrics.AddActiveSenders(-1)
			return p.work(gctx, worker, prod, queue, results)
		})
	}
	werr := g.Wait()
	close(results)
	uerr := <-updated

	if uerr != nil {
		return uerr
	}
	return werr
}

func (p *Pool) work(ctx context.Context, worker int, prod producer.Producer, queue <-chan producer.Message, results chan<- producer.Result) error {
	for {
		var msg producer.Message
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-queue:
			if !ok {
				return nil
			}
			msg = m
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		wait := p.rand.WaitTime(prod.AverageSendDelay)
		if err := p.sleep(ctx, time.Duration(wait)*p.unit); err != nil {
			return err
		}
		res := producer.Result{
			MessageID: msg.ID,
			Failed:    p.rand.Chance(prod.FailureRate),
			TimeTook:  wait,
		}

		select {
		case results <- res:
		case <-ctx.Done():
			return ctx.Err()
		}
		p.logger.Trace().
			Int("worker", worker).
			Str(xglog.FieldMessageID, msg.ID).
			Bool(xglog.FieldFailed, res.Failed).
			Msg("message processed")
	}
}

// update is the single consumer of results. A store failure cancels the
// workers but results already received keep being drained.
func (p *Pool) update(ctx context.Context, cancel context.CancelFunc, results <-chan producer.Result, logger zerolog.Logger) error {
	writeCtx := context.WithoutCancel(ctx)
	var firstErr error
	for res := range results {
		metrics.SetResultQueueDepth(len(results))
		if firstErr != nil {
			continue
		}
		if err := p.store.RecordResult(writeCtx, res); err != nil {
			firstErr = fmt.Errorf("record result %s: %w", res.MessageID, err)
			cancel()
			logger.Error().Err(err).
				Str(xglog.FieldMessageID, res.MessageID).
				Str(xglog.FieldEvent, "sender.persist_failed").
				Msg("could not persist message result")
			continue
		}
		metrics.RecordMessageResult(res.Failed, res.TimeTook)
	}
	metrics.SetResultQueueDepth(0)
	return firstErr
}

// Sleep waits d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
