// SPDX-License-Identifier: MIT

package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/smsmanager/internal/events"
	xglog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/metrics"
	"github.com/ManuGH/smsmanager/internal/producer/random"
	"github.com/rs/zerolog"
)

// Messages returned by Activate and Delete.
const (
	MsgAllProcessed   = "All items processed."
	MsgSendingStarted = "Sending started"
	MsgDeleted        = "Producer deleted."
)

// statusTimeout bounds the final status write after a send run, which may
// happen after the run's own context is gone.
const statusTimeout = 5 * time.Second

// Options wires a Service.
type Options struct {
	Store      Store
	Dispatcher Dispatcher
	Events     events.Publisher
	Rand       *random.Rand
	Logger     *zerolog.Logger
	Now        func() time.Time
}

// Service orchestrates producer CRUD, message generation and activation.
type Service struct {
	store      Store
	dispatcher Dispatcher
	events     events.Publisher
	rand       *random.Rand
	logger     zerolog.Logger
	now        func() time.Time

	mu     sync.Mutex
	active map[string]*activation
	closed bool
	wg     sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

// activation is one in-flight send run. err is set before done is closed.
type activation struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewService builds a Service. Store and Dispatcher are required.
func NewService(opts Options) *Service {
	logger := xglog.WithComponent("producer")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	pub := opts.Events
	if pub == nil {
		pub = events.Nop{}
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = random.NewTimeSeeded()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		events:     pub,
		rand:       rnd,
		logger:     logger,
		now:        now,
		active:     make(map[string]*activation),
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

// Create stores a new INACTIVE producer.
func (s *Service) Create(ctx context.Context, args Args) (Producer, error) {
	if err := args.Validate(); err != nil {
		return Producer{}, err
	}
	p := Producer{
		ID:        NewID(),
		Status:    StatusInactive,
		CreatedAt: s.now().UTC(),
	}
	p.apply(args)
	if err := s.store.CreateProducer(ctx, p); err != nil {
		return Producer{}, fmt.Errorf("create producer: %w", err)
	}
	metrics.IncProducerCreated()
	logger := xglog.WithContext(ctx, s.logger)
	logger.Info().
		Str(xglog.FieldEvent, "producer.created").
		Str(xglog.FieldProducerID, p.ID).
		Str("name", p.Name).
		Msg("producer created")
	return p, nil
}

// Update replaces the editable fields of a producer. The status is kept.
func (s *Service) Update(ctx context.Context, rawID string, args Args) (Producer, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return Producer{}, err
	}
	if err := args.Validate(); err != nil {
		return Producer{}, err
	}
	p, err := s.store.GetProducer(ctx, id)
	if err != nil {
		return Producer{}, err
	}
	p.apply(args)
	if err := s.store.UpdateProducer(ctx, p); err != nil {
		return Producer{}, fmt.Errorf("update producer: %w", err)
	}
	logger := xglog.WithContext(ctx, s.logger)
	logger.Info().
		Str(xglog.FieldEvent, "producer.updated").
		Str(xglog.FieldProducerID, p.ID).
		Msg("producer updated")
	return p, nil
}

// List returns all producers ordered by creation time.
func (s *Service) List(ctx context.Context) ([]Producer, error) {
	return s.store.ListProducers(ctx)
}

// Get returns a single producer.
func (s *Service) Get(ctx context.Context, rawID string) (Producer, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return Producer{}, err
	}
	return s.store.GetProducer(ctx, id)
}

// Delete removes a producer and its messages. It refuses while sending.
func (s *Service) Delete(ctx context.Context, rawID string) (string, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return "", err
	}
	p, err := s.store.GetProducer(ctx, id)
	if err != nil {
		return "", err
	}
	if p.Status == StatusSending || s.isActive(id) {
		return "", ErrAlreadySending
	}
	if err := s.store.DeleteProducer(ctx, id); err != nil {
		return "", fmt.Errorf("delete producer: %w", err)
	}
	metrics.IncProducerDeleted()
	logger := xglog.WithContext(ctx, s.logger)
	logger.Info().
		Str(xglog.FieldEvent, "producer.deleted").
		Str(xglog.FieldProducerID, id).
		Msg("producer deleted")
	return MsgDeleted, nil
}

// Generate appends NumberMessages random messages to the producer and returns
// how many were created.
func (s *Service) Generate(ctx context.Context, rawID string) (int, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return 0, err
	}
	p, err := s.store.GetProducer(ctx, id)
	if err != nil {
		return 0, err
	}
	if p.Status == StatusSending || s.isActive(id) {
		return 0, ErrAlreadySending
	}

	start := s.now()
	msgs := make([]Message, 0, p.NumberMessages)
	for i := 0; i < p.NumberMessages; i++ {
		msgs = append(msgs, Message{
			ID:         NewID(),
			ProducerID: p.ID,
			Body:       s.rand.Body(),
		})
	}

	previous := p.Status
	if err := s.transition(ctx, p.ID, previous, StatusGenerating); err != nil {
		return 0, err
	}
	if err := s.store.InsertMessages(ctx, msgs); err != nil {
		_ = s.transition(context.WithoutCancel(ctx), p.ID, StatusGenerating, previous)
		return 0, fmt.Errorf("insert messages: %w", err)
	}
	if err := s.transition(ctx, p.ID, StatusGenerating, StatusGenerated); err != nil {
		return 0, err
	}

	metrics.RecordGeneration(len(msgs), s.now().Sub(start))
	logger := xglog.WithContext(ctx, s.logger)
	logger.Info().
		Str(xglog.FieldEvent, "producer.generated").
		Str(xglog.FieldProducerID, p.ID).
		Int("count", len(msgs)).
		Msg("messages generated")
	return p.NumberMessages, nil
}

// Activate sends every unsent message of the producer. The run never depends
// on ctx: with wait set Activate blocks until the run finishes and returns
// MsgAllProcessed, and a caller that goes away leaves the run going. Without
// wait MsgSendingStarted is returned immediately.
func (s *Service) Activate(ctx context.Context, rawID string, wait bool) (string, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return "", err
	}
	p, err := s.store.GetProducer(ctx, id)
	if err != nil {
		return "", err
	}
	if p.Status == StatusSending {
		metrics.IncActivation("conflict")
		return "", ErrAlreadySending
	}

	runCtx, cancel := context.WithCancel(s.baseCtx)
	act, err := s.reserve(id, cancel)
	if err != nil {
		cancel()
		if errors.Is(err, ErrAlreadySending) {
			metrics.IncActivation("conflict")
		}
		return "", err
	}

	pending, err := s.store.ListUnsent(ctx, id)
	if err != nil {
		s.release(id)
		return "", fmt.Errorf("list unsent messages: %w", err)
	}
	if err := s.transition(ctx, id, p.Status, StatusSending); err != nil {
		s.release(id)
		return "", err
	}
	p.Status = StatusSending

	logger := xglog.WithContext(ctx, s.logger).With().Str(xglog.FieldProducerID, id).Logger()
	logger.Info().
		Str(xglog.FieldEvent, "producer.activated").
		Int(xglog.FieldPending, len(pending)).
		Bool("wait", wait).
		Msg("sending started")

	go func() {
		act.err = s.run(runCtx, p, pending, logger)
		s.release(id)
	}()

	if !wait {
		return MsgSendingStarted, nil
	}
	select {
	case <-act.done:
		if act.err != nil {
			if errors.Is(act.err, context.Canceled) && s.baseCtx.Err() != nil {
				return "", ErrShuttingDown
			}
			return "", act.err
		}
		return MsgAllProcessed, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) run(ctx context.Context, p Producer, pending []Message, logger zerolog.Logger) error {
	start := s.now()
	err := s.dispatcher.Dispatch(ctx, p, pending)

	final := StatusEmpty
	result := "completed"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		final = StatusGenerated
		result = "cancelled"
	default:
		final = StatusGenerated
		result = "failed"
	}
	metrics.IncActivation(result)

	statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusTimeout)
	defer cancel()
	if serr := s.transition(statusCtx, p.ID, StatusSending, final); serr != nil {
		logger.Error().Err(serr).Str(xglog.FieldEvent, "producer.status_failed").Msg("could not store final status")
		if err == nil {
			err = serr
		}
	}

	ev := logger.Info()
	if err != nil {
		ev = logger.Warn().Err(err)
	}
	ev.Str(xglog.FieldEvent, "sender.completed").
		Str("result", result).
		Dur(xglog.FieldDuration, s.now().Sub(start)).
		Msg("sending finished")
	return err
}

// Progress aggregates the delivery state of a producer's messages.
func (s *Service) Progress(ctx context.Context, rawID string) (Progress, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return Progress{}, err
	}
	if _, err := s.store.GetProducer(ctx, id); err != nil {
		return Progress{}, err
	}
	msgs, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return Progress{}, fmt.Errorf("list messages: %w", err)
	}
	return ComputeProgress(msgs), nil
}

// Messages lists every message of a producer.
func (s *Service) Messages(ctx context.Context, rawID string) ([]Message, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetProducer(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, id)
}

// Sending reports whether an activation is in flight for the producer.
func (s *Service) Sending(id string) bool {
	return s.isActive(id)
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Shutdown cancels send runs and waits for them to store their final status,
// or until ctx expires.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) transition(ctx context.Context, id string, from, to Status) error {
	if err := s.store.SetStatus(ctx, id, to); err != nil {
		return fmt.Errorf("set status %s: %w", to, err)
	}
	metrics.RecordStatusTransition(string(to))
	ev := events.StatusChange{
		ProducerID: id,
		OldStatus:  string(from),
		NewStatus:  string(to),
		At:         s.now().UTC(),
	}
	if err := events.PublishStatus(ctx, s.events, ev); err != nil {
		s.logger.Warn().Err(err).
			Str(xglog.FieldProducerID, id).
			Str(xglog.FieldNewStatus, string(to)).
			Msg("status event not published")
	}
	return nil
}

// reserve registers a run for id. The WaitGroup is incremented under mu so
// Shutdown either sees the run or refuses it.
func (s *Service) reserve(id string, cancel context.CancelFunc) (*activation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrShuttingDown
	}
	if _, ok := s.active[id]; ok {
		return nil, ErrAlreadySending
	}
	act := &activation{cancel: cancel, done: make(chan struct{})}
	s.active[id] = act
	s.wg.Add(1)
	return act, nil
}

func (s *Service) release(id string) {
	s.mu.Lock()
	act, ok := s.active[id]
	delete(s.active, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	act.cancel()
	close(act.done)
	s.wg.Done()
}

func (s *Service) isActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[id]
	return ok
}
