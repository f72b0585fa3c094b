// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	smslog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/metrics"
	"github.com/ManuGH/smsmanager/internal/producer"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
	liveReadLimit  = 1024
)

// Frame types exchanged over the live socket.
const (
	frameUpdate = "update"
	frameError  = "error"
	frameRate   = "rate"
)

type liveFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type updatePayload struct {
	Heading string `json:"heading"`
	Charts  string `json:"charts"`
}

type ratePayload struct {
	Seconds float64 `json:"seconds"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func interval(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// handleLive upgrades to a websocket and pushes the producer heading and
// charts every refresh interval until the client goes away. A "rate" frame
// from the client restarts the interval.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rate := refreshRate(r, s.DefaultRefreshRate())
	tag := requestLanguage(r)
	logger := smslog.WithContext(r.Context(), s.logger).With().Str("producer_id", id).Logger()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("live upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.AddLiveSessions(1)
	defer metrics.AddLiveSessions(-1)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	l := &liveSession{server: s, conn: conn, id: id, tag: tag, logger: logger}
	rates := make(chan float64, 1)
	go l.read(cancel, rates)

	logger.Debug().Float64("refresh_rate", rate).Msg("live session started")
	l.run(ctx, rate, rates)
	logger.Debug().Msg("live session ended")
}

type liveSession struct {
	server *Server
	conn   *websocket.Conn
	id     string
	tag    language.Tag
	logger zerolog.Logger
}

func (l *liveSession) run(ctx context.Context, rate float64, rates <-chan float64) {
	ticker := time.NewTicker(interval(rate))
	defer ticker.Stop()
	ping := time.NewTicker(livePingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(liveWriteWait)
			_ = l.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case v := <-rates:
			rate = v
			ticker.Reset(interval(rate))
			l.logger.Debug().Float64("refresh_rate", rate).Msg("live refresh rate changed")
		case <-ticker.C:
			if !l.push(ctx, rate) {
				return
			}
		case <-ping.C:
			if err := l.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		}
	}
}

// push refetches both reads, bypassing the cache, and sends the rendered
// fragments. It reports false once the session should end.
func (l *liveSession) push(ctx context.Context, rate float64) bool {
	var (
		p        producer.Producer
		progress producer.Progress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = l.server.queries.Producer(gctx, l.id, true)
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = l.server.queries.Progress(gctx, l.id, true)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return false
		}
		l.logger.Warn().Err(err).Msg("live refresh failed")
		_ = l.send(frameError, errorPayload{Message: err.Error()})
		return false
	}

	view := newProducerView(p, progress, l.tag, rate)
	heading, err := renderString(ctx, producerHeading(view))
	if err != nil {
		l.logger.Error().Err(err).Msg("live render failed")
		return false
	}
	body, err := renderString(ctx, producerCharts(view))
	if err != nil {
		l.logger.Error().Err(err).Msg("live render failed")
		return false
	}
	return l.send(frameUpdate, updatePayload{Heading: heading, Charts: body}) == nil
}

func (l *liveSession) send(kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_ = l.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return l.conn.WriteJSON(liveFrame{Type: kind, Payload: raw})
}

// read consumes client frames until the connection fails, then cancels the
// session. Only the latest requested rate is kept.
func (l *liveSession) read(cancel context.CancelFunc, rates chan float64) {
	defer cancel()

	l.conn.SetReadLimit(liveReadLimit)
	_ = l.conn.SetReadDeadline(time.Now().Add(livePongWait))
	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		_, raw, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.logger.Debug().Err(err).Msg("live read failed")
			}
			return
		}
		var f liveFrame
		if err := json.Unmarshal(raw, &f); err != nil || f.Type != frameRate {
			continue
		}
		var p ratePayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			continue
		}
		v, ok := parseRefreshRate(formatRate(p.Seconds))
		if !ok {
			continue
		}
		select {
		case <-rates:
		default:
		}
		rates <- v
	}
}
