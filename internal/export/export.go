// SPDX-License-Identifier: MIT

// Package export writes point-in-time producer snapshots to disk.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/ManuGH/smsmanager/internal/charts"
	"github.com/ManuGH/smsmanager/internal/producer"
)

// Source reads the producer state a snapshot is built from.
type Source interface {
	GetProducer(ctx context.Context, id string) (producer.Producer, error)
	GetProgress(ctx context.Context, id string) (producer.Progress, error)
}

// Snapshot is the exported state of one producer.
type Snapshot struct {
	ExportedAt   time.Time         `json:"exported_at"`
	Producer     producer.Producer `json:"producer"`
	Progress     producer.Progress `json:"progress"`
	Breakdown    charts.Breakdown  `json:"breakdown"`
	Distribution []charts.Point    `json:"distribution"`
}

// Take reads producer id from src.
func Take(ctx context.Context, src Source, id string, now time.Time) (Snapshot, error) {
	p, err := src.GetProducer(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get producer: %w", err)
	}
	progress, err := src.GetProgress(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get progress: %w", err)
	}
	return Snapshot{
		ExportedAt:   now.UTC(),
		Producer:     p,
		Progress:     progress,
		Breakdown:    charts.NewBreakdown(progress.NumberMessagesCreated, progress.NumberMessagesSent, progress.NumberMessagesFailed),
		Distribution: charts.Distribution(progress.MessageTimes),
	}, nil
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteFile replaces path with s. Readers see either the previous file or the
// complete new one.
func WriteFile(path string, s Snapshot, logger zerolog.Logger) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending snapshot file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending snapshot file")
		}
	}()

	if err := Encode(pending, s); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace snapshot: %w", err)
	}
	logger.Info().
		Str("event", "producer.exported").
		Str("producer_id", s.Producer.ID).
		Str("path", path).
		Msg("snapshot written")
	return nil
}
