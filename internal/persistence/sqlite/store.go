// SPDX-License-Identifier: MIT

package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/smsmanager/internal/producer"
)

const schemaVersion = 1

//go:embed schema.sql
var schema string

// Store implements producer.Store on SQLite.
type Store struct {
	DB *sql.DB
}

var _ producer.Store = (*Store)(nil)

// NewStore opens dbPath and applies the schema.
func NewStore(dbPath string) (*Store, error) {
	db, err := Open(dbPath, DefaultConfig())
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("producer store: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	var currentVersion int
	if err := s.DB.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

const producerColumns = `id, name, number_messages, average_send_delay, failure_rate, num_senders, status, created_at_ms`

func (s *Store) CreateProducer(ctx context.Context, p producer.Producer) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO producers (`+producerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.NumberMessages, p.AverageSendDelay, p.FailureRate,
		nullInt(p.NumSenders), string(p.Status), p.CreatedAt.UnixMilli(),
	)
	return err
}

func (s *Store) UpdateProducer(ctx context.Context, p producer.Producer) error {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE producers SET
		name = ?, number_messages = ?, average_send_delay = ?, failure_rate = ?, num_senders = ?, status = ?
	WHERE id = ?`,
		p.Name, p.NumberMessages, p.AverageSendDelay, p.FailureRate, nullInt(p.NumSenders), string(p.Status), p.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *Store) GetProducer(ctx context.Context, id string) (producer.Producer, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+producerColumns+` FROM producers WHERE id = ?`, id)
	p, err := scanProducer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return producer.Producer{}, producer.ErrNotFound
	}
	return p, err
}

func (s *Store) ListProducers(ctx context.Context) ([]producer.Producer, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+producerColumns+` FROM producers ORDER BY created_at_ms, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]producer.Producer, 0)
	for rows.Next() {
		p, err := scanProducer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteProducer(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM producers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *Store) SetStatus(ctx context.Context, id string, status producer.Status) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE producers SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// InsertMessages writes the whole batch in one transaction.
func (s *Store) InsertMessages(ctx context.Context, msgs []producer.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (id, produced_by, message_body, sent, failed, time_took) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx, m.ID, m.ProducerID, m.Body, m.Sent, m.Failed, nullInt(m.TimeTook)); err != nil {
			return fmt.Errorf("insert message %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListMessages(ctx context.Context, producerID string) ([]producer.Message, error) {
	return s.queryMessages(ctx,
		`SELECT id, produced_by, message_body, sent, failed, time_took FROM messages WHERE produced_by = ? ORDER BY seq`,
		producerID)
}

func (s *Store) ListUnsent(ctx context.Context, producerID string) ([]producer.Message, error) {
	return s.queryMessages(ctx,
		`SELECT id, produced_by, message_body, sent, failed, time_took FROM messages WHERE produced_by = ? AND sent = 0 ORDER BY seq`,
		producerID)
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]producer.Message, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]producer.Message, 0)
	for rows.Next() {
		var (
			m        producer.Message
			timeTook sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.ProducerID, &m.Body, &m.Sent, &m.Failed, &timeTook); err != nil {
			return nil, err
		}
		if timeTook.Valid {
			m.TimeTook = producer.IntPtr(int(timeTook.Int64))
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) RecordResult(ctx context.Context, r producer.Result) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE messages SET sent = 1, failed = ?, time_took = ? WHERE id = ?`,
		r.Failed, r.TimeTook, r.MessageID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProducer(row scanner) (producer.Producer, error) {
	var (
		p          producer.Producer
		numSenders sql.NullInt64
		status     string
		createdMS  int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.NumberMessages, &p.AverageSendDelay, &p.FailureRate,
		&numSenders, &status, &createdMS); err != nil {
		return producer.Producer{}, err
	}
	if numSenders.Valid {
		p.NumSenders = producer.IntPtr(int(numSenders.Int64))
	}
	p.Status = producer.Status(status)
	p.CreatedAt = time.UnixMilli(createdMS).UTC()
	return p, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return producer.ErrNotFound
	}
	return nil
}
