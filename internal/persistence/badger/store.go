// SPDX-License-Identifier: MIT

// Package badger is a key-value producer store on BadgerDB.
//
// Layout:
//   - prod:<id>              producer record (JSON)
//   - msg:<producer>:<seq>   message record (JSON), seq keeps insertion order
//   - midx:<message id>      key of the message record
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ManuGH/smsmanager/internal/producer"
	"github.com/dgraph-io/badger/v4"
)

const seqBandwidth = 1000

// Store implements producer.Store on BadgerDB.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

var _ producer.Store = (*Store)(nil)

type producerRecord struct {
	producer.Producer
	CreatedAtMS int64 `json:"created_at_ms"`
}

// Open opens or creates a store at path.
func Open(path string) (*Store, error) {
	return open(badger.DefaultOptions(path).WithLogger(nil))
}

// OpenInMemory returns a store that never touches disk.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open failed: %w", err)
	}
	seq, err := db.GetSequence([]byte("seq:msg"), seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("badger: sequence: %w", err)
	}
	return &Store{db: db, seq: seq}, nil
}

func producerKey(id string) []byte { return []byte("prod:" + id) }
func messagePrefix(producerID string) []byte {
	return []byte("msg:" + producerID + ":")
}
func messageKey(producerID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d", producerID, seq))
}
func indexKey(messageID string) []byte { return []byte("midx:" + messageID) }

func (s *Store) CreateProducer(_ context.Context, p producer.Producer) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return putProducer(txn, p)
	})
}

func (s *Store) UpdateProducer(_ context.Context, p producer.Producer) error {
	return s.db.Update(func(txn *badger.Txn) error {
		cur, err := getProducer(txn, p.ID)
		if err != nil {
			return err
		}
		p.CreatedAt = cur.CreatedAt
		return putProducer(txn, p)
	})
}

func (s *Store) GetProducer(_ context.Context, id string) (producer.Producer, error) {
	var out producer.Producer
	err := s.db.View(func(txn *badger.Txn) error {
		p, err := getProducer(txn, id)
		out = p
		return err
	})
	return out, err
}

func (s *Store) ListProducers(_ context.Context) ([]producer.Producer, error) {
	out := make([]producer.Producer, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, Prefix: []byte("prod:")})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec producerRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec.restore())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteProducer removes the producer record and every message below its prefix.
func (s *Store) DeleteProducer(_ context.Context, id string) error {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getProducer(txn, id); err != nil {
			return err
		}
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, Prefix: messagePrefix(id)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var m producer.Message
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			keys = append(keys, item.KeyCopy(nil), indexKey(m.ID))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	if err := wb.Delete(producerKey(id)); err != nil {
		return err
	}
	return wb.Flush()
}

func (s *Store) SetStatus(_ context.Context, id string, status producer.Status) error {
	return s.db.Update(func(txn *badger.Txn) error {
		p, err := getProducer(txn, id)
		if err != nil {
			return err
		}
		p.Status = status
		return putProducer(txn, p)
	})
}

// InsertMessages writes the batch in as few transactions as Badger allows.
// Batches larger than a single transaction are split.
func (s *Store) InsertMessages(_ context.Context, msgs []producer.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	txn := s.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	if _, err := getProducer(txn, msgs[0].ProducerID); err != nil {
		return err
	}
	for _, m := range msgs {
		n, err := s.seq.Next()
		if err != nil {
			return err
		}
		key := messageKey(m.ProducerID, n)
		buf, err := json.Marshal(m)
		if err != nil {
			return err
		}
		entries := [][2][]byte{{key, buf}, {indexKey(m.ID), key}}
		for _, e := range entries {
			err := txn.Set(e[0], e[1])
			if errors.Is(err, badger.ErrTxnTooBig) {
				if err := txn.Commit(); err != nil {
					return err
				}
				txn = s.db.NewTransaction(true)
				err = txn.Set(e[0], e[1])
			}
			if err != nil {
				return err
			}
		}
	}
	return txn.Commit()
}

func (s *Store) ListMessages(_ context.Context, producerID string) ([]producer.Message, error) {
	return s.scanMessages(producerID, func(producer.Message) bool { return true })
}

func (s *Store) ListUnsent(_ context.Context, producerID string) ([]producer.Message, error) {
	return s.scanMessages(producerID, func(m producer.Message) bool { return !m.Sent })
}

func (s *Store) scanMessages(producerID string, keep func(producer.Message) bool) ([]producer.Message, error) {
	out := make([]producer.Message, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, Prefix: messagePrefix(producerID)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var m producer.Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			if keep(m) {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) RecordResult(_ context.Context, r producer.Result) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(r.MessageID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return producer.ErrNotFound
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		msgItem, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return producer.ErrNotFound
		}
		if err != nil {
			return err
		}
		var m producer.Message
		if err := msgItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		}); err != nil {
			return err
		}
		m.Sent = true
		m.Failed = r.Failed
		m.TimeTook = producer.IntPtr(r.TimeTook)
		buf, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return txn.Set(key, buf)
	})
}

func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}

func getProducer(txn *badger.Txn, id string) (producer.Producer, error) {
	item, err := txn.Get(producerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return producer.Producer{}, producer.ErrNotFound
	}
	if err != nil {
		return producer.Producer{}, err
	}
	var rec producerRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return producer.Producer{}, err
	}
	return rec.restore(), nil
}

func putProducer(txn *badger.Txn, p producer.Producer) error {
	buf, err := json.Marshal(producerRecord{Producer: p, CreatedAtMS: p.CreatedAt.UnixMilli()})
	if err != nil {
		return err
	}
	return txn.Set(producerKey(p.ID), buf)
}

func (r producerRecord) restore() producer.Producer {
	p := r.Producer
	p.CreatedAt = time.UnixMilli(r.CreatedAtMS).UTC()
	return p
}
