// SPDX-License-Identifier: MIT

// Package storetest holds behavioural tests shared by every producer.Store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/smsmanager/internal/producer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. The caller closes it.
type Factory func(t *testing.T) producer.Store

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newProducer(name string, offset time.Duration) producer.Producer {
	return producer.Producer{
		ID:               producer.NewID(),
		Name:             name,
		NumberMessages:   3,
		AverageSendDelay: 2,
		FailureRate:      10,
		Status:           producer.StatusInactive,
		CreatedAt:        base.Add(offset),
	}
}

func messagesFor(p producer.Producer, n int) []producer.Message {
	out := make([]producer.Message, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, producer.Message{
			ID:         producer.NewID(),
			ProducerID: p.ID,
			Body:       "body",
		})
	}
	return out
}

// Run exercises the full Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("ProducerCRUD", func(t *testing.T) { testProducerCRUD(t, newStore(t)) })
	t.Run("ListOrder", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, newStore(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, newStore(t)) })
}

func testProducerCRUD(t *testing.T, s producer.Store) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	p := newProducer("alpha", 0)
	p.NumSenders = producer.IntPtr(4)
	require.NoError(t, s.CreateProducer(ctx, p))

	got, err := s.GetProducer(ctx, p.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("stored producer mismatch (-want +got):\n%s", diff)
	}

	p.Name = "beta"
	p.NumSenders = nil
	require.NoError(t, s.UpdateProducer(ctx, p))
	require.NoError(t, s.SetStatus(ctx, p.ID, producer.StatusGenerated))

	got, err = s.GetProducer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "beta", got.Name)
	assert.Nil(t, got.NumSenders)
	assert.Equal(t, producer.StatusGenerated, got.Status)
}

func testListOrder(t *testing.T, s producer.Store) {
	defer s.Close()
	ctx := context.Background()

	list, err := s.ListProducers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	second := newProducer("second", time.Minute)
	first := newProducer("first", 0)
	require.NoError(t, s.CreateProducer(ctx, second))
	require.NoError(t, s.CreateProducer(ctx, first))

	list, err = s.ListProducers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "second", list[1].Name)
}

func testNotFound(t *testing.T, s producer.Store) {
	defer s.Close()
	ctx := context.Background()
	missing := producer.NewID()

	_, err := s.GetProducer(ctx, missing)
	assert.ErrorIs(t, err, producer.ErrNotFound)
	assert.ErrorIs(t, s.UpdateProducer(ctx, newProducer("x", 0)), producer.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProducer(ctx, missing), producer.ErrNotFound)
	assert.ErrorIs(t, s.SetStatus(ctx, missing, producer.StatusEmpty), producer.ErrNotFound)
	assert.ErrorIs(t, s.RecordResult(ctx, producer.Result{MessageID: missing}), producer.ErrNotFound)
}

func testMessages(t *testing.T, s producer.Store) {
	defer s.Close()
	ctx := context.Background()

	p := newProducer("sender", 0)
	require.NoError(t, s.CreateProducer(ctx, p))
	msgs := messagesFor(p, 3)
	require.NoError(t, s.InsertMessages(ctx, msgs))

	all, err := s.ListMessages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := range msgs {
		assert.Equal(t, msgs[i].ID, all[i].ID, "insertion order kept")
		assert.False(t, all[i].Sent)
		assert.Nil(t, all[i].TimeTook)
	}

	require.NoError(t, s.RecordResult(ctx, producer.Result{MessageID: msgs[0].ID, Failed: true, TimeTook: 4}))
	require.NoError(t, s.RecordResult(ctx, producer.Result{MessageID: msgs[2].ID, TimeTook: 1}))

	unsent, err := s.ListUnsent(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, msgs[1].ID, unsent[0].ID)

	all, err = s.ListMessages(ctx, p.ID)
	require.NoError(t, err)
	progress := producer.ComputeProgress(all)
	assert.Equal(t, producer.Progress{
		NumberMessagesCreated: 3,
		NumberMessagesSent:    2,
		NumberMessagesFailed:  1,
		AverageMessageTime:    2,
		MessageTimes:          []int{4, 1},
	}, progress)
}

func testDeleteCascades(t *testing.T, s producer.Store) {
	defer s.Close()
	ctx := context.Background()

	keep := newProducer("keep", 0)
	drop := newProducer("drop", time.Second)
	require.NoError(t, s.CreateProducer(ctx, keep))
	require.NoError(t, s.CreateProducer(ctx, drop))
	require.NoError(t, s.InsertMessages(ctx, messagesFor(keep, 2)))
	dropMsgs := messagesFor(drop, 2)
	require.NoError(t, s.InsertMessages(ctx, dropMsgs))

	require.NoError(t, s.DeleteProducer(ctx, drop.ID))

	_, err := s.GetProducer(ctx, drop.ID)
	assert.ErrorIs(t, err, producer.ErrNotFound)
	left, err := s.ListMessages(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.ErrorIs(t, s.RecordResult(ctx, producer.Result{MessageID: dropMsgs[0].ID}), producer.ErrNotFound)

	kept, err := s.ListMessages(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 2)
}
