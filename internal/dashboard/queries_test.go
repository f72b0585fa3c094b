// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/smsmanager/internal/cache"
	"github.com/ManuGH/smsmanager/internal/producer"
)

func newTestQueries(t *testing.T) (*Queries, *fakeAPI, cache.Cache) {
	t.Helper()
	api := newFakeAPI()
	api.seed(producer.Producer{ID: testID, Name: "alpha", NumberMessages: 10, Status: producer.StatusInactive},
		producer.Progress{NumberMessagesCreated: 0, MessageTimes: []int{}})
	c := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = c.Close() })
	return NewQueries(api, c, time.Minute, zerolog.Nop()), api, c
}

func warm(t *testing.T, q *Queries) {
	t.Helper()
	ctx := context.Background()
	_, err := q.AllProducers(ctx)
	require.NoError(t, err)
	_, err = q.Producer(ctx, testID, false)
	require.NoError(t, err)
	_, err = q.Progress(ctx, testID, false)
	require.NoError(t, err)
}

func cached(c cache.Cache, key string) bool {
	_, ok := c.Get(key)
	return ok
}

func TestQueries_ReadsAreCached(t *testing.T) {
	q, api, _ := newTestQueries(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := q.Producer(ctx, testID, false)
		require.NoError(t, err)
		assert.Equal(t, "alpha", p.Name)
	}
	assert.Equal(t, 1, api.count("get"))

	_, err := q.Producer(ctx, testID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("get"), "fresh reads bypass the cache")
}

func TestQueries_ErrorsAreNotCached(t *testing.T) {
	q, api, c := newTestQueries(t)
	api.fail["list"] = errors.New("backend down")

	_, err := q.AllProducers(context.Background())
	require.Error(t, err)
	assert.False(t, cached(c, KeyProducers))

	delete(api.fail, "list")
	list, err := q.AllProducers(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestQueries_Invalidation(t *testing.T) {
	ctx := context.Background()
	args := producer.Args{Name: "beta", NumberMessages: 5}

	tests := []struct {
		name       string
		mutate     func(q *Queries) error
		listKept   bool
		detailKept bool
	}{
		{
			name:   "create drops every producer query",
			mutate: func(q *Queries) error { _, err := q.Create(ctx, args); return err },
		},
		{
			name:   "delete drops every producer query",
			mutate: func(q *Queries) error { _, err := q.Delete(ctx, testID); return err },
		},
		{
			name:     "update drops detail and progress",
			mutate:   func(q *Queries) error { _, err := q.Update(ctx, testID, args); return err },
			listKept: true,
		},
		{
			name:     "generate drops detail and progress",
			mutate:   func(q *Queries) error { _, err := q.Generate(ctx, testID); return err },
			listKept: true,
		},
		{
			name:     "activate drops detail and progress",
			mutate:   func(q *Queries) error { _, err := q.Activate(ctx, testID, false); return err },
			listKept: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _, c := newTestQueries(t)
			warm(t, q)
			require.NoError(t, tt.mutate(q))
			assert.Equal(t, tt.listKept, cached(c, KeyProducers))
			assert.Equal(t, tt.detailKept, cached(c, KeyProducer(testID)))
			assert.Equal(t, tt.detailKept, cached(c, KeyProgress(testID)))
		})
	}
}

func TestQueries_FailedMutationKeepsCache(t *testing.T) {
	q, api, c := newTestQueries(t)
	warm(t, q)
	api.fail["generate"] = errors.New("Error encountered: Already sending messages")

	_, err := q.Generate(context.Background(), testID)
	require.Error(t, err)
	assert.True(t, cached(c, KeyProducer(testID)))
}

func TestQueries_ActivateWait(t *testing.T) {
	q, api, _ := newTestQueries(t)

	msg, err := q.Activate(context.Background(), testID, true)
	require.NoError(t, err)
	assert.Equal(t, "All items processed.", msg)
	assert.True(t, api.waited)
}

func TestQueries_NilCacheStillLoads(t *testing.T) {
	api := newFakeAPI()
	q := NewQueries(api, nil, 0, zerolog.Nop())
	_, err := q.AllProducers(context.Background())
	require.NoError(t, err)
	_, err = q.AllProducers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, api.count("list"))
}
