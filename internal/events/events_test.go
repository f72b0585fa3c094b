// SPDX-License-Identifier: MIT

package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishStatus_Memory(t *testing.T) {
	mem := NewMemory()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := PublishStatus(context.Background(), mem, StatusChange{
		ProducerID: "p1",
		OldStatus:  "INACTIVE",
		NewStatus:  "GENERATING",
		At:         at,
	})
	require.NoError(t, err)

	got := mem.Statuses()
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ProducerID)
	assert.Equal(t, "GENERATING", got[0].NewStatus)
	assert.True(t, got[0].At.Equal(at))
}

func TestPublishStatus_NilPublisher(t *testing.T) {
	assert.NoError(t, PublishStatus(context.Background(), nil, StatusChange{}))
}

func TestOpen_Backends(t *testing.T) {
	p, err := Open("", "", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)

	p, err = Open("none", "", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)

	_, err = Open("kafka", "", zerolog.Nop())
	assert.Error(t, err)

	_, err = Open("nsq", "", zerolog.Nop())
	assert.Error(t, err, "nsq without an address must fail")
}
