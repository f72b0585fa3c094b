// SPDX-License-Identifier: MIT

package producer

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
		want Progress
	}{
		{
			name: "empty",
			want: Progress{MessageTimes: []int{}},
		},
		{
			name: "sent without duration is not counted as sent",
			msgs: []Message{
				{Sent: true},
				{Sent: true, TimeTook: IntPtr(3)},
			},
			want: Progress{NumberMessagesCreated: 2, NumberMessagesSent: 1, AverageMessageTime: 3, MessageTimes: []int{3}},
		},
		{
			name: "average truncates",
			msgs: []Message{
				{Sent: true, TimeTook: IntPtr(1)},
				{Sent: true, Failed: true, TimeTook: IntPtr(2)},
				{},
			},
			want: Progress{NumberMessagesCreated: 3, NumberMessagesSent: 2, NumberMessagesFailed: 1, AverageMessageTime: 1, MessageTimes: []int{1, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ComputeProgress(tt.msgs)); diff != "" {
				t.Errorf("ComputeProgress mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProgress_JSONFieldNames(t *testing.T) {
	b, err := json.Marshal(ComputeProgress(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"number_messages_created": 0,
		"number_messages_sent": 0,
		"number_messages_failed": 0,
		"average_message_time": 0,
		"message_times": []
	}`, string(b))
}

func TestProducer_JSONShape(t *testing.T) {
	p := Producer{ID: "id", Name: "n", NumberMessages: 1, AverageSendDelay: 2, FailureRate: 3, Status: StatusSending}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id","name":"n","number_messages":1,"average_send_delay":2,"failure_rate":3,"num_senders":null,"status":"SENDING"}`, string(b))
}

func TestParseID(t *testing.T) {
	id := NewID()
	got, err := ParseID(id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("42")
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = ParseID("")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestArgsValidate(t *testing.T) {
	ok := Args{Name: "x", NumberMessages: 1000, AverageSendDelay: 5, FailureRate: 10}
	assert.NoError(t, ok.Validate())

	zero := Args{Name: "x"}
	assert.NoError(t, zero.Validate(), "zero values are in range")

	bad := Args{
		Name:             "  ",
		NumberMessages:   MaxMessages + 1,
		AverageSendDelay: -1,
		FailureRate:      -5,
		NumSenders:       IntPtr(-1),
	}
	err := bad.Validate()
	require.ErrorIs(t, err, ErrInvalidArgs)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 5)
	assert.Equal(t, "Name is required", verr.Fields[FieldName])
}

func TestValidationError_StableMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		FieldName:        "Name is required",
		FieldFailureRate: "Failure rate must be between 0 and 100",
	}}
	assert.Equal(t, "failure_rate: Failure rate must be between 0 and 100; name: Name is required", err.Error())
}
