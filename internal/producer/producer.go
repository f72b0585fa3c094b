// SPDX-License-Identifier: MIT

// Package producer holds the SMS producer domain: producers, their messages,
// delivery progress and the service orchestrating generation and sending.
package producer

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a producer.
type Status string

const (
	StatusInactive   Status = "INACTIVE"
	StatusGenerating Status = "GENERATING"
	StatusGenerated  Status = "GENERATED"
	StatusSending    Status = "SENDING"
	StatusEmpty      Status = "EMPTY"
)

// Args is the create/update payload for a producer.
type Args struct {
	Name             string `json:"name"`
	NumberMessages   int    `json:"number_messages"`
	AverageSendDelay int    `json:"average_send_delay"`
	FailureRate      int    `json:"failure_rate"`
	NumSenders       *int   `json:"num_senders,omitempty"`
}

// Producer is a configured unit of simulated message generation and sending.
type Producer struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	NumberMessages   int       `json:"number_messages"`
	AverageSendDelay int       `json:"average_send_delay"`
	FailureRate      int       `json:"failure_rate"`
	NumSenders       *int      `json:"num_senders"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"-"`
}

// Args returns the editable part of p.
func (p Producer) Args() Args {
	return Args{
		Name:             p.Name,
		NumberMessages:   p.NumberMessages,
		AverageSendDelay: p.AverageSendDelay,
		FailureRate:      p.FailureRate,
		NumSenders:       p.NumSenders,
	}
}

func (p *Producer) apply(a Args) {
	p.Name = a.Name
	p.NumberMessages = a.NumberMessages
	p.AverageSendDelay = a.AverageSendDelay
	p.FailureRate = a.FailureRate
	p.NumSenders = a.NumSenders
}

// Message is one simulated SMS.
type Message struct {
	ID         string `json:"id"`
	ProducerID string `json:"produced_by"`
	Body       string `json:"message_body"`
	Sent       bool   `json:"sent"`
	Failed     bool   `json:"failed"`
	TimeTook   *int   `json:"time_took,omitempty"`
}

// Result is the outcome of sending a single message.
type Result struct {
	MessageID string
	Failed    bool
	TimeTook  int
}

// Progress is the aggregate delivery state of a producer.
type Progress struct {
	NumberMessagesCreated int   `json:"number_messages_created"`
	NumberMessagesSent    int   `json:"number_messages_sent"`
	NumberMessagesFailed  int   `json:"number_messages_failed"`
	AverageMessageTime    int   `json:"average_message_time"`
	MessageTimes          []int `json:"message_times"`
}

// ComputeProgress aggregates messages. A message counts as sent only when it
// is marked sent and carries a duration; the average is truncated to whole
// seconds and is zero when nothing was sent.
func ComputeProgress(msgs []Message) Progress {
	p := Progress{
		NumberMessagesCreated: len(msgs),
		MessageTimes:          make([]int, 0),
	}
	total := 0
	for _, m := range msgs {
		if m.Failed {
			p.NumberMessagesFailed++
		}
		if m.Sent && m.TimeTook != nil {
			p.NumberMessagesSent++
			p.MessageTimes = append(p.MessageTimes, *m.TimeTook)
			total += *m.TimeTook
		}
	}
	if p.NumberMessagesSent > 0 {
		p.AverageMessageTime = total / p.NumberMessagesSent
	}
	return p
}

// ParseID validates a producer or message identifier.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

// NewID returns a fresh identifier.
func NewID() string {
	return uuid.NewString()
}

// IntPtr is a small helper for the optional NumSenders field.
func IntPtr(v int) *int {
	return &v
}
