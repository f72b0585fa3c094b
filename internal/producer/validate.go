// SPDX-License-Identifier: MIT

package producer

import "strings"

// Field names as they appear on the wire and in forms.
const (
	FieldName             = "name"
	FieldNumberMessages   = "number_messages"
	FieldAverageSendDelay = "average_send_delay"
	FieldFailureRate      = "failure_rate"
	FieldNumSenders       = "num_senders"
)

// MaxMessages bounds a single generation batch.
const MaxMessages = 1_000_000

// Validate checks the ranges of a create/update payload. It returns nil or a
// *ValidationError keyed by field name.
func (a Args) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(a.Name) == "" {
		fields[FieldName] = "Name is required"
	}
	if a.NumberMessages < 0 || a.NumberMessages > MaxMessages {
		fields[FieldNumberMessages] = "Number of messages must be between 0 and 1000000"
	}
	if a.AverageSendDelay < 0 {
		fields[FieldAverageSendDelay] = "Average send delay must not be negative"
	}
	if a.FailureRate < 0 || a.FailureRate > 100 {
		fields[FieldFailureRate] = "Failure rate must be between 0 and 100"
	}
	if a.NumSenders != nil && *a.NumSenders < 0 {
		fields[FieldNumSenders] = "Num senders must not be negative"
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
