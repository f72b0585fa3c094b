// SPDX-License-Identifier: MIT

package dashboard

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hydronica/trial"
	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/smsmanager/internal/producer"
)

func formErrors(f ProducerForm) map[string]string {
	errs := map[string]string{}
	for _, field := range f.Fields {
		if field.Error != "" {
			errs[field.Name] = field.Error
		}
	}
	return errs
}

func TestParseProducerForm(t *testing.T) {
	type result struct {
		Args   producer.Args
		Errors map[string]string
	}
	fn := func(in url.Values) (result, error) {
		form, args := parseProducerForm("t", "/a", in)
		return result{Args: args, Errors: formErrors(form)}, nil
	}
	cases := trial.Cases[url.Values, result]{
		"complete": {
			Input: url.Values{"name": {" alpha "}, "number_messages": {"10"}, "average_send_delay": {"2"}, "failure_rate": {"5"}, "num_senders": {"3"}},
			Expected: result{
				Args:   producer.Args{Name: "alpha", NumberMessages: 10, AverageSendDelay: 2, FailureRate: 5, NumSenders: producer.IntPtr(3)},
				Errors: map[string]string{},
			},
		},
		"num senders optional": {
			Input: url.Values{"name": {"a"}, "number_messages": {"0"}, "average_send_delay": {"0"}, "failure_rate": {"0"}, "num_senders": {""}},
			Expected: result{
				Args:   producer.Args{Name: "a"},
				Errors: map[string]string{},
			},
		},
		"required fields": {
			Input: url.Values{},
			Expected: result{Errors: map[string]string{
				"name":               "Name is required",
				"number_messages":    "Number of messages is required",
				"average_send_delay": "Average send delay is required",
				"failure_rate":       "Failure rate is required",
			}},
		},
		"not a number": {
			Input: url.Values{"name": {"a"}, "number_messages": {"ten"}, "average_send_delay": {"1.5"}, "failure_rate": {"1"}},
			Expected: result{
				Args: producer.Args{Name: "a", FailureRate: 1},
				Errors: map[string]string{
					"number_messages":    "Number of Messages must be a whole number",
					"average_send_delay": "Average Send Delay must be a whole number",
				},
			},
		},
	}
	trial.New(fn, cases).Test(t)
}

func TestNewProducerForm_Prefill(t *testing.T) {
	f := newProducerForm("Update Producer alpha", "/producers/x/update", producer.Args{
		Name: "alpha", NumberMessages: 7, AverageSendDelay: 1, FailureRate: 2, NumSenders: producer.IntPtr(4),
	})
	got := map[string]string{}
	for _, field := range f.Fields {
		got[field.Name] = field.Value
	}
	want := map[string]string{
		"name": "alpha", "number_messages": "7", "average_send_delay": "1", "failure_rate": "2", "num_senders": "4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("prefill mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, f.Valid())
}

func TestParseRefreshRate(t *testing.T) {
	fn := func(in string) (float64, error) {
		v, ok := parseRefreshRate(in)
		if !ok {
			return 0, assert.AnError
		}
		return v, nil
	}
	cases := trial.Cases[string, float64]{
		"integer":      {Input: "5", Expected: 5.0},
		"fraction":     {Input: " 2.5 ", Expected: 2.5},
		"minimum":      {Input: "0.5", Expected: 0.5},
		"too small":    {Input: "0.1", ShouldErr: true},
		"zero":         {Input: "0", ShouldErr: true},
		"negative":     {Input: "-3", ShouldErr: true},
		"too large":    {Input: "7200", ShouldErr: true},
		"not a number": {Input: "fast", ShouldErr: true},
		"nan":          {Input: "NaN", ShouldErr: true},
	}
	trial.New(fn, cases).Test(t)
}
