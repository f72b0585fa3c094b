// SPDX-License-Identifier: MIT

package dashboard

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ManuGH/smsmanager/internal/producer"
)

// Form field names, matching the JSON payload keys.
const (
	fieldName             = "name"
	fieldNumberMessages   = "number_messages"
	fieldAverageSendDelay = "average_send_delay"
	fieldFailureRate      = "failure_rate"
	fieldNumSenders       = "num_senders"
)

// Field is one rendered form input.
type Field struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Description string
	Value       string
	Error       string
}

// ProducerForm is the create/update form state.
type ProducerForm struct {
	Title  string
	Action string
	Fields []Field
}

type fieldSpec struct {
	name, label, typ, placeholder, description, required string
}

var fieldSpecs = []fieldSpec{
	{fieldName, "Name", "text", "Producer Name",
		"Human readable name for the producer", "Name is required"},
	{fieldNumberMessages, "Number of Messages", "number", "1000",
		"Number of messages that this producer will create", "Number of messages is required"},
	{fieldAverageSendDelay, "Average Send Delay", "number", "5",
		"Number of seconds that it will take for a sms message to be sent on average", "Average send delay is required"},
	{fieldFailureRate, "Failure Rate", "number", "10%",
		"The rate at which sending an sms message should fail", "Failure rate is required"},
	{fieldNumSenders, "Num Senders", "number", "Number of Available Threads",
		"The number of senders that will process the messages, defaults to maximum number of available threads", ""},
}

// defaultArgs seeds the create form.
func defaultArgs() producer.Args {
	return producer.Args{NumberMessages: 1000, AverageSendDelay: 5, FailureRate: 10}
}

func newProducerForm(title, action string, args producer.Args) ProducerForm {
	values := map[string]string{
		fieldName:             args.Name,
		fieldNumberMessages:   strconv.Itoa(args.NumberMessages),
		fieldAverageSendDelay: strconv.Itoa(args.AverageSendDelay),
		fieldFailureRate:      strconv.Itoa(args.FailureRate),
	}
	if args.NumSenders != nil {
		values[fieldNumSenders] = strconv.Itoa(*args.NumSenders)
	}
	return buildForm(title, action, values, nil)
}

func buildForm(title, action string, values, errs map[string]string) ProducerForm {
	f := ProducerForm{Title: title, Action: action}
	for _, s := range fieldSpecs {
		f.Fields = append(f.Fields, Field{
			Name:        s.name,
			Label:       s.label,
			Type:        s.typ,
			Placeholder: s.placeholder,
			Description: s.description,
			Value:       values[s.name],
			Error:       errs[s.name],
		})
	}
	return f
}

// Valid reports whether no field carries an error.
func (f ProducerForm) Valid() bool {
	for _, field := range f.Fields {
		if field.Error != "" {
			return false
		}
	}
	return true
}

// parseProducerForm reads submitted values. Required fields that are blank
// and numbers that do not parse are reported per field; range checks are
// left to the backend.
func parseProducerForm(title, action string, form url.Values) (ProducerForm, producer.Args) {
	values := make(map[string]string, len(fieldSpecs))
	errs := make(map[string]string)
	var args producer.Args

	for _, s := range fieldSpecs {
		raw := strings.TrimSpace(form.Get(s.name))
		values[s.name] = raw
		if raw == "" {
			if s.required != "" {
				errs[s.name] = s.required
			}
			continue
		}
		if s.typ != "number" {
			args.Name = raw
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs[s.name] = s.label + " must be a whole number"
			continue
		}
		switch s.name {
		case fieldNumberMessages:
			args.NumberMessages = n
		case fieldAverageSendDelay:
			args.AverageSendDelay = n
		case fieldFailureRate:
			args.FailureRate = n
		case fieldNumSenders:
			args.NumSenders = producer.IntPtr(n)
		}
	}
	return buildForm(title, action, values, errs), args
}
