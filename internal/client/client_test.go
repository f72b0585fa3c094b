// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/ManuGH/smsmanager/internal/producer"
	"github.com/hydronica/trial"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	baseURL = "http://backend.test"
	testID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	return New(baseURL+"/", hc)
}

func TestClient_Reads(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", baseURL+"/producers",
		httpmock.NewStringResponder(200, `[{"id":"`+testID+`","name":"alpha","number_messages":10,"average_send_delay":2,"failure_rate":5,"num_senders":null,"status":"INACTIVE"}]`))
	httpmock.RegisterResponder("GET", baseURL+"/producers/"+testID,
		httpmock.NewStringResponder(200, `{"id":"`+testID+`","name":"alpha","number_messages":10,"average_send_delay":2,"failure_rate":5,"num_senders":3,"status":"SENDING"}`))
	httpmock.RegisterResponder("GET", baseURL+"/producers/"+testID+"/progress",
		httpmock.NewStringResponder(200, `{"number_messages_created":3,"number_messages_sent":2,"number_messages_failed":1,"average_message_time":4,"message_times":[3,5]}`))

	ctx := context.Background()
	list, err := c.ListProducers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Nil(t, list[0].NumSenders)

	p, err := c.GetProducer(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, producer.StatusSending, p.Status)
	require.NotNil(t, p.NumSenders)
	assert.Equal(t, 3, *p.NumSenders)

	progress, err := c.GetProgress(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, producer.Progress{
		NumberMessagesCreated: 3,
		NumberMessagesSent:    2,
		NumberMessagesFailed:  1,
		AverageMessageTime:    4,
		MessageTimes:          []int{3, 5},
	}, progress)
}

func TestClient_GetSendsNoBody(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", baseURL+"/producers",
		func(req *http.Request) (*http.Response, error) {
			if req.Body != nil && req.Body != http.NoBody {
				b, _ := io.ReadAll(req.Body)
				if len(b) > 0 {
					return nil, errors.New("GET must not carry a body")
				}
			}
			if req.Header.Get("Content-Type") != "application/json" {
				return nil, errors.New("missing json content type")
			}
			return httpmock.NewStringResponse(200, `[]`), nil
		})

	list, err := c.ListProducers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_Mutations(t *testing.T) {
	c := newMockedClient(t)

	var createBody, generateBody string
	httpmock.RegisterResponder("POST", baseURL+"/producers/create",
		func(req *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(req.Body)
			createBody = string(b)
			return httpmock.NewStringResponse(200, `{"id":"`+testID+`","name":"new","status":"INACTIVE"}`), nil
		})
	httpmock.RegisterResponder("POST", baseURL+"/producers/"+testID+"/update",
		httpmock.NewStringResponder(200, `{"id":"`+testID+`","name":"renamed","status":"GENERATED"}`))
	httpmock.RegisterResponder("POST", baseURL+"/producers/"+testID+"/generate",
		func(req *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(req.Body)
			generateBody = string(b)
			return httpmock.NewStringResponse(200, `1000`), nil
		})
	httpmock.RegisterResponder("POST", baseURL+"/producers/"+testID+"/send",
		httpmock.NewStringResponder(200, `"Sending started"`))
	httpmock.RegisterResponder("POST", baseURL+"/producers/"+testID+"/send?wait=true",
		httpmock.NewStringResponder(200, `"All items processed."`))
	httpmock.RegisterResponder("POST", baseURL+"/producers/"+testID+"/delete",
		httpmock.NewStringResponder(200, `"Producer deleted."`))

	ctx := context.Background()
	created, err := c.CreateProducer(ctx, producer.Args{Name: "new", NumberMessages: 1000, AverageSendDelay: 5, FailureRate: 10})
	require.NoError(t, err)
	assert.Equal(t, testID, created.ID)
	assert.JSONEq(t, `{"name":"new","number_messages":1000,"average_send_delay":5,"failure_rate":10}`, createBody)

	updated, err := c.UpdateProducer(ctx, testID, producer.Args{Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	n, err := c.GenerateMessages(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Equal(t, `{}`, generateBody, "POST without payload sends an empty object")

	msg, err := c.ActivateProducer(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, "Sending started", msg)

	msg, err = c.ActivateProducerAndWait(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, "All items processed.", msg)

	msg, err = c.DeleteProducer(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, "Producer deleted.", msg)
}

func TestClient_Errors(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", baseURL+"/producers/bad",
		httpmock.NewStringResponder(422, "Producer Id Is Invalid"))
	httpmock.RegisterResponder("POST", baseURL+"/producers/"+testID+"/send",
		httpmock.NewStringResponder(409, "Already sending messages"))
	httpmock.RegisterResponder("GET", baseURL+"/producers/"+testID+"/progress",
		httpmock.NewErrorResponder(errors.New("connection refused")))
	httpmock.RegisterResponder("GET", baseURL+"/producers",
		httpmock.NewStringResponder(200, `not json`))

	fn := func(in string) (string, error) {
		ctx := context.Background()
		var err error
		switch in {
		case "invalid id":
			_, err = c.GetProducer(ctx, "bad")
		case "conflict":
			_, err = c.ActivateProducer(ctx, testID)
		case "transport":
			_, err = c.GetProgress(ctx, testID)
		case "decode":
			_, err = c.ListProducers(ctx)
		}
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return apiErr.Error(), nil
		}
		return "", err
	}
	cases := trial.Cases[string, string]{
		"non-2xx carries the body text": {
			Input:    "invalid id",
			Expected: "Error encountered: Producer Id Is Invalid",
		},
		"conflict": {
			Input:    "conflict",
			Expected: "Error encountered: Already sending messages",
		},
		"transport failure": {
			Input:     "transport",
			ShouldErr: true,
		},
		"undecodable response": {
			Input:     "decode",
			ShouldErr: true,
		},
	}
	trial.New(fn, cases).Test(t)
}

func TestError_StatusCode(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder("GET", baseURL+"/producers/"+testID,
		httpmock.NewStringResponder(404, "Fetched an empty result that should not be!"))

	_, err := c.GetProducer(context.Background(), testID)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
