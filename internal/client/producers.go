// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"net/http"

	"github.com/ManuGH/smsmanager/internal/producer"
)

// ListProducers fetches all producers.
func (c *Client) ListProducers(ctx context.Context) ([]producer.Producer, error) {
	var out []producer.Producer
	if err := c.do(ctx, http.MethodGet, "/producers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProducer(ctx context.Context, id string) (producer.Producer, error) {
	var out producer.Producer
	err := c.do(ctx, http.MethodGet, producerPath(id, ""), nil, &out)
	return out, err
}

func (c *Client) CreateProducer(ctx context.Context, args producer.Args) (producer.Producer, error) {
	var out producer.Producer
	err := c.do(ctx, http.MethodPost, "/producers/create", args, &out)
	return out, err
}

func (c *Client) UpdateProducer(ctx context.Context, id string, args producer.Args) (producer.Producer, error) {
	var out producer.Producer
	err := c.do(ctx, http.MethodPost, producerPath(id, "/update"), args, &out)
	return out, err
}

// DeleteProducer returns the backend's confirmation message.
func (c *Client) DeleteProducer(ctx context.Context, id string) (string, error) {
	var out string
	err := c.do(ctx, http.MethodPost, producerPath(id, "/delete"), nil, &out)
	return out, err
}

// GenerateMessages returns the number of messages created.
func (c *Client) GenerateMessages(ctx context.Context, id string) (int, error) {
	var out int
	err := c.do(ctx, http.MethodPost, producerPath(id, "/generate"), nil, &out)
	return out, err
}

// ActivateProducer starts sending and returns as soon as the run is scheduled.
func (c *Client) ActivateProducer(ctx context.Context, id string) (string, error) {
	var out string
	err := c.do(ctx, http.MethodPost, producerPath(id, "/send"), nil, &out)
	return out, err
}

// ActivateProducerAndWait blocks until every pending message was processed.
// It goes through c.Wait so ordinary response timeouts do not cut it short.
func (c *Client) ActivateProducerAndWait(ctx context.Context, id string) (string, error) {
	hc := c.Wait
	if hc == nil {
		hc = c.HTTP
	}
	var out string
	err := c.doWith(ctx, hc, http.MethodPost, producerPath(id, "/send?wait=true"), nil, &out)
	return out, err
}

func (c *Client) GetProgress(ctx context.Context, id string) (producer.Progress, error) {
	var out producer.Progress
	err := c.do(ctx, http.MethodGet, producerPath(id, "/progress"), nil, &out)
	return out, err
}

// Healthy probes the backend readiness endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/readyz", nil, nil)
}
