// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/smsmanager/internal/producer"
)

func TestLayout_Toast(t *testing.T) {
	body := errorPage("boom")

	html, err := renderString(context.Background(), layout(layoutData{Title: "Error", Lang: "en"}, body))
	require.NoError(t, err)
	assert.Contains(t, html, `<html lang="en">`)
	assert.Contains(t, html, "<title>Error | SMS Manager</title>")
	assert.Contains(t, html, "<p>boom</p>")
	assert.NotContains(t, html, "toast")

	notice := failure("Failed to Send Messages", errors.New("backend unavailable"))
	html, err = renderString(context.Background(), layout(layoutData{Lang: "en", Toast: &notice}, body))
	require.NoError(t, err)
	assert.Contains(t, html, "<title>SMS Manager</title>")
	assert.Contains(t, html, `<div class="toast toast-error" role="status">`)
	assert.Contains(t, html, `<strong class="toast-title">Failed to Send Messages</strong>`)
	assert.Contains(t, html, `<p class="toast-description">backend unavailable</p>`)
}

func TestFormField_ErrorState(t *testing.T) {
	html, err := renderString(context.Background(), formField(Field{Name: "name", Type: "text"}))
	require.NoError(t, err)
	assert.Contains(t, html, `<div class="form-item">`)
	assert.NotContains(t, html, `role="alert"`)

	html, err = renderString(context.Background(), formField(Field{Name: "name", Type: "text", Error: "Name is required"}))
	require.NoError(t, err)
	assert.Contains(t, html, `<div class="form-item has-error">`)
	assert.Contains(t, html, `<p class="form-message" role="alert">Name is required</p>`)
}

func TestProducerCard_EscapesUserText(t *testing.T) {
	threads := 4
	p := producer.Producer{ID: "p-1", Name: `<script>alert("x")</script>`, NumSenders: &threads}

	html, err := renderString(context.Background(), producerCard(p))
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Will use 4 threads to send")
	assert.Contains(t, html, `href="/producers/p-1"`)
}

func TestProducerPath(t *testing.T) {
	assert.Equal(t, "/producers/p-1", producerPath("p-1"))
	assert.Equal(t, "/producers/p-1/actions/send", producerPath("p-1", "actions", "send"))
}
