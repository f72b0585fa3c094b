// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	level := zerolog.GlobalLevel()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
		Configure(Config{})
	})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestConfigure_AttachesServiceAndComponent(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "smsmanager", Version: "v1.0.0"})

	logger := WithComponent("sender")
	logger.Info().Str(FieldEvent, "sender.completed").Msg("done")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "smsmanager", entry["service"])
	assert.Equal(t, "v1.0.0", entry["version"])
	assert.Equal(t, "sender", entry[FieldComponent])
	assert.Equal(t, "sender.completed", entry[FieldEvent])
	assert.Equal(t, "done", entry["message"])
}

func TestSetLevel(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	logger := WithComponent("config")

	logger.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	require.NoError(t, SetLevel("debug"))
	logger.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel(), "invalid level keeps the current one")
}

func TestDerive(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	logger := Derive(func(c *zerolog.Context) {
		*c = c.Str(FieldProducerID, "p-1")
	})
	logger.Info().Msg("x")
	assert.Equal(t, "p-1", decodeLine(t, &buf)[FieldProducerID])
}
