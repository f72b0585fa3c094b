// SPDX-License-Identifier: MIT

package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Backends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
	}{
		{BackendMemory, ""},
		{BackendSQLite, filepath.Join(dir, "nested", "smsmanager.db")},
		{BackendBadger, filepath.Join(dir, "badger")},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := OpenStore(tt.backend, tt.path)
			require.NoError(t, err)
			defer s.Close()
			assert.NoError(t, s.Ping(context.Background()))
		})
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore("postgres", "")
	assert.ErrorContains(t, err, "unknown store backend")
}
