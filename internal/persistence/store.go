// SPDX-License-Identifier: MIT

// Package persistence selects the producer store backend.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManuGH/smsmanager/internal/persistence/badger"
	"github.com/ManuGH/smsmanager/internal/persistence/memory"
	"github.com/ManuGH/smsmanager/internal/persistence/sqlite"
	"github.com/ManuGH/smsmanager/internal/producer"
)

// Backends accepted by OpenStore.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// OpenStore opens the store for backend. For sqlite, path is the database
// file; for badger it is a directory. Parent directories are created.
func OpenStore(backend, path string) (producer.Store, error) {
	switch backend {
	case BackendMemory:
		return memory.New(), nil
	case BackendSQLite, "":
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		s, err := sqlite.NewStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		if err := ensureDir(path); err != nil {
			return nil, err
		}
		s, err := badger.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return nil
}
