// SPDX-License-Identifier: MIT

package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Server describes one HTTP listener owned by the Manager.
type Server struct {
	// Name identifies the server in logs and in Manager.Addr.
	Name string
	// Addr is the listen address, e.g. ":8000". Port 0 picks a free port.
	Addr    string
	Handler http.Handler

	// MaxConnections caps concurrently accepted connections. Zero is unlimited.
	MaxConnections int

	ReadHeaderTimeout time.Duration
	// WriteTimeout must stay zero for servers that hold websockets open.
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	Logger  zerolog.Logger
	Servers []Server

	// ShutdownTimeout bounds server drain plus shutdown hooks.
	ShutdownTimeout time.Duration
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if len(d.Servers) == 0 {
		return ErrNoServers
	}
	seen := make(map[string]bool, len(d.Servers))
	for _, s := range d.Servers {
		if s.Handler == nil {
			return fmt.Errorf("%w: %s", ErrMissingHandler, s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateServer, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
