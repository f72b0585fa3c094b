// SPDX-License-Identifier: MIT

package daemon

import "errors"

var (
	// ErrMissingLogger is returned when logger is not provided
	ErrMissingLogger = errors.New("logger is required")

	// ErrNoServers is returned when the manager has nothing to serve.
	ErrNoServers = errors.New("at least one server is required")

	// ErrMissingHandler is returned when a server has no handler.
	ErrMissingHandler = errors.New("server handler is required")

	// ErrDuplicateServer is returned when two servers share a name.
	ErrDuplicateServer = errors.New("duplicate server name")

	// ErrMissingManager is returned when a daemon app is created without a manager.
	ErrMissingManager = errors.New("manager is required")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")
)
