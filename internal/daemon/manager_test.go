// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/smsmanager/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func plainClient() *http.Client {
	return &http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

func waitReady(t *testing.T, m Manager) {
	t.Helper()
	select {
	case <-m.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not become ready")
	}
}

func TestNewManager_Validation(t *testing.T) {
	valid := Server{Name: ServerAPI, Addr: "127.0.0.1:0", Handler: okHandler("")}
	tests := map[string]struct {
		deps Deps
		want error
	}{
		"disabled logger": {deps: Deps{Logger: zerolog.Nop(), Servers: []Server{valid}}, want: ErrMissingLogger},
		"no servers":      {deps: Deps{Logger: testLogger()}, want: ErrNoServers},
		"missing handler": {deps: Deps{Logger: testLogger(), Servers: []Server{{Name: "x"}}}, want: ErrMissingHandler},
		"duplicate":       {deps: Deps{Logger: testLogger(), Servers: []Server{valid, valid}}, want: ErrDuplicateServer},
		"valid":           {deps: Deps{Logger: testLogger(), Servers: []Server{valid}}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := NewManager(tc.deps)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestManager_ServesAndShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, err := NewManager(Deps{
		Logger: testLogger(),
		Servers: []Server{
			{Name: ServerAPI, Addr: "127.0.0.1:0", Handler: okHandler("api")},
			{Name: ServerDashboard, Addr: "127.0.0.1:0", Handler: okHandler("web")},
		},
		ShutdownTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"store", "service"} {
		m.RegisterShutdownHook(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	waitReady(t, m)

	client := plainClient()
	for name, want := range map[string]string{ServerAPI: "api", ServerDashboard: "web"} {
		resp, err := client.Get("http://" + m.Addr(name) + "/")
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		assert.Equal(t, want, string(body))
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.Equal(t, []string{"service", "store"}, order, "hooks run in reverse registration order")
	assert.NoError(t, m.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	m, err := NewManager(Deps{
		Logger:  testLogger(),
		Servers: []Server{{Name: ServerAPI, Addr: "127.0.0.1:0", Handler: okHandler("")}},
	})
	require.NoError(t, err)
	boom := errors.New("boom")
	m.RegisterShutdownHook("failing", func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	waitReady(t, m)
	cancel()

	err = <-done
	assert.ErrorIs(t, err, boom)
}

func TestManager_LimitsConnections(t *testing.T) {
	m, err := NewManager(Deps{
		Logger: testLogger(),
		Servers: []Server{{
			Name:           ServerAPI,
			Addr:           "127.0.0.1:0",
			Handler:        okHandler("ok"),
			MaxConnections: 1,
		}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Start(ctx) }()
	waitReady(t, m)
	addr := m.Addr(ServerAPI)

	held, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	short := &http.Client{Timeout: 200 * time.Millisecond, Transport: &http.Transport{DisableKeepAlives: true}}
	_, err = short.Get("http://" + addr + "/")
	assert.Error(t, err, "second connection waits while the first holds the only slot")

	require.NoError(t, held.Close())
	assert.Eventually(t, func() bool {
		resp, err := short.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond)
}

func TestManager_ListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	m, err := NewManager(Deps{
		Logger: testLogger(),
		Servers: []Server{
			{Name: ServerAPI, Addr: "127.0.0.1:0", Handler: okHandler("")},
			{Name: ServerDashboard, Addr: busy.Addr().String(), Handler: okHandler("")},
		},
	})
	require.NoError(t, err)

	err = m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard server")
	assert.Empty(t, m.Addr(ServerAPI))
}

func TestManager_ShutdownBeforeStart(t *testing.T) {
	m, err := NewManager(Deps{
		Logger:  testLogger(),
		Servers: []Server{{Name: ServerAPI, Addr: "127.0.0.1:0", Handler: okHandler("")}},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestApp_RunWithoutManager(t *testing.T) {
	app := NewApp(testLogger(), nil, nil)
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingManager)
}

func TestApp_AppliesReloadedConfig(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	loader := config.NewLoader(path).WithEnviron(map[string]string{})
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := config.NewHolder(initial, loader)

	m, err := NewManager(Deps{
		Logger:  testLogger(),
		Servers: []Server{{Name: ServerDashboard, Addr: "127.0.0.1:0", Handler: okHandler("")}},
	})
	require.NoError(t, err)

	app := NewApp(testLogger(), m, holder)
	applied := make(chan config.Config, 1)
	app.OnReload(func(cfg config.Config) {
		select {
		case applied <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	waitReady(t, m)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	require.NoError(t, holder.Reload(ctx))

	select {
	case cfg := <-applied:
		assert.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(2 * time.Second):
		t.Fatal("reload was not applied")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
