package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementkit/statementkit/internal/client/api"
	"github.com/statementkit/statementkit/internal/client/config"
	"github.com/statementkit/statementkit/internal/client/session"
)

func newTestApp(t *testing.T, serverURL, stdin string) (*App, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	app := &App{
		config:   &config.Config{ServerEndpointAddr: serverURL},
		api:      api.NewClient(serverURL),
		sessions: session.NewStoreAt(filepath.Join(t.TempDir(), "session.json")),
		reader:   bufio.NewReader(strings.NewReader(stdin)),
		out:      out,
	}
	return app, out
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": code})
}

func TestRunUnknownCommand(t *testing.T) {
	app, _ := newTestApp(t, "http://127.0.0.1:0", "")
	err := app.Run(context.Background(), []string{"frobnicate"})
	assert.ErrorContains(t, err, "unknown command")
}

func TestRunNoCommandPrintsUsage(t *testing.T) {
	app, out := newTestApp(t, "http://127.0.0.1:0", "")
	require.NoError(t, app.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRegisterSavesSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/signup", r.URL.Path)
		json.NewEncoder(w).Encode(api.AuthResult{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Account:      api.Account{Name: "Alice", Email: "alice@example.com", Credits: 25, ReferralCode: "REFABCD1234"},
		})
	}))
	defer ts.Close()

	app, out := newTestApp(t, ts.URL, "Alice\nalice@example.com\n\n")

	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte("password1"), nil }
	t.Cleanup(func() { readPassword = orig })

	require.NoError(t, app.Register(context.Background()))
	assert.Contains(t, out.String(), "25 credits")

	sess, err := app.sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "access", sess.AccessToken)
	assert.Equal(t, "alice@example.com", sess.Account.Email)
}

func TestRestoreFailClosed(t *testing.T) {
	// Both the access and the refresh token are rejected: the local blob must
	// be cleared and the command must report a missing login.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}))
	defer ts.Close()

	app, _ := newTestApp(t, ts.URL, "")
	require.NoError(t, app.sessions.Save(&session.Session{AccessToken: "stale", RefreshToken: "stale"}))

	err := app.Me(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)

	_, err = app.sessions.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRestoreRefreshesStaleAccessToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/me":
			if r.Header.Get("Authorization") != "Bearer fresh-access" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			json.NewEncoder(w).Encode(api.Account{Email: "user@example.com", Credits: 30})
		case "/api/refresh":
			json.NewEncoder(w).Encode(api.TokenPair{AccessToken: "fresh-access", RefreshToken: "fresh-refresh"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	app, out := newTestApp(t, ts.URL, "")
	require.NoError(t, app.sessions.Save(&session.Session{AccessToken: "stale", RefreshToken: "old-refresh"}))

	require.NoError(t, app.Me(context.Background()))
	assert.Contains(t, out.String(), "user@example.com")

	sess, err := app.sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", sess.AccessToken)
	assert.Equal(t, "fresh-refresh", sess.RefreshToken)
}

func TestMeWithoutSession(t *testing.T) {
	app, _ := newTestApp(t, "http://127.0.0.1:0", "")
	err := app.Me(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogoutClearsSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	app, _ := newTestApp(t, ts.URL, "")
	require.NoError(t, app.sessions.Save(&session.Session{AccessToken: "access", RefreshToken: "refresh"}))

	require.NoError(t, app.Logout(context.Background()))

	_, err := app.sessions.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
}
