// ABOUTME: Tests for todoism-cli subcommands against a real API handler
// ABOUTME: The token file lives in a temporary config directory

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/api"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/client"
	"github.com/2389/todoism/internal/i18n"
	"github.com/2389/todoism/internal/store"
	"github.com/2389/todoism/internal/todo"
)

func setup(t *testing.T) string {
	t.Helper()
	color.NoColor = true

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tr, err := i18n.New("")
	require.NoError(t, err)
	verifier, err := auth.NewJWTVerifier([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	accounts := account.New(s, tr, nil)
	_, err = accounts.Register(context.Background(), "grey", "123")
	require.NoError(t, err)

	srv := httptest.NewServer(api.New(s, todo.New(s, nil), accounts, verifier, api.Config{PerPage: 2}, nil))
	t.Cleanup(srv.Close)

	configDir := t.TempDir()
	t.Setenv(URLEnv, srv.URL)
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv(client.TokenEnv, "")
	return configDir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func login(t *testing.T) {
	t.Helper()
	code, _, stderr := runCLI(t, "login", "grey", "123")
	require.Equal(t, 0, code, stderr)
}

func TestLogin_SavesToken(t *testing.T) {
	configDir := setup(t)

	code, stdout, _ := runCLI(t, "login", "grey", "123")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "logged in as grey")

	data, err := os.ReadFile(filepath.Join(configDir, "todoism", "token"))
	require.NoError(t, err)
	assert.NotEmpty(t, bytes.TrimSpace(data))

	code, stdout, _ = runCLI(t, "me")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "grey")
	assert.Contains(t, stdout, "Total 0")
}

func TestLogin_BadCredentials(t *testing.T) {
	setup(t)

	code, _, stderr := runCLI(t, "login", "grey", "wrong")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Either the username or password was invalid.")
}

func TestNotLoggedIn(t *testing.T) {
	setup(t)

	code, _, stderr := runCLI(t, "ls")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not logged in")
}

func TestRejectedToken(t *testing.T) {
	setup(t)
	t.Setenv(client.TokenEnv, "not-a-token")

	code, _, stderr := runCLI(t, "me")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "token rejected")
}

func TestItemLifecycle(t *testing.T) {
	setup(t)
	login(t)

	code, stdout, _ := runCLI(t, "add", "Buy", "milk")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "added #1")

	code, stdout, _ = runCLI(t, "edit", "1", "Buy", "oat", "milk")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "edited #1")

	code, stdout, _ = runCLI(t, "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "☐ Buy oat milk")

	code, stdout, _ = runCLI(t, "toggle", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "#1 is now completed")

	code, stdout, _ = runCLI(t, "ls", "completed")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "☑ Buy oat milk")

	code, stdout, _ = runCLI(t, "ls", "active")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "(nothing here)")

	code, stdout, _ = runCLI(t, "clear")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "cleared completed items")

	code, stdout, _ = runCLI(t, "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "0 total")
}

func TestRemove_Missing(t *testing.T) {
	setup(t)
	login(t)

	code, _, stderr := runCLI(t, "rm", "42")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "rm:")
}

func TestList_Pages(t *testing.T) {
	setup(t)
	login(t)

	for _, body := range []string{"one", "two", "three"} {
		code, _, _ := runCLI(t, "add", body)
		require.Equal(t, 0, code)
	}

	code, stdout, _ := runCLI(t, "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "3 total")
	assert.Contains(t, stdout, "--page 2 for more")

	code, stdout, _ = runCLI(t, "ls", "--page=2")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "--page 1 for previous")
	assert.NotContains(t, stdout, "for more")

	code, _, _ = runCLI(t, "ls", "--page", "zero")
	assert.Equal(t, 2, code)
}

func TestRaw_Query(t *testing.T) {
	setup(t)
	login(t)

	code, _, _ := runCLI(t, "raw", "post", "/user/items", "--data", `{"body":"Buy milk"}`)
	require.Equal(t, 0, code)

	code, stdout, _ := runCLI(t, "raw", "GET", "user/items", "--query", "items.#.body")
	require.Equal(t, 0, code)
	assert.Equal(t, "Buy milk\n", stdout)

	code, stdout, _ = runCLI(t, "raw", "GET", "/user", "--query", "username")
	require.Equal(t, 0, code)
	assert.Equal(t, "grey\n", stdout)

	code, _, stderr := runCLI(t, "raw", "GET", "/user", "--query", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no match")

	code, _, _ = runCLI(t, "raw", "POST", "/user/items", "--data", "{broken")
	assert.Equal(t, 2, code)
}

func TestUsageErrors(t *testing.T) {
	setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"unknown", []string{"frobnicate"}},
		{"login arity", []string{"login", "grey"}},
		{"add empty", []string{"add"}},
		{"edit bad id", []string{"edit", "x", "body"}},
		{"toggle zero", []string{"toggle", "0"}},
		{"rm arity", []string{"rm"}},
		{"ls bad filter", []string{"ls", "done"}},
		{"raw arity", []string{"raw", "GET"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, 2, code)
		})
	}

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "todoism-cli <subcommand>")
}
