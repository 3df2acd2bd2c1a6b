// ABOUTME: End-to-end tests for the web UI over a real SQLite store
// ABOUTME: Drives login, item routes, CSRF, locale switching and error pages through httptest

package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/i18n"
	"github.com/2389/todoism/internal/store"
	"github.com/2389/todoism/internal/todo"
)

type testEnv struct {
	store *store.SQLiteStore
	srv   *httptest.Server
	grey  *store.User
	li    *store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, nil)
}

func newTestEnvWithLogger(t *testing.T, logger *slog.Logger) *testEnv {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tr, err := i18n.New("")
	require.NoError(t, err)

	accounts := account.New(s, tr, nil)
	ui, err := New(s, todo.New(s, nil), accounts, tr, Config{}, logger)
	require.NoError(t, err)

	ctx := context.Background()
	grey, err := accounts.Register(ctx, "grey", "123")
	require.NoError(t, err)
	li, err := accounts.Register(ctx, "li", "456")
	require.NoError(t, err)

	srv := httptest.NewServer(ui)
	t.Cleanup(srv.Close)

	return &testEnv{store: s, srv: srv, grey: grey, li: li}
}

// createItem inserts an item directly, bypassing the web routes.
func (e *testEnv) createItem(t *testing.T, owner *store.User, body string, done bool) *store.Item {
	t.Helper()
	ctx := context.Background()
	item := &store.Item{Body: body, AuthorID: owner.ID}
	require.NoError(t, e.store.CreateItem(ctx, item))
	if done {
		_, err := e.store.ToggleItem(ctx, item.ID)
		require.NoError(t, err)
	}
	return item
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (e *testEnv) newBrowser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	b := &browser{
		t:    t,
		base: e.srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	// Pick up the CSRF cookie.
	resp, _ := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return b
}

func (b *browser) cookie(name string) string {
	u, _ := url.Parse(b.base)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *browser) do(method, path string, payload any, header http.Header) (*http.Response, string) {
	b.t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(b.t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(data)
}

func (b *browser) get(path string) (*http.Response, string) {
	return b.do(http.MethodGet, path, nil, nil)
}

// send issues a JSON request carrying the CSRF token and decodes the reply.
func (b *browser) send(method, path string, payload any) (int, map[string]any) {
	b.t.Helper()
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-CSRF-Token", b.cookie(CSRFCookieName))

	resp, body := b.do(method, path, payload, header)
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(b.t, json.Unmarshal([]byte(body), &out), body)
	}
	return resp.StatusCode, out
}

func (b *browser) login(username, password string) {
	b.t.Helper()
	status, data := b.send(http.MethodPost, "/login", map[string]string{"username": username, "password": password})
	require.Equal(b.t, http.StatusOK, status, data)
	require.Equal(b.t, "Login success.", data["message"])
}

func TestIndexAndIntro(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	_, body := b.get("/")
	assert.Contains(t, body, "Todoism")
	assert.Contains(t, body, `name="csrf-token"`)

	resp, body := b.get("/intro")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "We are todoist, we use todoism.")
	assert.Contains(t, body, "Login")
}

func TestChangeLanguage(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	status, data := b.send(http.MethodGet, "/set-locale/JP", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Invalid locale.", data["message"])

	status, data = b.send(http.MethodGet, "/set-locale/zh_Hans_CN", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Setting updated.", data["message"])

	_, body := b.get("/intro")
	assert.Contains(t, body, "我们是Todo爱好者，我们使用Todoism。")
	assert.Contains(t, body, "登录")
}

func TestAcceptLanguageSelectsLocale(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	header := http.Header{}
	header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	_, body := b.do(http.MethodGet, "/intro", nil, header)
	assert.Contains(t, body, "我们是Todo爱好者")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	b.login("grey", "123")
	assert.NotEmpty(t, b.cookie(SessionCookieName))

	// Already signed in: both login routes bounce to the app.
	resp, _ := b.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/app", resp.Header.Get("Location"))
}

func TestLogin_UsesInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnvWithLogger(t, slog.New(slog.NewJSONHandler(&buf, nil)))
	b := env.newBrowser(t)

	b.login("grey", "123")

	var found map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "user logged in" {
			found = entry
			break
		}
	}
	require.NotNil(t, found, buf.String())
	assert.Equal(t, "webui", found["component"])
	assert.Equal(t, "grey", found["username"])
}

func TestLogin_Form(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	form := url.Values{"username": {"grey"}, "password": {"123"}}
	req, err := http.NewRequest(http.MethodPost, b.base+"/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, b.cookie(SessionCookieName))
}

func TestFailLogin(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	status, data := b.send(http.MethodPost, "/login", map[string]string{"username": "bad-username", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid username or password.", data["message"])

	status, _ = b.send(http.MethodPost, "/login", map[string]string{"username": "grey", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, b.cookie(SessionCookieName))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)
	b.login("grey", "123")

	status, data := b.send(http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logout success.", data["message"])
	assert.Empty(t, b.cookie(SessionCookieName))

	resp, _ := b.get("/app")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestViewProtect(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	resp, _ := b.get("/app")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body := b.get("/login")
	assert.Contains(t, body, "Login on Todoism")

	status, data := b.send(http.MethodPost, "/items/new", map[string]string{"body": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Please log in to access this page.", data["message"])
}

func TestRegister_DemoAccount(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	status, data := b.send(http.MethodGet, "/register", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Generate success.", data["message"])
	username, _ := data["username"].(string)
	password, _ := data["password"].(string)
	require.NotEmpty(t, username)
	require.NotEmpty(t, password)

	b.login(username, password)
	resp, body := b.get("/app")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Witness something truly majestic")
	assert.Contains(t, body, `<span id="all-count">4</span>`)
	assert.Contains(t, body, `<span id="active-count">3</span>`)
	assert.Contains(t, body, `<span id="completed-count">1</span>`)
}

func TestNewItem(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)
	b.login("grey", "123")

	status, data := b.send(http.MethodPost, "/items/new", map[string]string{"body": "Buy milk"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "+1", data["message"])
	assert.Contains(t, data["html"], "Buy milk")

	status, data = b.send(http.MethodPost, "/items/new", map[string]string{"body": " "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid item body.", data["message"])

	status, _ = b.send(http.MethodPost, "/items/new", map[string]string{"title": "no body key"})
	assert.Equal(t, http.StatusBadRequest, status)

	count, err := env.store.CountItems(context.Background(), store.ItemFilter{AuthorID: env.grey.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEditItem(t *testing.T) {
	env := newTestEnv(t)
	mine := env.createItem(t, env.grey, "Test Item", false)
	theirs := env.createItem(t, env.li, "Test Item 2", false)
	b := env.newBrowser(t)
	b.login("grey", "123")

	status, data := b.send(http.MethodPut, itemPath(mine.ID, "edit"), map[string]string{"body": "New Item Body"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Item updated.", data["message"])

	got, err := env.store.GetItem(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Item Body", got.Body)

	status, data = b.send(http.MethodPut, itemPath(mine.ID, "edit"), map[string]string{"body": " "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid item body.", data["message"])

	status, data = b.send(http.MethodPut, itemPath(theirs.ID, "edit"), map[string]string{"body": "hijack"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Permission denied.", data["message"])

	status, data = b.send(http.MethodPut, "/item/9999/edit", map[string]string{"body": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Item not found.", data["message"])

	status, _ = b.send(http.MethodPut, "/item/abc/edit", map[string]string{"body": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestToggleItem(t *testing.T) {
	env := newTestEnv(t)
	mine := env.createItem(t, env.grey, "Test Item", false)
	theirs := env.createItem(t, env.li, "Test Item 2", false)
	b := env.newBrowser(t)
	b.login("grey", "123")

	status, data := b.send(http.MethodPatch, itemPath(mine.ID, "toggle"), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Item toggled.", data["message"])

	got, err := env.store.GetItem(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)

	status, data = b.send(http.MethodPatch, itemPath(theirs.ID, "toggle"), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Permission denied.", data["message"])
}

func TestDeleteItem(t *testing.T) {
	env := newTestEnv(t)
	mine := env.createItem(t, env.grey, "Test Item", false)
	theirs := env.createItem(t, env.li, "Test Item 2", false)
	b := env.newBrowser(t)
	b.login("grey", "123")

	status, data := b.send(http.MethodDelete, itemPath(mine.ID, "delete"), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Item deleted.", data["message"])

	_, err := env.store.GetItem(context.Background(), mine.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	status, _ = b.send(http.MethodDelete, itemPath(theirs.ID, "delete"), nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestClearItems(t *testing.T) {
	env := newTestEnv(t)
	env.createItem(t, env.grey, "active", false)
	env.createItem(t, env.grey, "done", true)
	liDone := env.createItem(t, env.li, "li done", true)
	b := env.newBrowser(t)
	b.login("grey", "123")

	status, data := b.send(http.MethodDelete, "/item/clear", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "All clear!", data["message"])

	ctx := context.Background()
	count, err := env.store.CountItems(ctx, store.ItemFilter{AuthorID: env.grey.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = env.store.GetItem(ctx, liDone.ID)
	assert.NoError(t, err)
}

func TestCSRFRequired(t *testing.T) {
	env := newTestEnv(t)
	mine := env.createItem(t, env.grey, "Test Item", false)
	b := env.newBrowser(t)
	b.login("grey", "123")

	header := http.Header{}
	header.Set("Accept", "application/json")
	resp, body := b.do(http.MethodPatch, itemPath(mine.ID, "toggle"), nil, header)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "The CSRF token is missing or invalid.")

	header.Set("X-CSRF-Token", "forged")
	resp, _ = b.do(http.MethodPatch, itemPath(mine.ID, "toggle"), nil, header)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	got, err := env.store.GetItem(context.Background(), mine.ID)
	require.NoError(t, err)
	assert.False(t, got.Done)
}

func TestSetLocale_PersistsForUser(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)
	b.login("grey", "123")

	status, _ := b.send(http.MethodGet, "/set-locale/zh_Hans_CN", nil)
	require.Equal(t, http.StatusOK, status)

	user, err := env.store.GetUser(context.Background(), env.grey.ID)
	require.NoError(t, err)
	assert.Equal(t, "zh_Hans_CN", user.Locale)

	status, data := b.send(http.MethodPost, "/items/new", map[string]string{"body": " "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "无效的条目内容。", data["message"])

	// The stored preference follows the user to a fresh browser.
	other := env.newBrowser(t)
	other.login("grey", "123")
	_, body := other.get("/app")
	assert.Contains(t, body, "你要做些什么？")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	b := env.newBrowser(t)

	status, data := b.send(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "The requested URL was not found on the server.", data["message"])
	assert.EqualValues(t, 404, data["code"])

	resp, body := b.get("/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Page Not Found")

	status, data = b.send(http.MethodGet, "/item/1/edit", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "The method is not allowed for the requested URL.", data["message"])
}

func itemPath(id int64, action string) string {
	return "/item/" + strconv.FormatInt(id, 10) + "/" + action
}
