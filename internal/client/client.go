// ABOUTME: HTTP client for the todoism API with bearer token auth
// ABOUTME: Wraps token grant, user, collection and item calls

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const apiPrefix = "/api/v1"

// ErrNoToken is returned by calls that need a token when none is set.
var ErrNoToken = errors.New("no API token (run login first)")

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// User is the current user with their item counts.
type User struct {
	ID        string
	Username  string
	All       int
	Active    int
	Completed int
}

// Item is one todo item.
type Item struct {
	ID   int64
	Body string
	Done bool
}

// Collection is one page of items.
type Collection struct {
	Items   []Item
	Count   int
	HasPrev bool
	HasNext bool
}

// Client calls the todoism API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token exchanges a username and password for an access token.
func (c *Client) Token(ctx context.Context, username, password string) (string, time.Duration, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, err := c.send(req)
	if err != nil {
		return "", 0, err
	}

	token := gjson.GetBytes(data, "access_token").String()
	if token == "" {
		return "", 0, errors.New("token response has no access_token")
	}
	expiresIn := time.Duration(gjson.GetBytes(data, "expires_in").Int()) * time.Second
	return token, expiresIn, nil
}

// Me returns the current user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	data, err := c.Raw(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(data)
	return &User{
		ID:        doc.Get("id").String(),
		Username:  doc.Get("username").String(),
		All:       int(doc.Get("all_item_count").Int()),
		Active:    int(doc.Get("active_item_count").Int()),
		Completed: int(doc.Get("completed_item_count").Int()),
	}, nil
}

// Items lists one page of items. filter is "all", "active" or "completed";
// perPage <= 0 uses the server default.
func (c *Client) Items(ctx context.Context, filter string, page, perPage int) (*Collection, error) {
	path := "/user/items"
	switch filter {
	case "", "all":
	case "active", "completed":
		path += "/" + filter
	default:
		return nil, fmt.Errorf("unknown filter %q", filter)
	}

	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	data, err := c.Raw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(data)
	col := &Collection{
		Count:   int(doc.Get("count").Int()),
		HasPrev: doc.Get("prev").Type == gjson.String,
		HasNext: doc.Get("next").Type == gjson.String,
	}
	for _, it := range doc.Get("items").Array() {
		col.Items = append(col.Items, parseItem(it))
	}
	return col, nil
}

// Create adds an item.
func (c *Client) Create(ctx context.Context, body string) (*Item, error) {
	data, err := c.Raw(ctx, http.MethodPost, "/user/items", map[string]string{"body": body})
	if err != nil {
		return nil, err
	}
	item := parseItem(gjson.ParseBytes(data))
	return &item, nil
}

// Get returns one item.
func (c *Client) Get(ctx context.Context, id int64) (*Item, error) {
	data, err := c.Raw(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, err
	}
	item := parseItem(gjson.ParseBytes(data))
	return &item, nil
}

// Edit replaces an item's body.
func (c *Client) Edit(ctx context.Context, id int64, body string) error {
	_, err := c.Raw(ctx, http.MethodPut, itemPath(id), map[string]string{"body": body})
	return err
}

// Toggle flips an item's done flag.
func (c *Client) Toggle(ctx context.Context, id int64) error {
	_, err := c.Raw(ctx, http.MethodPatch, itemPath(id), nil)
	return err
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.Raw(ctx, http.MethodDelete, itemPath(id), nil)
	return err
}

// ClearCompleted removes every completed item.
func (c *Client) ClearCompleted(ctx context.Context) error {
	_, err := c.Raw(ctx, http.MethodDelete, "/user/items/completed", nil)
	return err
}

// Raw performs an authenticated call against path (relative to /api/v1) and
// returns the response body. payload, when non-nil, is sent as JSON.
func (c *Client) Raw(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Status:  resp.StatusCode,
			Message: gjson.GetBytes(data, "message").String(),
		}
	}
	return data, nil
}

func itemPath(id int64) string {
	return "/user/items/" + strconv.FormatInt(id, 10)
}

func parseItem(v gjson.Result) Item {
	return Item{
		ID:   v.Get("id").Int(),
		Body: v.Get("body").String(),
		Done: v.Get("done").Bool(),
	}
}
