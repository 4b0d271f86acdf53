// Package client talks to the planner storage service over HTTP.
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
	"strings"
	"sync"
	"time"

	"github.com/cppla/planner/models"
)

// DefaultTimeout bounds every request made with the default HTTP client.
const DefaultTimeout = 15 * time.Second

// Result is the outcome of one collaborator call. It never carries a Go error;
// transport and decode failures are reported with Success false.
type Result struct {
	Success bool
	Data    json.RawMessage
	Error   string
	// Status is the HTTP status, 0 when the request never completed.
	Status int
}

// Decode unmarshals Data into v.
func (r Result) Decode(v interface{}) error {
	if !r.Success {
		return errors.New(r.Error)
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Err returns nil for a successful result and an error carrying the message otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}

func failure(format string, args ...interface{}) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client with its 15 second timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken starts the client with a bearer token from a previous session.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the service at baseURL (for example http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if t := c.Token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	return req, nil
}

// call performs a JSON request and unwraps the {code, message, data} envelope.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body interface{}) Result {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return failure("build request: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return failure("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return Result{Status: resp.StatusCode, Error: fmt.Sprintf("read response: %v", err)}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Result{Status: resp.StatusCode, Error: fmt.Sprintf("unexpected response (%s)", resp.Status)}
	}
	if resp.StatusCode >= 300 || env.Code != 0 {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return Result{Status: resp.StatusCode, Error: msg}
	}
	return Result{Success: true, Data: env.Data, Status: resp.StatusCode}
}

type authPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (c *Client) storeAuth(res Result) (*models.User, Result) {
	if !res.Success {
		return nil, res
	}
	var p authPayload
	if err := res.Decode(&p); err != nil || p.Token == "" {
		return nil, failure("malformed sign-in response")
	}
	c.setToken(p.Token)
	return p.User, res
}

// GetCurrentUser returns the signed-in user, or nil with a successful Result when there is no
// valid session.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, Result) {
	if c.Token() == "" {
		return nil, Result{Success: true}
	}
	res := c.call(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil)
	if res.Status == http.StatusUnauthorized {
		return nil, Result{Success: true, Status: res.Status}
	}
	if !res.Success {
		return nil, res
	}
	var u models.User
	if err := res.Decode(&u); err != nil {
		return nil, failure("decode user: %v", err)
	}
	return &u, res
}

// CreateAccount registers and signs in. Callers validate the password confirmation first.
func (c *Client) CreateAccount(ctx context.Context, email, password, displayName string) (*models.User, Result) {
	res := c.call(ctx, http.MethodPost, "/api/v1/auth/register", nil, map[string]string{
		"email":        email,
		"password":     password,
		"confirm":      password,
		"display_name": displayName,
	})
	return c.storeAuth(res)
}

// Authenticate signs in with email and password and keeps the token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*models.User, Result) {
	res := c.call(ctx, http.MethodPost, "/api/v1/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	return c.storeAuth(res)
}

// EndSession revokes the token on the server. The local token is dropped either way.
func (c *Client) EndSession(ctx context.Context) Result {
	if c.Token() == "" {
		return Result{Success: true}
	}
	res := c.call(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	c.setToken("")
	return res
}

func ownerQuery(userID string) url.Values {
	if userID == "" {
		return nil
	}
	return url.Values{"user_id": {userID}}
}

// Upsert writes one record. Data holds a one element array with the stored row.
func (c *Client) Upsert(ctx context.Context, table string, record interface{}) Result {
	return c.call(ctx, http.MethodPost, "/api/v1/tables/"+url.PathEscape(table), nil, record)
}

// QueryAll returns every row the user owns in table.
func (c *Client) QueryAll(ctx context.Context, table, userID string) Result {
	return c.call(ctx, http.MethodGet, "/api/v1/tables/"+url.PathEscape(table), ownerQuery(userID), nil)
}

// DeleteByID removes the user's row with id.
func (c *Client) DeleteByID(ctx context.Context, table, id, userID string) Result {
	return c.call(ctx, http.MethodDelete, "/api/v1/tables/"+url.PathEscape(table)+"/"+url.PathEscape(id), ownerQuery(userID), nil)
}

// Stats returns the dashboard counters of date (today when empty).
func (c *Client) Stats(ctx context.Context, date string) Result {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	return c.call(ctx, http.MethodGet, "/api/v1/stats", q, nil)
}

// Quote returns the quote of the day.
func (c *Client) Quote(ctx context.Context) Result {
	return c.call(ctx, http.MethodGet, "/api/v1/config/quote", nil, nil)
}

// Export downloads the HTML page of one day.
func (c *Client) Export(ctx context.Context, date, timeFormat, theme string) ([]byte, Result) {
	q := url.Values{"date": {date}}
	if timeFormat != "" {
		q.Set("time_format", timeFormat)
	}
	if theme != "" {
		q.Set("theme", theme)
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/export/day", q, nil)
	if err != nil {
		return nil, failure("build request: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failure("export: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, Result{Status: resp.StatusCode, Error: fmt.Sprintf("read export: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		var env envelope
		msg := resp.Status
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			msg = env.Message
		}
		return nil, Result{Status: resp.StatusCode, Error: msg}
	}
	return body, Result{Success: true, Status: resp.StatusCode}
}
