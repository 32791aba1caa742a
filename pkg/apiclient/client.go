// Package apiclient is a Go client for the scheduling API. A protected call rejected with 401
// triggers a silent session renewal through the refresh cookie, then one replay.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRenewTimeout = 5 * time.Second
	defaultHTTPTimeout  = 30 * time.Second

	loginPath   = "/api/auth/login"
	refreshPath = "/api/auth/refresh-token"
	logoutPath  = "/api/auth/logout"
	mePath      = "/api/auth/me"
)

// ErrSessionExpired means the session cannot be renewed and the user has to log in again.
var ErrSessionExpired = errors.New("apiclient: session expired")

// StatusError is a non-2xx API response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("apiclient: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("apiclient: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func isSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// HTTPClient is copied; a cookie jar is added when it has none.
	HTTPClient *http.Client
	// RenewTimeout bounds a single renewal call. Requests waiting on it fail once it elapses.
	RenewTimeout time.Duration
	Logger       *zap.Logger
}

// User is the public identity returned by the API.
type User struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	StoreID        *string  `json:"storeId"`
	Qualifications []string `json:"qualifications"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Phone          string   `json:"phone"`
}

// ProfileUpdate carries the self-service fields of PUT /api/auth/me. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Client talks to the API on behalf of one user session. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	session *session
}

// New builds a client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	var hc http.Client
	if cfg.HTTPClient != nil {
		hc = *cfg.HTTPClient
	} else {
		hc.Timeout = defaultHTTPTimeout
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RenewTimeout
	if timeout <= 0 {
		timeout = defaultRenewTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(base.String(), "/"),
		http:    &hc,
		logger:  logger,
	}
	c.session = newSession(c.renew, timeout, logger)
	return c, nil
}

// AccessToken returns the current access token, or "" when logged out.
func (c *Client) AccessToken() string {
	return c.session.current()
}

// SetAccessToken installs a previously obtained access token and starts a new session.
func (c *Client) SetAccessToken(token string) {
	c.session.reset(token)
}

// Login authenticates and stores the access token. The refresh cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
		User        User   `json:"user"`
	}
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	if err := c.send(ctx, http.MethodPost, loginPath, payload, "", &out); err != nil {
		return nil, err
	}
	c.session.reset(out.AccessToken)
	return &out.User, nil
}

// Logout clears the server cookie and forgets the access token. It is safe to call repeatedly.
func (c *Client) Logout(ctx context.Context) error {
	token := c.session.current()
	c.session.reset("")
	return c.send(ctx, http.MethodPost, logoutPath, nil, token, nil)
}

// Me returns the caller's identity.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, mePath, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateMe applies a profile update and returns the stored identity.
func (c *Client) UpdateMe(ctx context.Context, update ProfileUpdate) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodPut, mePath, update, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Do performs an authenticated JSON call. A 401 triggers one renewal and one replay of the
// request; a second 401 returns ErrSessionExpired. Other failures are returned as
// *StatusError without retrying.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}

	used := c.session.current()
	err := c.send(ctx, method, path, payload, used, out)
	if !isUnauthorized(err) {
		return err
	}

	token, renewErr := c.session.tokenAfter(ctx, used)
	if renewErr != nil {
		return renewErr
	}

	err = c.send(ctx, method, path, payload, token, out)
	if isUnauthorized(err) {
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return err
}

func (c *Client) renew(ctx context.Context) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	err := c.send(ctx, http.MethodPost, refreshPath, nil, "", &out)
	var statusErr *StatusError
	if errors.As(err, &statusErr) &&
		(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("apiclient: renewal returned no access token")
	}
	return out.AccessToken, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&envelope); err == nil {
		statusErr.Code = envelope.Error.Code
		statusErr.Message = envelope.Error.Message
	}
	return statusErr
}

func isUnauthorized(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}
