/* Copyright 2025 Cyra Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package client implements the remote account client: authentication and
// bulk-blob storage over the Cyra backend, plus the data structures for
// responses
package client

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cyra-app/cyra/pkg/cli/consts"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrInvalidCredentials is an error for a rejected sign-in. The backend's
// specific rejection is never surfaced so that callers cannot tell which part
// of the credential was wrong.
var ErrInvalidCredentials = errors.New("wrong credentials")

// ErrUsernameTaken is an error for creating an account with a username that
// is already registered
var ErrUsernameTaken = errors.New("username already taken")

// ErrNotConfigured is an error for using the client without valid backend
// endpoint and key values
var ErrNotConfigured = errors.New("remote backend is not configured")

// ErrNotSignedIn is an error for an authorized request without a session
var ErrNotSignedIn = errors.New("no session key found")

// ErrExport is an error for a failed blob export
var ErrExport = errors.New("failed to export cloud data")

// ErrRestore is an error for an inbound cloud blob that could not be read
// structurally
var ErrRestore = errors.New("failed to restore cloud data")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsConflict returns true if the error is a 409 Conflict error
func (e *HTTPError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsAuthRejection returns true if the error indicates that the backend
// rejected the caller's credentials or session
func (e *HTTPError) IsAuthRejection() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100

	// healthCheckTimeout bounds the connectivity probe
	healthCheckTimeout = 3 * time.Second
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

// Config is the configuration for a client
type Config struct {
	// Endpoint is the base URL of the backend API
	Endpoint string
	// APIKey is the project key sent with every request
	APIKey string
	// SessionKey is the session to resume, if any
	SessionKey string
	// Version is the client version reported to the backend
	Version string
	// HTTPClient is the underlying http client. If nil, a default client is used.
	HTTPClient *http.Client
}

// Client talks to the Cyra backend. One client holds at most one session at a
// time; the sync engine guarantees that no two local profiles share a session.
type Client struct {
	endpoint   string
	apiKey     string
	version    string
	sessionKey string
	hc         *http.Client
}

// New returns a new client with the given configuration
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		version:    cfg.Version,
		sessionKey: cfg.SessionKey,
		hc:         hc,
	}
}

// IsConfigured returns whether valid, non-placeholder endpoint and key values
// are present. Every other method is an early failure when this is false.
func (c *Client) IsConfigured() bool {
	if c.endpoint == "" || c.apiKey == "" {
		return false
	}
	if c.endpoint == strings.TrimRight(consts.PlaceholderAPIEndpoint, "/") {
		return false
	}
	if c.apiKey == consts.PlaceholderAPIKey {
		return false
	}

	return true
}

// SetSession replaces the client's session key
func (c *Client) SetSession(key string) {
	c.sessionKey = key
}

// ClearSession drops the client's session key
func (c *Client) ClearSession() {
	c.sessionKey = ""
}

func (c *Client) getReq(method, path, body string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", c.endpoint, path)
	req, err := http.NewRequest(method, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", c.version)
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.sessionKey != "" {
		credential := fmt.Sprintf("Bearer %s", c.sessionKey)
		req.Header.Set("Authorization", credential)
	}

	return req, nil
}

// checkRespErr checks if the given http response indicates an error. It
// returns a decoded error message if so.
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

// doReq does a http request to the given path in the api endpoint
func (c *Client) doReq(method, path, body string) (*http.Response, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	req, err := c.getReq(method, path, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.hc.Do(req)
	if err != nil {
		return res, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return res, errors.Wrap(err, "server responded with an error")
	}

	return res, nil
}

// doAuthorizedReq does a http request to the given path in the api endpoint
// as a user, with the appropriate headers. The given path should include the
// preceding slash.
func (c *Client) doAuthorizedReq(method, path, body string) (*http.Response, error) {
	if c.sessionKey == "" {
		return nil, ErrNotSignedIn
	}

	return c.doReq(method, path, body)
}

// CheckConnection reports whether the backend is reachable. It is queried
// before every remote-touching operation; absence of connectivity is treated
// by callers as NoNetwork, never as a silent skip for user-initiated actions.
func (c *Client) CheckConnection() bool {
	if !c.IsConfigured() {
		return false
	}

	req, err := c.getReq("GET", "/v1/health", "")
	if err != nil {
		return false
	}

	hc := &http.Client{
		Transport: c.hc.Transport,
		Timeout:   healthCheckTimeout,
	}

	res, err := hc.Do(req)
	if err != nil {
		log.Debug("connectivity probe failed: %v\n", err)
		return false
	}
	defer res.Body.Close()

	return res.StatusCode < 500
}
