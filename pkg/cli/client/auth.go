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

package client

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// loginHandleSuffix is appended to usernames to form the email-shaped login
// identifier the backend natively supports. The scheme never leaves this
// package; the rest of the system only sees plain usernames.
const loginHandleSuffix = "@users.cyra.app"

// defaultKDFIteration is used when the backend does not report a per-account
// iteration count
const defaultKDFIteration = 100000

// Identity is an authenticated remote identity
type Identity struct {
	Username string
}

// LoginHandle converts the identity to the backend's native login identifier
func (i Identity) LoginHandle() string {
	return i.Username + loginHandleSuffix
}

// parseLoginHandle recovers the user-facing username from a login handle
func parseLoginHandle(handle string) Identity {
	return Identity{Username: strings.TrimSuffix(handle, loginHandleSuffix)}
}

// Session is an authenticated session on the backend
type Session struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

// presigninResponse is a response from the presignin endpoint
type presigninResponse struct {
	Iteration int `json:"iteration"`
}

func (c *Client) getPresignin(handle string) (presigninResponse, error) {
	v := url.Values{}
	v.Set("login", handle)

	res, err := c.doReq("GET", fmt.Sprintf("/v1/presignin?%s", v.Encode()), "")
	if err != nil {
		return presigninResponse{}, errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	var resp presigninResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return presigninResponse{}, errors.Wrap(err, "decoding payload")
	}

	return resp, nil
}

// deriveKey derives the authentication key for the given credential. The raw
// password never leaves the device.
func deriveKey(handle, password string, iteration int) string {
	if iteration == 0 {
		iteration = defaultKDFIteration
	}

	key := pbkdf2.Key([]byte(password), []byte(handle), iteration, 32, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

type registerPayload struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// CreateAccount registers a new account with the backend. The caller is
// responsible for a follow-up sign-in.
func (c *Client) CreateAccount(username, password string) error {
	handle := Identity{Username: username}.LoginHandle()

	presignin, err := c.getPresignin(handle)
	if err != nil {
		// a brand new account has no stored iteration; fall back to the default
		log.Debug("presignin before register failed: %v\n", err)
		presignin = presigninResponse{}
	}

	payload := registerPayload{
		Login:    handle,
		Password: deriveKey(handle, password, presignin.Iteration),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshaling payload")
	}

	_, err = c.doReq("POST", "/v1/accounts", string(b))
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsConflict() {
			return ErrUsernameTaken
		}
		return errors.Wrap(err, "making http request")
	}

	return nil
}

type signinPayload struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// SignIn requests a session token. Any backend auth rejection is reported as
// ErrInvalidCredentials.
func (c *Client) SignIn(username, password string) (Session, error) {
	handle := Identity{Username: username}.LoginHandle()

	presignin, err := c.getPresignin(handle)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && (httpErr.IsAuthRejection() || httpErr.StatusCode == http.StatusNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, errors.Wrap(err, "getting presignin")
	}

	payload := signinPayload{
		Login:    handle,
		Password: deriveKey(handle, password, presignin.Iteration),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Session{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := c.doReq("POST", "/v1/signin", string(b))
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && (httpErr.IsAuthRejection() || httpErr.StatusCode == http.StatusNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	var session Session
	if err := json.NewDecoder(res.Body).Decode(&session); err != nil {
		return Session{}, errors.Wrap(err, "decoding payload")
	}

	c.sessionKey = session.Key

	return session, nil
}

// SignOut deletes the session on the server side and drops it locally
func (c *Client) SignOut() error {
	_, err := c.doAuthorizedReq("POST", "/v1/signout", "")
	if err != nil {
		return errors.Wrap(err, "making http request")
	}

	c.sessionKey = ""

	return nil
}

type currentUserResponse struct {
	Login string `json:"login"`
}

// GetCurrentUser returns the identity of the current session, or nil when no
// valid session exists. An invalid session is a normal outcome, not an error.
func (c *Client) GetCurrentUser() (*Identity, error) {
	if c.sessionKey == "" {
		return nil, nil
	}

	res, err := c.doAuthorizedReq("GET", "/v1/me", "")
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsAuthRejection() {
			return nil, nil
		}
		return nil, errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	var resp currentUserResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "decoding payload")
	}

	identity := parseLoginHandle(resp.Login)
	return &identity, nil
}

// DeleteAccount deletes the identity's stored blob. Deletion of the
// authentication identity itself is best-effort because it typically requires
// elevated privileges the client does not hold.
func (c *Client) DeleteAccount() error {
	_, err := c.doAuthorizedReq("DELETE", "/v1/blob", "")
	if err != nil {
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
			return errors.Wrap(err, "deleting remote blob")
		}
	}

	if _, err := c.doAuthorizedReq("DELETE", "/v1/me", ""); err != nil {
		log.Debug("best-effort identity deletion failed: %v\n", err)
	}

	c.sessionKey = ""

	return nil
}
