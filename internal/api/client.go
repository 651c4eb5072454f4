// Package api is the REST client for the bits-and-pieces backend. Every
// durable entity (categories, budgets, incomes, expenses) lives behind it;
// the client holds nothing but the session it was handed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bitsandpieces/bitstui/internal/session"
)

// ErrUnauthorized marks a 401 from the backend; the UI reacts by dropping
// back to the auth screen.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is any other non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// Client issues authenticated requests against one backend instance.
type Client struct {
	baseURL string
	http    *http.Client
	sess    session.Session
	log     *logrus.Entry
}

// New builds a client for baseURL. The session may be empty; login and
// register work unauthenticated, everything else will 401.
func New(baseURL string, timeout time.Duration, sess session.Session, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		sess:    sess,
		log:     log.WithField("component", "api"),
	}
}

// SetSession installs the session after a successful login or register.
func (c *Client) SetSession(sess session.Session) { c.sess = sess }

// ClearSession drops the session on logout.
func (c *Client) ClearSession() { c.sess = session.Session{} }

// Session returns the current session.
func (c *Client) Session() session.Session { return c.sess }

// do runs one request. path must start with "/" and may carry a query
// string. When out is non-nil the response body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sess.Token != "" {
		req.Header.Set("Authorization", "Token "+c.sess.Token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method":     method,
			"path":       path,
			"request_id": requestID,
		}).WithError(err).Warn("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
		"request_id":  requestID,
	}).Debug("request")

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
