package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const (
	contentTypeJSON = "application/json"
	maxErrorBody    = 64 * 1024
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error (status: %d, code: %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error (status: %d): %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsConflict reports whether err is a 409 from the backend, e.g. duplicate CPF.
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// errorPayload covers both error shapes the backend produces.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return apiErr
	}

	var p errorPayload
	if err := json.Unmarshal(b, &p); err != nil {
		apiErr.Message = string(bytes.TrimSpace(b))
		return apiErr
	}

	apiErr.Code = p.Code
	switch {
	case p.Message != "":
		apiErr.Message = p.Message
	case p.Error != "":
		apiErr.Message = p.Error
	}
	return apiErr
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP %s request: %w", method, err)
	}

	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(requestIDHeader, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// do sends the request and turns non-2xx responses into *APIError.
// The caller closes the body of successful responses.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	slog.Debug("api request",
		"method", req.Method,
		"url", req.URL.String(),
		"request_id", req.Header.Get(requestIDHeader))

	resp, err := c.http.Do(req) //nolint:gosec // URL built from configured base
	if err != nil {
		return nil, fmt.Errorf("error sending %s %s: %w", req.Method, req.URL.Path, err)
	}

	PrintHTTPResponse(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// doJSON sends in as JSON (when not nil) and decodes the response into out (when not nil).
func (c *Client) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = contentTypeJSON
	}

	req, err := c.newRequest(ctx, method, url, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding content: %w", err)
	}
	return nil
}
