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

	"github.com/google/uuid"
)

// HTTPError represents a non-2xx response from the recipe service. The
// status code is kept for diagnostics only; every non-2xx is a failure.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("API %s %s failed: %d", e.Method, e.Path, e.StatusCode)
}

// TransportError is a failure to get a usable answer out of the backend:
// the request never completed, the body could not be read, or it could not
// be decoded. A timeout of the HTTP client itself lands here too, even
// though the wrapped error matches context.DeadlineExceeded.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportFailure reports whether err came from talking to the backend
// (network error, non-2xx response, undecodable body). Cancellation of the
// caller's context is returned bare and is not a transport failure.
func IsTransportFailure(err error) bool {
	var te *TransportError
	var he *HTTPError
	return errors.As(err, &te) || errors.As(err, &he)
}

// joinURL collapses the slashes between base and path to exactly one.
// An empty base yields the path unchanged.
func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// do sends one JSON request. When out is non-nil the response body is
// decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(c.baseURL, path), reader)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.log.Debug("%s %s (request=%s)", method, path, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: respBody}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
