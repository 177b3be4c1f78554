package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// authFaultBoundary is the highest status that is still treated as an
// ordinary application error. Exactly 400 is what the backend returns for
// validation failures ("Sample not found", "Admin account required"), so it
// does not end the session.
const authFaultBoundary = http.StatusBadRequest

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// StatusError is returned for every response with status >= 400.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string // Server "message" field, or a trimmed body excerpt.
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Message)
}

// AuthFault reports whether the status invalidated the session.
func (e *StatusError) AuthFault() bool {
	return e.StatusCode > authFaultBoundary
}

// IsAuthFault reports whether err carries an authorization-class StatusError.
func IsAuthFault(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.AuthFault()
}

// do sends req and classifies the outcome. A transport failure returns the
// wrapped error untouched by fault handling. Statuses >= 400 become a
// *StatusError; above authFaultBoundary the rejected credential's cache is
// dropped and the auth fault handler runs first, with the token the request
// was actually sent with.
// On success the caller owns resp.Body.
func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	req, stamped := withStampedToken(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, endpoint, err)
	}

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}
	defer func() { _ = resp.Body.Close() }()

	statusErr := &StatusError{
		Method:     req.Method,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Message:    readErrorMessage(resp.Body),
	}

	if statusErr.AuthFault() {
		c.logger.Warn("authorization fault, ending session",
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
		c.cache.purge(stamped.token)
		if c.onAuthFault != nil {
			c.onAuthFault(resp.StatusCode, stamped.token)
		}
	}

	return nil, statusErr
}

// readErrorMessage extracts {"message": "..."} from an error body, falling
// back to the first line of the raw text.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message
	}

	text := strings.TrimSpace(string(raw))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const maxLen = 200
	if len(text) > maxLen {
		text = text[:maxLen]
	}
	return text
}
