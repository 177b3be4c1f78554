package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

const bearerPrefix = "Bearer "

// stampedToken receives the token bearerTransport put on a request, so the
// fault detector can tell which credential a rejection was aimed at.
type stampedToken struct {
	token string
}

type stampedTokenKey struct{}

// withStampedToken returns req with an empty stampedToken attached.
func withStampedToken(req *http.Request) (*http.Request, *stampedToken) {
	st := &stampedToken{}
	return req.WithContext(context.WithValue(req.Context(), stampedTokenKey{}, st)), st
}

// bearerTransport sets the Authorization header of every request from the
// token source. The token is read per request, never cached.
type bearerTransport struct {
	tokens driven.TokenSource
	next   http.RoundTripper
}

// RoundTrip implements http.RoundTripper. An empty token is still sent; the
// server rejects it and the fault path takes over.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.tokens != nil {
		token = t.tokens.Token()
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", bearerPrefix+token)
	if st, ok := r.Context().Value(stampedTokenKey{}).(*stampedToken); ok {
		st.token = token
	}

	return t.next.RoundTrip(r)
}

// loggingTransport tags each request with an X-Request-Id and logs method,
// path, status and duration.
type loggingTransport struct {
	logger *slog.Logger
	next   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	r := req.Clone(req.Context())
	r.Header.Set("X-Request-Id", requestID)

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		t.logger.Debug("api request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
			"duration", time.Since(start).Round(time.Microsecond),
		)
		return nil, err
	}

	t.logger.Debug("api request",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"from_cache", resp.Header.Get("X-From-Cache") == "1",
		"duration", time.Since(start).Round(time.Microsecond),
	)
	return resp, nil
}
