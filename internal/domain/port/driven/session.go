// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// TokenSource yields the bearer token to attach to an outgoing request. It is
// consulted once per request, at dispatch time.
type TokenSource interface {
	Token() string
}

// SessionStore holds the current session.
type SessionStore interface {
	TokenSource

	// Session returns a snapshot of the current session.
	Session() model.Session

	// Establish replaces the current session, e.g. after a login. The new
	// session is in effect even when persisting it fails.
	Establish(ctx context.Context, session model.Session) error

	// Teardown clears token and identity. It is synchronous and idempotent.
	Teardown()
}
