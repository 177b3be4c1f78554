package application

import "errors"

var (
	// ErrNotAuthenticated is returned by use cases that need a logged-in user.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrAdminRequired is returned by administrative use cases when the
	// session does not belong to an administrator.
	ErrAdminRequired = errors.New("admin account required")
)
