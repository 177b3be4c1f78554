package model

// Session is the locally held credential: an opaque bearer token plus the
// identity it was issued for. The zero Session is the unauthenticated state.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// IsAdmin reports whether the session identity has administrator rights.
func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.IsAdmin
}
