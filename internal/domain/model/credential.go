package model

import "time"

// Credential is one persisted secret. Service names the stored item
// ("session.token", "session.user").
type Credential struct {
	ID        int64
	Service   string
	Value     string
	UpdatedAt time.Time
}
