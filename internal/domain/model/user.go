package model

// User is the identity record returned by the backend on login and by the
// admin user listing.
type User struct {
	ID                        int64  `json:"id"`
	Email                     string `json:"email"`
	Activated                 bool   `json:"activated"`
	Enabled                   bool   `json:"enabled"`
	Quota                     int    `json:"quota"`
	LastSubmissionTimestamp   int64  `json:"last_submission_timestamp"`
	IsAdmin                   bool   `json:"is_admin"`
	IsRunner                  bool   `json:"is_runner"`
	FullResults               bool   `json:"full_results"`
	SubmissionIntervalMinutes int    `json:"submission_interval_minutes"`
}
