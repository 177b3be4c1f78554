package model

import "time"

// Sample is a submitted sample as listed by the backend.
type Sample struct {
	ID            int64        `json:"id"`
	Email         string       `json:"email"`
	Name          string       `json:"name"`
	TumorType     string       `json:"tumor_type"`
	Source        string       `json:"source"`
	Timestamp     int64        `json:"timestamp"` // Unix seconds.
	Status        SampleStatus `json:"status"`
	HasResultsZip bool         `json:"has_results_zip"`
}

// SubmittedAt returns the submission time.
func (s Sample) SubmittedAt() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// SampleSubmission describes a new sample to upload. H5Path and CSVPath name
// local files.
type SampleSubmission struct {
	Name      string `validate:"required,max=128"`
	TumorType string `validate:"required,max=128"`
	Source    string `validate:"required,max=128"`
	H5Path    string `validate:"required"`
	CSVPath   string `validate:"required"`
}
