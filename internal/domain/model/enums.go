package model

// SampleStatus represents the pipeline state of a sample.
type SampleStatus string

const (
	SampleStatusQueued    SampleStatus = "queued"
	SampleStatusRunning   SampleStatus = "running"
	SampleStatusCompleted SampleStatus = "completed"
	SampleStatusFailed    SampleStatus = "failed"
)

// IsFinished reports whether the sample has left the pipeline.
func (s SampleStatus) IsFinished() bool {
	return s == SampleStatusCompleted || s == SampleStatusFailed
}

// ArtifactKind identifies a downloadable artifact of a sample.
type ArtifactKind string

const (
	ArtifactInputH5     ArtifactKind = "h5"
	ArtifactInputCSV    ArtifactKind = "csv"
	ArtifactResult      ArtifactKind = "result"
	ArtifactAdminResult ArtifactKind = "admin-result"
)
