package model

import "fmt"

// DownloadRequest is the transient description of one binary retrieval.
type DownloadRequest struct {
	Endpoint string
	Body     any
	Filename string
}

// SampleRef is the request body identifying a sample on the download endpoints.
type SampleRef struct {
	SampleID int64 `json:"sample_id"`
}

// NewDownloadRequest builds the request for the given artifact of a sample.
// name is the sample's display name and only affects the saved filename.
func NewDownloadRequest(kind ArtifactKind, sampleID int64, name string) (DownloadRequest, error) {
	var endpoint, filename string
	switch kind {
	case ArtifactInputH5:
		endpoint, filename = "input_h5_file", name+".h5"
	case ArtifactInputCSV:
		endpoint, filename = "input_csv_file", name+".csv"
	case ArtifactResult:
		endpoint, filename = "result", name+".zip"
	case ArtifactAdminResult:
		endpoint, filename = "admin/result", name+"_admin.zip"
	default:
		return DownloadRequest{}, fmt.Errorf("unknown artifact kind %q", kind)
	}

	return DownloadRequest{
		Endpoint: endpoint,
		Body:     SampleRef{SampleID: sampleID},
		Filename: filename,
	}, nil
}
