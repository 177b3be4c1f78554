package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// ErrNoFileSaver is returned by Retrieve when the client was built without
// WithFileSaver.
var ErrNoFileSaver = errors.New("no file saver configured")

// Retrieve posts body to endpoint, expects a binary payload back and hands it
// to the configured FileSaver under filename. The saver runs exactly once on
// success and never on failure. It returns the saved location.
func (c *Client) Retrieve(ctx context.Context, endpoint string, body any, filename string) (string, error) {
	if c.saver == nil {
		return "", ErrNoFileSaver
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", c.contentType)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.do(req, endpoint)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s payload: %w", endpoint, err)
	}

	location, err := c.saver.SaveBytes(ctx, data, filename)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", filename, err)
	}

	c.logger.Info("artifact saved",
		"endpoint", endpoint,
		"filename", filename,
		"bytes", len(data),
		"location", location,
	)
	return location, nil
}

// Download retrieves one artifact of a sample. name is the sample's display
// name and determines the saved filename.
func (c *Client) Download(ctx context.Context, kind model.ArtifactKind, sampleID int64, name string) (string, error) {
	dl, err := model.NewDownloadRequest(kind, sampleID, name)
	if err != nil {
		return "", err
	}
	return c.Retrieve(ctx, dl.Endpoint, dl.Body, dl.Filename)
}

// DownloadInputH5 saves the sample's raw matrix file as <name>.h5.
func (c *Client) DownloadInputH5(ctx context.Context, sampleID int64, name string) (string, error) {
	return c.Download(ctx, model.ArtifactInputH5, sampleID, name)
}

// DownloadInputCSV saves the sample's CSV input as <name>.csv.
func (c *Client) DownloadInputCSV(ctx context.Context, sampleID int64, name string) (string, error) {
	return c.Download(ctx, model.ArtifactInputCSV, sampleID, name)
}

// DownloadResult saves the sample's result archive as <name>.zip.
func (c *Client) DownloadResult(ctx context.Context, sampleID int64, name string) (string, error) {
	return c.Download(ctx, model.ArtifactResult, sampleID, name)
}

// DownloadAdminResult saves the full administrator result archive as
// <name>_admin.zip.
func (c *Client) DownloadAdminResult(ctx context.Context, sampleID int64, name string) (string, error) {
	return c.Download(ctx, model.ArtifactAdminResult, sampleID, name)
}
