package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// Samples lists the logged-in user's samples, newest first.
func (c *Client) Samples(ctx context.Context) ([]model.Sample, error) {
	var samples []model.Sample
	if err := c.getJSON(ctx, "samples", &samples); err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []model.Sample{}
	}
	return samples, nil
}

// AdminSamples lists every user's samples. Administrator only.
func (c *Client) AdminSamples(ctx context.Context) ([]model.Sample, error) {
	var samples []model.Sample
	if err := c.getJSON(ctx, "admin/samples", &samples); err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []model.Sample{}
	}
	return samples, nil
}

// SubmitSample uploads a new sample with its h5 and csv input files as a
// multipart form.
func (c *Client) SubmitSample(ctx context.Context, sub model.SampleSubmission) (model.Sample, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := []struct{ name, value string }{
		{"name", sub.Name},
		{"tumor_type", sub.TumorType},
		{"source", sub.Source},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return model.Sample{}, fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	if err := attachFile(mw, "h5_file", sub.H5Path); err != nil {
		return model.Sample{}, err
	}
	if err := attachFile(mw, "csv_file", sub.CSVPath); err != nil {
		return model.Sample{}, err
	}
	if err := mw.Close(); err != nil {
		return model.Sample{}, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "sample", &body)
	if err != nil {
		return model.Sample{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var resp struct {
		Sample model.Sample `json:"sample"`
	}
	if err := c.doJSON(req, "sample", &resp); err != nil {
		return model.Sample{}, err
	}
	return resp.Sample, nil
}

func attachFile(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer func() { _ = f.Close() }()

	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}
