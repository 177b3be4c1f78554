package application

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

const bytesPerMB = 1 << 20

// SubmissionService checks a new sample against the server settings and
// uploads it.
type SubmissionService struct {
	api      driven.SampleAPI
	settings *SettingsMirror
	sessions driven.SessionStore
	validate *Validator
	logger   *slog.Logger
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(api driven.SampleAPI, settings *SettingsMirror, sessions driven.SessionStore, logger *slog.Logger) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		api:      api,
		settings: settings,
		sessions: sessions,
		validate: NewValidator(),
		logger:   logger,
	}
}

// Submit validates sub and uploads it.
func (s *SubmissionService) Submit(ctx context.Context, sub model.SampleSubmission) (model.Sample, error) {
	if !s.sessions.Session().Authenticated() {
		return model.Sample{}, ErrNotAuthenticated
	}
	if err := s.Check(ctx, sub); err != nil {
		return model.Sample{}, err
	}

	sample, err := s.api.SubmitSample(ctx, sub)
	if err != nil {
		return model.Sample{}, fmt.Errorf("submit sample: %w", err)
	}

	s.logger.Info("sample submitted", "id", sample.ID, "name", sample.Name)
	return sample, nil
}

// Check runs every local check without uploading anything. Empty lists and
// zero size limits in the settings mean "no restriction".
func (s *SubmissionService) Check(ctx context.Context, sub model.SampleSubmission) error {
	if err := s.validate.Struct(sub); err != nil {
		return err
	}

	settings, err := s.settings.Ensure(ctx)
	if err != nil {
		return err
	}

	if allowed := settings.TumorTypeList(); len(allowed) > 0 && !slices.Contains(allowed, sub.TumorType) {
		return fmt.Errorf("%w: tumor type %q is not one of %s", ErrInvalidInput, sub.TumorType, strings.Join(allowed, ", "))
	}
	if allowed := settings.SourceList(); len(allowed) > 0 && !slices.Contains(allowed, sub.Source) {
		return fmt.Errorf("%w: source %q is not one of %s", ErrInvalidInput, sub.Source, strings.Join(allowed, ", "))
	}

	if err := checkFileSize(sub.H5Path, settings.MaxFilesizeH5MB); err != nil {
		return err
	}
	if err := checkFileSize(sub.CSVPath, settings.MaxFilesizeCSVMB); err != nil {
		return err
	}

	return checkCSVColumns(sub.CSVPath, settings.RequiredColumnList())
}

func checkFileSize(path string, limitMB int) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidInput, path)
	}
	if limitMB > 0 && info.Size() > int64(limitMB)*bytesPerMB {
		return fmt.Errorf("%w: %s exceeds the %d MB limit", ErrInvalidInput, path, limitMB)
	}
	return nil
}

// checkCSVColumns verifies that the header row of the CSV file contains every
// required column.
func checkCSVColumns(path string, required []string) error {
	if len(required) == 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s is empty", ErrInvalidInput, path)
	}
	if err != nil {
		return fmt.Errorf("read CSV header of %s: %w", path, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var missing []string
	for _, col := range required {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing columns %s", ErrInvalidInput, path, strings.Join(missing, ", "))
	}
	return nil
}
