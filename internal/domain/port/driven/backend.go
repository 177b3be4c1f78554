package driven

import (
	"context"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// AuthAPI is the account surface of the backend. Methods other than Login
// return the server's human-readable message.
type AuthAPI interface {
	// Login exchanges credentials for an identity and a bearer token.
	Login(ctx context.Context, email, password string) (model.Session, error)
	Signup(ctx context.Context, email, password string) (string, error)
	// ActivateAccount confirms a signup with the emailed activation token.
	ActivateAccount(ctx context.Context, token string) (string, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, resetToken, newPassword string) (string, error)
}

// SettingsAPI reads and writes the server-held configuration record.
type SettingsAPI interface {
	FetchSettings(ctx context.Context) (model.Settings, error)
	// SaveSettings posts the full record to the administrative endpoint.
	SaveSettings(ctx context.Context, settings model.Settings) error
}

// SampleAPI uploads new samples.
type SampleAPI interface {
	SubmitSample(ctx context.Context, submission model.SampleSubmission) (model.Sample, error)
}

// ArtifactAPI retrieves binary artifacts of a sample and hands them to a
// FileSaver. It returns the saved location.
type ArtifactAPI interface {
	Download(ctx context.Context, kind model.ArtifactKind, sampleID int64, name string) (string, error)
}
