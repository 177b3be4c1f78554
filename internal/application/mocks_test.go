package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// --- CredentialStore mock ---

type mockCredentialStore struct {
	mu     sync.Mutex
	values map[string]string
	setErr error

	// When set, the first Set signals setStarted and waits for setRelease.
	setStarted chan struct{}
	setRelease chan struct{}
	blockOnce  sync.Once
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{values: map[string]string{}}
}

func (m *mockCredentialStore) Set(_ context.Context, service, plaintext string) error {
	if m.setStarted != nil {
		m.blockOnce.Do(func() {
			close(m.setStarted)
			<-m.setRelease
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[service] = plaintext
	return nil
}

func (m *mockCredentialStore) Get(_ context.Context, service string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[service], nil
}

func (m *mockCredentialStore) List(context.Context) ([]model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Credential, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, model.Credential{Service: k, Value: v})
	}
	return out, nil
}

func (m *mockCredentialStore) Delete(_ context.Context, service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, service)
	return nil
}

// --- AuthAPI mock ---

type mockAuthAPI struct {
	login          func(ctx context.Context, email, password string) (model.Session, error)
	signup         func(ctx context.Context, email, password string) (string, error)
	activate       func(ctx context.Context, token string) (string, error)
	changePassword func(ctx context.Context, current, next string) (string, error)
	requestReset   func(ctx context.Context, email string) (string, error)
	resetPassword  func(ctx context.Context, email, token, next string) (string, error)
	calls          int
}

var _ driven.AuthAPI = (*mockAuthAPI)(nil)

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (model.Session, error) {
	m.calls++
	return m.login(ctx, email, password)
}

func (m *mockAuthAPI) Signup(ctx context.Context, email, password string) (string, error) {
	m.calls++
	return m.signup(ctx, email, password)
}

func (m *mockAuthAPI) ActivateAccount(ctx context.Context, token string) (string, error) {
	m.calls++
	return m.activate(ctx, token)
}

func (m *mockAuthAPI) ChangePassword(ctx context.Context, current, next string) (string, error) {
	m.calls++
	return m.changePassword(ctx, current, next)
}

func (m *mockAuthAPI) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	m.calls++
	return m.requestReset(ctx, email)
}

func (m *mockAuthAPI) ResetPassword(ctx context.Context, email, token, next string) (string, error) {
	m.calls++
	return m.resetPassword(ctx, email, token, next)
}

// --- SettingsAPI mock ---

type mockSettingsAPI struct {
	fetch func(ctx context.Context) (model.Settings, error)
	save  func(ctx context.Context, s model.Settings) error
	saves int
}

var _ driven.SettingsAPI = (*mockSettingsAPI)(nil)

func (m *mockSettingsAPI) FetchSettings(ctx context.Context) (model.Settings, error) {
	return m.fetch(ctx)
}

func (m *mockSettingsAPI) SaveSettings(ctx context.Context, s model.Settings) error {
	m.saves++
	if m.save == nil {
		return nil
	}
	return m.save(ctx, s)
}

// --- SampleAPI mock ---

type mockSampleAPI struct {
	submitted []model.SampleSubmission
}

var _ driven.SampleAPI = (*mockSampleAPI)(nil)

func (m *mockSampleAPI) SubmitSample(_ context.Context, sub model.SampleSubmission) (model.Sample, error) {
	m.submitted = append(m.submitted, sub)
	return model.Sample{ID: int64(len(m.submitted)), Name: sub.Name, Status: model.SampleStatusQueued}, nil
}

// --- helpers ---

func adminSession() model.Session {
	return model.Session{Token: "admin-token", User: &model.User{ID: 1, Email: "admin@abc.xy", IsAdmin: true}}
}

func userSession() model.Session {
	return model.Session{Token: "user-token", User: &model.User{ID: 2, Email: "user@abc.xy"}}
}
