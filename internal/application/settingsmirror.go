package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// SettingsMirror keeps a local copy of the server-held settings record.
//
// Every Refresh and Save takes a generation number when it starts. A response
// is applied only if no later operation has been applied already, so a slow
// fetch can never overwrite the result of a newer save.
type SettingsMirror struct {
	api      driven.SettingsAPI
	sessions driven.SessionStore
	logger   *slog.Logger

	mu      sync.Mutex
	current model.Settings
	loaded  bool
	issued  uint64
	applied uint64
}

// NewSettingsMirror creates an empty mirror.
func NewSettingsMirror(api driven.SettingsAPI, sessions driven.SessionStore, logger *slog.Logger) *SettingsMirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsMirror{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// Current returns the mirrored record and whether it has been loaded.
func (m *SettingsMirror) Current() (model.Settings, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.loaded
}

// Refresh fetches the record from the server. On failure the previous record
// is kept and the error is returned.
func (m *SettingsMirror) Refresh(ctx context.Context) (model.Settings, error) {
	gen := m.next()

	settings, err := m.api.FetchSettings(ctx)
	if err != nil {
		m.logger.Warn("settings refresh failed, keeping previous record", "error", err)
		current, _ := m.Current()
		return current, fmt.Errorf("refresh settings: %w", err)
	}

	return m.apply(gen, settings), nil
}

// Save overwrites the mirror with the local edit, then posts the full record
// to the administrative endpoint. A failed post leaves the edit in the mirror;
// a later Refresh replaces it with the server's record. Non-admin sessions
// are rejected without touching the mirror or sending a request.
func (m *SettingsMirror) Save(ctx context.Context, settings model.Settings) error {
	if !m.sessions.Session().IsAdmin() {
		return ErrAdminRequired
	}

	m.apply(m.next(), settings)

	if err := m.api.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	m.logger.Info("settings saved", "id", settings.ID)
	return nil
}

// Ensure returns the mirrored record, fetching it first if nothing has been
// loaded yet.
func (m *SettingsMirror) Ensure(ctx context.Context) (model.Settings, error) {
	if current, ok := m.Current(); ok {
		return current, nil
	}
	return m.Refresh(ctx)
}

func (m *SettingsMirror) next() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	return m.issued
}

// apply stores settings if gen is newer than the last applied generation and
// returns the record in effect afterwards.
func (m *SettingsMirror) apply(gen uint64, settings model.Settings) model.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen < m.applied {
		m.logger.Debug("discarding stale settings response", "generation", gen, "applied", m.applied)
		return m.current
	}

	m.applied = gen
	m.current = settings
	m.loaded = true
	return m.current
}
