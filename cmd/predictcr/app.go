package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/predictcr/internal/adapter/driven/api"
	"github.com/ericfisherdev/predictcr/internal/adapter/driven/filesystem"
	sqliteadapter "github.com/ericfisherdev/predictcr/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/predictcr/internal/application"
	"github.com/ericfisherdev/predictcr/internal/config"
	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// App is the composition root shared by all commands.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Client      *api.Client
	Sessions    *application.SessionManager
	Auth        *application.AuthService
	Settings    *application.SettingsMirror
	Submissions *application.SubmissionService
	Content     *application.ContentService
	Saver       *filesystem.Saver

	db *sqliteadapter.DB
}

// NewApp wires adapters and services from cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	// 1. Session persistence (only with an encryption key).
	var store driven.CredentialStore
	if cfg.HasSecretKey() {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.db = db

		if err := sqliteadapter.RunMigrations(db); err != nil {
			a.Close()
			return nil, err
		}

		repo, err := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
		if err != nil {
			a.Close()
			return nil, err
		}
		store = repo
		logger.Debug("session persistence enabled", "db_path", cfg.DBPath)
	}

	a.Sessions = application.NewSessionManager(store, logger)
	if err := a.Sessions.Restore(ctx); err != nil {
		// A broken stored session must not block the CLI; start logged out.
		logger.Warn("could not restore session", "error", err)
	}

	// 2. Download destination.
	dir := cfg.DownloadDir
	if dir == "" {
		d, err := filesystem.DefaultDownloadDir()
		if err != nil {
			a.Close()
			return nil, err
		}
		dir = d
	}
	saver, err := filesystem.NewSaver(dir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Saver = saver

	// 3. Authenticated API client. Faults above 400 end the session.
	client, err := api.NewClient(cfg.APIURL, a.Sessions,
		api.WithAuthFaultHandler(a.Sessions.HandleAuthFault),
		api.WithFileSaver(saver),
		api.WithContentType(cfg.ContentType),
		api.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	a.Client = client

	// 4. Services.
	a.Auth = application.NewAuthService(client, a.Sessions, logger)
	a.Settings = application.NewSettingsMirror(client, a.Sessions, logger)
	a.Submissions = application.NewSubmissionService(client, a.Settings, a.Sessions, logger)
	a.Content = application.NewContentService(a.Settings)

	return a, nil
}

// Close releases the session database.
func (a *App) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.Logger.Error("error closing database", "error", err)
	}
	a.db = nil
}

// requireLogin fails when no session is held.
func (a *App) requireLogin() error {
	if !a.Sessions.Authenticated() {
		return application.ErrNotAuthenticated
	}
	return nil
}

// requireAdmin fails unless the session belongs to an administrator.
func (a *App) requireAdmin() error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.Sessions.Session().IsAdmin() {
		return application.ErrAdminRequired
	}
	return nil
}
