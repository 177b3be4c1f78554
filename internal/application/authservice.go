package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// AuthService runs the account use cases. Inputs are validated before any
// request is sent.
type AuthService struct {
	api      driven.AuthAPI
	sessions driven.SessionStore
	validate *Validator
	logger   *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(api driven.AuthAPI, sessions driven.SessionStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		api:      api,
		sessions: sessions,
		validate: NewValidator(),
		logger:   logger,
	}
}

// Login authenticates and establishes the returned session. On failure the
// current session is left untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.Session, error) {
	if err := s.validate.Email(email); err != nil {
		return model.Session{}, err
	}
	if password == "" {
		return model.Session{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	session, err := s.api.Login(ctx, email, password)
	if err != nil {
		return model.Session{}, fmt.Errorf("login: %w", err)
	}

	if err := s.sessions.Establish(ctx, session); err != nil {
		// The session is usable for this process even if it was not persisted.
		s.logger.Error("failed to persist session", "error", err)
	}

	if session.User != nil {
		s.logger.Info("logged in", "email", session.User.Email, "admin", session.User.IsAdmin)
	}
	return session, nil
}

// Logout ends the current session locally.
func (s *AuthService) Logout() {
	s.sessions.Teardown()
}

// Signup registers a new account.
func (s *AuthService) Signup(ctx context.Context, email, password string) (string, error) {
	if err := s.validate.Email(email); err != nil {
		return "", err
	}
	if err := s.validate.Password(password); err != nil {
		return "", err
	}

	msg, err := s.api.Signup(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("signup: %w", err)
	}
	return msg, nil
}

// ActivateAccount confirms a signup with the emailed activation token.
func (s *AuthService) ActivateAccount(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: activation token is required", ErrInvalidInput)
	}

	msg, err := s.api.ActivateAccount(ctx, token)
	if err != nil {
		return "", fmt.Errorf("activate account: %w", err)
	}
	return msg, nil
}

// ChangePassword changes the password of the logged-in user.
func (s *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	if !s.sessions.Session().Authenticated() {
		return "", ErrNotAuthenticated
	}
	if currentPassword == "" {
		return "", fmt.Errorf("%w: current password is required", ErrInvalidInput)
	}
	if err := s.validate.Password(newPassword); err != nil {
		return "", err
	}

	msg, err := s.api.ChangePassword(ctx, currentPassword, newPassword)
	if err != nil {
		return "", fmt.Errorf("change password: %w", err)
	}
	return msg, nil
}

// RequestPasswordReset asks the server to email a reset token.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := s.validate.Email(email); err != nil {
		return "", err
	}

	msg, err := s.api.RequestPasswordReset(ctx, email)
	if err != nil {
		return "", fmt.Errorf("request password reset: %w", err)
	}
	return msg, nil
}

// ResetPassword sets a new password using an emailed reset token.
func (s *AuthService) ResetPassword(ctx context.Context, email, resetToken, newPassword string) (string, error) {
	if err := s.validate.Email(email); err != nil {
		return "", err
	}
	if resetToken == "" {
		return "", fmt.Errorf("%w: reset token is required", ErrInvalidInput)
	}
	if err := s.validate.Password(newPassword); err != nil {
		return "", err
	}

	msg, err := s.api.ResetPassword(ctx, email, resetToken, newPassword)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}
	return msg, nil
}
