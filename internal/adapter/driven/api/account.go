package api

import (
	"context"
	"errors"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// messageResponse is the {"message": "..."} body most account endpoints return.
type messageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User        *model.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

// Login exchanges email and password for a session. The request itself
// carries whatever token is current, like every other request.
func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	var resp loginResponse
	if err := c.postJSON(ctx, "login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return model.Session{}, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return model.Session{}, errors.New("login response missing user or access token")
	}
	return model.Session{Token: resp.AccessToken, User: resp.User}, nil
}

// Signup registers a new account and returns the server's message.
func (c *Client) Signup(ctx context.Context, email, password string) (string, error) {
	var resp messageResponse
	if err := c.postJSON(ctx, "signup", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ActivateAccount confirms a signup with the token from the activation email.
// Activation tokens are URL-safe and used as a path segment as-is.
func (c *Client) ActivateAccount(ctx context.Context, token string) (string, error) {
	var resp messageResponse
	if err := c.getJSON(ctx, "activate/"+token, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RequestPasswordReset asks the server to mail a reset token to email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	body := map[string]string{"email": email}
	if err := c.postJSON(ctx, "request_password_reset", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword sets a new password using a mailed reset token.
func (c *Client) ResetPassword(ctx context.Context, email, resetToken, newPassword string) (string, error) {
	var resp messageResponse
	body := map[string]string{
		"email":        email,
		"reset_token":  resetToken,
		"new_password": newPassword,
	}
	if err := c.postJSON(ctx, "reset_password", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ChangePassword changes the password of the logged-in user.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	var resp messageResponse
	body := map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}
	if err := c.postJSON(ctx, "change_password", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
