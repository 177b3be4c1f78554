package api

import (
	"context"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// AdminUsers lists all accounts, newest first.
func (c *Client) AdminUsers(ctx context.Context) ([]model.User, error) {
	var resp struct {
		Users []model.User `json:"users"`
	}
	if err := c.getJSON(ctx, "admin/users", &resp); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		resp.Users = []model.User{}
	}
	return resp.Users, nil
}

// EnableUser enables the account with the given email.
func (c *Client) EnableUser(ctx context.Context, email string) (string, error) {
	return c.setUserEnabled(ctx, "admin/enable_user", email)
}

// DisableUser disables the account with the given email.
func (c *Client) DisableUser(ctx context.Context, email string) (string, error) {
	return c.setUserEnabled(ctx, "admin/disable_user", email)
}

func (c *Client) setUserEnabled(ctx context.Context, endpoint, email string) (string, error) {
	var resp messageResponse
	if err := c.postJSON(ctx, endpoint, map[string]string{"user_email": email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RunnerToken creates a runner account and returns its long-lived token.
func (c *Client) RunnerToken(ctx context.Context) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.getJSON(ctx, "admin/runner_token", &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}
