package api

import (
	"context"

	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// FetchSettings retrieves the configuration record.
func (c *Client) FetchSettings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	if err := c.getJSON(ctx, "settings", &s); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// SaveSettings posts the full record to the administrative endpoint.
func (c *Client) SaveSettings(ctx context.Context, settings model.Settings) error {
	return c.postJSON(ctx, "admin/settings", settings, nil)
}
