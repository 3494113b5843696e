package api

import (
	"context"
	"net/http"

	"github.com/n0madic/go-chorus/internal/types"
)

// Health probes GET /health once, bounded by the configured health timeout.
// It is never retried; polling is the caller's job.
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	if c.cfg.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.HealthTimeout)
		defer cancel()
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var out types.HealthStatus
	if err := c.send(c.http, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
