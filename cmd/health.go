package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
)

// Health pings the backend and reports its status and latency.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	r.logger.Debug("checking backend health", "url", r.api.BaseURL())

	status, err := r.health.Check(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s is %s (%s)\n", r.api.BaseURL(), status.Status, status.Latency.Round(time.Millisecond))
}
