// Package optimistic runs a local state change ahead of the remote write it
// mirrors, and undoes it when the remote write fails.
package optimistic

import (
	"context"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/metrics"
)

// Mutation describes one optimistic change. Apply and Commit are required;
// the rest are optional.
//
// On Commit failure Revert runs first (targeted inverse patch), then Resync
// (full reload from the remote store). A Resync failure is logged; the
// caller always receives the Commit error. On success Confirm runs, then
// Resync if AlwaysResync is set.
type Mutation struct {
	Op           string
	Apply        func()
	Commit       func(ctx context.Context) error
	Revert       func()
	Resync       func(ctx context.Context) error
	Confirm      func()
	AlwaysResync bool
}

func (m Mutation) Run(ctx context.Context) error {
	m.Apply()

	if err := m.Commit(ctx); err != nil {
		metrics.Rollbacks.WithLabelValues(m.Op).Inc()
		if m.Revert != nil {
			m.Revert()
		}
		m.resync(ctx)
		return err
	}

	if m.Confirm != nil {
		m.Confirm()
	}
	if m.AlwaysResync {
		m.resync(ctx)
	}
	return nil
}

func (m Mutation) resync(ctx context.Context) {
	if m.Resync == nil {
		return
	}
	if err := m.Resync(ctx); err != nil {
		logger.Warn("optimistic: resync failed", "op", m.Op, "error", err)
	}
}
