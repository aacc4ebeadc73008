// Package remote holds the plumbing shared by every repository that talks to
// the hosted data/object store: error taxonomy, connection and schema
// management, change notifications and blob buckets.
package remote

import (
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/olambola-backend/internal/platform/metrics"
)

// ErrNotConfigured means no remote endpoint/credentials were supplied. No
// network attempt was made.
var ErrNotConfigured = errors.New("remote store not configured")

// OpError is a remote operation that was attempted and rejected, either by
// the network or by the remote store itself.
type OpError struct {
	Op  string // e.g. "products.insert"
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// IsRemoteFailure reports whether err carries an OpError.
func IsRemoteFailure(err error) bool {
	var oe *OpError
	return errors.As(err, &oe)
}

// IsNotConfigured reports whether err is (or wraps) ErrNotConfigured.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// Call runs fn as the remote operation op, records its outcome and latency,
// and wraps a failure in an OpError.
func Call(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RemoteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteOps.WithLabelValues(op, "error").Inc()
		return &OpError{Op: op, Err: err}
	}
	metrics.RemoteOps.WithLabelValues(op, "ok").Inc()
	return nil
}
