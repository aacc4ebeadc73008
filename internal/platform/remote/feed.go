package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
)

// Notification is one message from a change channel. Reconnected is set
// instead of a payload when the connection dropped and was re-established;
// anything published in between was lost and subscribers should resync.
type Notification struct {
	Channel     string
	Payload     []byte
	Reconnected bool
}

// ChangeFeed delivers change notifications for a named collection channel.
// The returned channel is closed when ctx is done.
type ChangeFeed interface {
	Listen(ctx context.Context, channel string) (<-chan Notification, error)
}

// PQFeed is a ChangeFeed over PostgreSQL LISTEN/NOTIFY.
type PQFeed struct {
	dsn          string
	pingInterval time.Duration
}

func NewPQFeed(dsn string) *PQFeed {
	return &PQFeed{dsn: dsn, pingInterval: 90 * time.Second}
}

func (f *PQFeed) Listen(ctx context.Context, channel string) (<-chan Notification, error) {
	if f == nil || f.dsn == "" {
		return nil, ErrNotConfigured
	}

	listener := pq.NewListener(f.dsn, 2*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("remote: change feed connection event", "channel", channel, "event", ev, "error", err)
			}
		})
	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, &OpError{Op: fmt.Sprintf("listen %s", channel), Err: err}
	}

	out := make(chan Notification)
	go func() {
		defer close(out)
		defer listener.Close()

		ticker := time.NewTicker(f.pingInterval)
		defer ticker.Stop()

		for {
			var n Notification
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				go listener.Ping()
				continue
			case pn, ok := <-listener.Notify:
				if !ok {
					return
				}
				if pn == nil {
					n = Notification{Channel: channel, Reconnected: true}
				} else {
					n = Notification{Channel: pn.Channel, Payload: []byte(pn.Extra)}
				}
			}

			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
