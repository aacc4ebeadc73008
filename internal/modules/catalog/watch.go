package catalog

import (
	"context"
	"errors"

	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// ChangeChannel is the notification channel the products trigger publishes on.
const ChangeChannel = "catalog_changes"

// Watch applies remote changes to the replica until ctx is done. Inserted and
// updated rows are read back by id; a row that is already gone is applied as
// a delete. Every resolved event is passed to notify (when non-nil), including
// events the replica already reflected. A reconnect, or a failed read back,
// triggers a full Refresh.
func (s *Store) Watch(ctx context.Context, feed remote.ChangeFeed, notify func(Event)) error {
	if !s.repo.Configured() {
		return remote.ErrNotConfigured
	}
	ch, err := feed.Listen(ctx, ChangeChannel)
	if err != nil {
		return err
	}
	log := logger.With("component", "catalog.watch")
	log.Info("listening for catalog changes", "channel", ChangeChannel)

	for n := range ch {
		if n.Reconnected {
			log.Info("change feed reconnected, refreshing replica")
			if err := s.Refresh(ctx); err != nil {
				log.Warn("refresh after reconnect failed", "error", err)
			}
			continue
		}
		notice, err := DecodeNotice(n.Payload)
		if err != nil {
			log.Warn("dropping catalog notification", "error", err)
			continue
		}
		ev, err := s.resolve(ctx, notice)
		if err != nil {
			log.Warn("reading changed product failed, refreshing replica", "id", notice.ID, "error", err)
			if err := s.Refresh(ctx); err != nil {
				log.Warn("refresh after failed read failed", "error", err)
			}
			continue
		}
		s.Apply(ev)
		if notify != nil {
			notify(ev)
		}
	}
	return ctx.Err()
}

func (s *Store) resolve(ctx context.Context, n Notice) (Event, error) {
	if n.Kind != EventDelete {
		p, err := s.repo.Find(ctx, n.ID)
		if err == nil {
			return Event{Kind: n.Kind, New: &p}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Event{}, err
		}
	}
	return Event{Kind: EventDelete, Old: &ProductRef{ID: n.ID}}, nil
}
