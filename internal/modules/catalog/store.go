package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/olambola-backend/internal/platform/metrics"
	"github.com/georgemunganga/olambola-backend/internal/platform/optimistic"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// Store is the process-wide replica of the remote products collection.
//
// Mutations are optimistic: the replica changes before the remote write is
// confirmed and is rolled back (create) or reloaded (delete) if it fails.
// The replica is always ordered by CreatedAt, newest first.
type Store struct {
	repo   Repository
	bucket remote.Bucket
	now    func() time.Time

	mu    sync.RWMutex
	items []Product
}

func NewStore(repo Repository, bucket remote.Bucket) *Store {
	return &Store{repo: repo, bucket: bucket, now: time.Now}
}

// List returns a copy of the replica, newest first.
func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product{}, s.items...)
}

// ListByCategory returns the replica entries in category c, newest first.
func (s *Store) ListByCategory(c Category) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Product{}
	for _, p := range s.items {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Get looks id up in the replica.
func (s *Store) Get(id uuid.UUID) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return Product{}, false
}

// Refresh replaces the replica with the remote collection. Without a
// remote store the replica is emptied and no error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.repo.Configured() {
		s.replace(nil)
		return nil
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh products: %w", err)
	}
	s.replace(items)
	return nil
}

// Create uploads img (if any), shows the product immediately, and inserts it
// remotely. On failure the optimistic entry is removed again.
func (s *Store) Create(ctx context.Context, d Draft, img *Image) (Product, error) {
	if !s.repo.Configured() {
		return Product{}, remote.ErrNotConfigured
	}
	if img != nil {
		url, err := s.uploadImage(ctx, img)
		if err != nil {
			return Product{}, err
		}
		d.ImageURL = url
	}

	stamp := s.now().UTC()
	draft := d.product(stamp)
	var saved Product

	err := optimistic.Mutation{
		Op: "catalog.create",
		Apply: func() {
			s.mu.Lock()
			s.items = append([]Product{draft}, s.items...)
			s.mu.Unlock()
		},
		Commit: func(ctx context.Context) error {
			var err error
			saved, err = s.repo.Insert(ctx, draft)
			return err
		},
		Revert: func() {
			s.mu.Lock()
			s.dropPendingLocked(stamp)
			s.mu.Unlock()
		},
		Confirm: func() {
			s.mu.Lock()
			s.dropPendingLocked(stamp)
			s.upsertLocked(saved)
			s.mu.Unlock()
		},
	}.Run(ctx)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return saved, nil
}

// Update uploads img (if any) and rewrites product id remotely. The cached
// entry is patched only after the remote store accepted the change.
func (s *Store) Update(ctx context.Context, id uuid.UUID, d Draft, img *Image) (Product, error) {
	if !s.repo.Configured() {
		return Product{}, remote.ErrNotConfigured
	}
	if img != nil {
		url, err := s.uploadImage(ctx, img)
		if err != nil {
			return Product{}, err
		}
		d.ImageURL = url
	}

	saved, err := s.repo.Update(ctx, id, d, s.now().UTC())
	if err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}

	s.mu.Lock()
	s.upsertLocked(saved)
	s.mu.Unlock()
	return saved, nil
}

// Delete hides product id immediately and deletes it remotely. On failure
// the replica is reloaded from the remote store.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.repo.Configured() {
		return remote.ErrNotConfigured
	}
	err := optimistic.Mutation{
		Op: "catalog.delete",
		Apply: func() {
			s.mu.Lock()
			s.removeLocked(id)
			s.mu.Unlock()
		},
		Commit: func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		Resync: s.Refresh,
	}.Run(ctx)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

// Apply folds a remote change into the replica and reports whether anything
// changed. Replaying an event the replica already reflects is a no-op.
func (s *Store) Apply(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case EventInsert, EventUpdate:
		if ev.New == nil {
			return false
		}
		if i := s.indexLocked(ev.New.ID); i >= 0 && s.items[i].equal(*ev.New) {
			return false
		}
		s.upsertLocked(*ev.New)
	case EventDelete:
		if ev.Old == nil || s.indexLocked(ev.Old.ID) < 0 {
			return false
		}
		s.removeLocked(ev.Old.ID)
	default:
		return false
	}
	metrics.LiveEvents.WithLabelValues(string(ev.Kind)).Inc()
	return true
}

func (s *Store) replace(items []Product) {
	sorted := append([]Product(nil), items...)
	sortNewestFirst(sorted)
	s.mu.Lock()
	s.items = sorted
	s.mu.Unlock()
}

func (s *Store) indexLocked(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) upsertLocked(p Product) {
	if i := s.indexLocked(p.ID); i >= 0 {
		s.items[i] = p
	} else {
		s.items = append(s.items, p)
	}
	sortNewestFirst(s.items)
}

func (s *Store) removeLocked(id uuid.UUID) {
	out := s.items[:0]
	for _, p := range s.items {
		if p.ID != id {
			out = append(out, p)
		}
	}
	s.items = out
}

// dropPendingLocked removes the optimistic entry stamped at stamp. It has no
// server id yet, so the creation timestamp is what identifies it.
func (s *Store) dropPendingLocked(stamp time.Time) {
	out := s.items[:0]
	for _, p := range s.items {
		if p.pending() && p.CreatedAt.Equal(stamp) {
			continue
		}
		out = append(out, p)
	}
	s.items = out
}

func sortNewestFirst(items []Product) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
