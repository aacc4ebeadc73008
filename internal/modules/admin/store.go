package admin

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/olambola-backend/internal/platform/optimistic"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// Store is the process-wide replica of the admin directory, newest first.
// It performs no authorization of its own; callers gate it on the session.
type Store struct {
	repo Repository
	now  func() time.Time

	mu       sync.RWMutex
	accounts []Account

	onDelete func(ctx context.Context, id uuid.UUID) error
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// OnDelete registers fn to run after an account has been deleted remotely.
func (s *Store) OnDelete(fn func(ctx context.Context, id uuid.UUID) error) {
	s.onDelete = fn
}

func (s *Store) List() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Account{}, s.accounts...)
}

// Get looks id up in the replica.
func (s *Store) Get(id uuid.UUID) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// Refresh reloads the directory. Without a remote store it is emptied.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.repo.Configured() {
		s.replace(nil)
		return nil
	}
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh admins: %w", err)
	}
	s.replace(accounts)
	return nil
}

// Create adds a regular admin. A placeholder is listed straight away and the
// directory is reloaded afterwards to pick up the stored id, or to drop the
// placeholder if the insert failed.
func (s *Store) Create(ctx context.Context, email, password string) (Account, error) {
	if !s.repo.Configured() {
		return Account{}, remote.ErrNotConfigured
	}
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return Account{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return Account{}, err
	}
	credential, err := HashPassword(password)
	if err != nil {
		return Account{}, fmt.Errorf("create admin: %w", err)
	}

	placeholder := Account{
		ID:         uuid.New(),
		Email:      email,
		Credential: credential,
		Role:       RoleAdmin,
		CreatedAt:  s.now().UTC(),
	}
	var saved Account
	err = optimistic.Mutation{
		Op: "admin.create",
		Apply: func() {
			s.mu.Lock()
			s.accounts = append([]Account{placeholder}, s.accounts...)
			s.mu.Unlock()
		},
		Commit: func(ctx context.Context) error {
			var err error
			saved, err = s.repo.Insert(ctx, placeholder)
			return err
		},
		Revert: func() {
			s.mu.Lock()
			s.removeLocked(placeholder.ID)
			s.mu.Unlock()
		},
		Resync:       s.Refresh,
		AlwaysResync: true,
	}.Run(ctx)
	if err != nil {
		return Account{}, fmt.Errorf("create admin %s: %w", email, err)
	}
	return saved, nil
}

// UpdatePassword stores a new credential for id and patches the local entry
// once the remote store has accepted it.
func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	if !s.repo.Configured() {
		return remote.ErrNotConfigured
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	credential, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if err := s.repo.UpdateCredential(ctx, id, credential); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}

	s.mu.Lock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Credential = credential
		}
	}
	s.mu.Unlock()
	return nil
}

// Delete removes id from the listing straight away; a failed remote delete
// reloads the directory.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.repo.Configured() {
		return remote.ErrNotConfigured
	}
	err := optimistic.Mutation{
		Op: "admin.delete",
		Apply: func() {
			s.mu.Lock()
			s.removeLocked(id)
			s.mu.Unlock()
		},
		Commit: func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
		Resync: s.Refresh,
	}.Run(ctx)
	if err != nil {
		return fmt.Errorf("delete admin %s: %w", id, err)
	}
	if s.onDelete != nil {
		if err := s.onDelete(ctx, id); err != nil {
			return fmt.Errorf("admin %s deleted: %w", id, err)
		}
	}
	return nil
}

// Bootstrap creates the main admin account. The remote store allows only one.
func (s *Store) Bootstrap(ctx context.Context, email, password string) (Account, error) {
	if !s.repo.Configured() {
		return Account{}, remote.ErrNotConfigured
	}
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return Account{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return Account{}, err
	}
	credential, err := HashPassword(password)
	if err != nil {
		return Account{}, fmt.Errorf("bootstrap main admin: %w", err)
	}

	saved, err := s.repo.Insert(ctx, Account{
		Email:      email,
		Credential: credential,
		Role:       RoleMainAdmin,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return Account{}, fmt.Errorf("bootstrap main admin: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return saved, err
	}
	return saved, nil
}

func (s *Store) replace(accounts []Account) {
	sorted := append([]Account(nil), accounts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	s.mu.Lock()
	s.accounts = sorted
	s.mu.Unlock()
}

func (s *Store) removeLocked(id uuid.UUID) {
	out := s.accounts[:0]
	for _, a := range s.accounts {
		if a.ID != id {
			out = append(out, a)
		}
	}
	s.accounts = out
}
