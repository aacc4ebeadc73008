package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/georgemunganga/olambola-backend/internal/modules/admin"
	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

// Identity is the admin a session belongs to.
type Identity struct {
	ID    uuid.UUID  `json:"id"`
	Email string     `json:"email"`
	Role  admin.Role `json:"role"`
}

func identityKey(sid string) string  { return "session:" + sid }
func sharedKey(sid string) string    { return "session:" + sid + ":admin_authenticated" }
func revokedKey(id uuid.UUID) string { return "admin:" + id.String() + ":revoked" }

// Revoke marks account id as removed. Sessions signed in as that account
// lose their identity the next time they are restored.
func Revoke(ctx context.Context, store kv.Store, id uuid.UUID) error {
	if err := store.Set(ctx, revokedKey(id), []byte("true")); err != nil {
		return fmt.Errorf("revoke admin %s: %w", id, err)
	}
	return nil
}

// Session is one admin session, persisted in the key-value store so it
// survives restarts. A session is authenticated either by an admin identity
// or by the shared-password flag; only an identity can carry the main admin role.
type Session struct {
	id             string
	store          kv.Store
	accounts       admin.Repository
	sharedPassword string

	identity *Identity
	shared   bool
}

// Restore loads session sid. Anything unreadable is discarded and the
// session starts out unauthenticated.
func Restore(ctx context.Context, store kv.Store, accounts admin.Repository, sharedPassword, sid string) (*Session, error) {
	s := &Session{id: sid, store: store, accounts: accounts, sharedPassword: sharedPassword}

	raw, err := store.Get(ctx, identityKey(sid))
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("restore session: %w", err)
	default:
		var id Identity
		if err := json.Unmarshal(raw, &id); err != nil || id.ID == uuid.Nil {
			logger.Warn("auth: discarding unreadable session", "session", sid, "error", err)
			if err := store.Delete(ctx, identityKey(sid)); err != nil {
				return nil, fmt.Errorf("restore session: %w", err)
			}
		} else if revoked, err := isRevoked(ctx, store, id.ID); err != nil {
			return nil, fmt.Errorf("restore session: %w", err)
		} else if revoked {
			logger.Info("auth: dropping session of removed admin", "session", sid, "admin", id.ID)
			if err := store.Delete(ctx, identityKey(sid)); err != nil {
				return nil, fmt.Errorf("restore session: %w", err)
			}
		} else {
			s.identity = &id
		}
	}

	flag, err := store.Get(ctx, sharedKey(sid))
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("restore session: %w", err)
	default:
		s.shared = string(flag) == "true"
	}
	return s, nil
}

func isRevoked(ctx context.Context, store kv.Store, id uuid.UUID) (bool, error) {
	_, err := store.Get(ctx, revokedKey(id))
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *Session) ID() string { return s.id }

// Identity returns the signed-in admin, if any.
func (s *Session) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) Authenticated() bool { return s.identity != nil || s.shared }

func (s *Session) IsMainAdmin() bool {
	return s.identity != nil && s.identity.Role == admin.RoleMainAdmin
}

// Login looks the admin up remotely and checks the password. A missing
// account, a wrong password and a failed lookup all give ErrInvalidCredentials.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if !s.accounts.Configured() {
		return remote.ErrNotConfigured
	}
	email = admin.NormalizeEmail(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, admin.ErrNotFound) {
			logger.Warn("auth: admin lookup failed", "email", email, "error", err)
		}
		admin.CheckPassword(decoyCredential(), password)
		return ErrInvalidCredentials
	}

	ok, legacy := admin.CheckPassword(account.Credential, password)
	if !ok {
		return ErrInvalidCredentials
	}
	if legacy {
		s.upgradeCredential(ctx, account, password)
	}

	id := Identity{ID: account.ID, Email: account.Email, Role: account.Role}
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, identityKey(s.id), raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.identity = &id
	return nil
}

// LoginShared checks the deployment-wide admin password. It authenticates
// catalog management only and never grants the main admin role.
func (s *Session) LoginShared(ctx context.Context, password string) error {
	if s.sharedPassword == "" {
		return ErrSharedLoginDisabled
	}
	want := sha256.Sum256([]byte(s.sharedPassword))
	got := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return ErrInvalidCredentials
	}
	if err := s.store.Set(ctx, sharedKey(s.id), []byte("true")); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.shared = true
	return nil
}

// Logout forgets the identity and the shared flag, locally and in storage.
func (s *Session) Logout(ctx context.Context) error {
	s.identity = nil
	s.shared = false
	if err := s.store.Delete(ctx, identityKey(s.id)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := s.store.Delete(ctx, sharedKey(s.id)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Session) upgradeCredential(ctx context.Context, account admin.Account, password string) {
	log := logger.With("admin", account.ID, "email", account.Email)
	log.Warn("auth: admin signed in with a legacy encoded credential")

	hashed, err := admin.HashPassword(password)
	if err != nil {
		log.Error("auth: hash credential", "error", err)
		return
	}
	if err := s.accounts.UpdateCredential(ctx, account.ID, hashed); err != nil {
		log.Error("auth: upgrade legacy credential", "error", err)
		return
	}
	log.Info("auth: legacy credential upgraded")
}

var (
	decoyOnce sync.Once
	decoy     string
)

// decoyCredential is checked against when no account matched, so an unknown
// email costs as much as a wrong password.
func decoyCredential() string {
	decoyOnce.Do(func() {
		decoy, _ = admin.HashPassword(uuid.NewString())
	})
	return decoy
}
