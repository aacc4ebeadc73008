package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/georgemunganga/olambola-backend/internal/modules/admin"
	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
)

// Options configures the auth service.
type Options struct {
	Secret         []byte
	TTL            time.Duration
	SharedPassword string
}

type service struct {
	store    kv.Store
	accounts admin.Repository
	opts     Options
	now      func() time.Time
}

// NewService creates a new auth service.
func NewService(store kv.Store, accounts admin.Repository, opts Options) Service {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &service{store: store, accounts: accounts, opts: opts, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (string, *Session, error) {
	sess := s.newSession()
	if err := sess.Login(ctx, email, password); err != nil {
		return "", nil, err
	}
	token, err := s.issue(sess.ID())
	if err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

func (s *service) LoginShared(ctx context.Context, password string) (string, *Session, error) {
	sess := s.newSession()
	if err := sess.LoginShared(ctx, password); err != nil {
		return "", nil, err
	}
	token, err := s.issue(sess.ID())
	if err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

func (s *service) Authenticate(ctx context.Context, tokenString string) (*Session, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	sess, err := Restore(ctx, s.store, s.accounts, s.opts.SharedPassword, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		// logged out
		return nil, ErrUnauthenticated
	}
	return sess, nil
}

func (s *service) newSession() *Session {
	return &Session{
		id:             uuid.NewString(),
		store:          s.store,
		accounts:       s.accounts,
		sharedPassword: s.opts.SharedPassword,
	}
}

func (s *service) issue(sid string) (string, error) {
	now := s.now()
	claims := &jwt.StandardClaims{
		Subject:   sid,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.opts.TTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.opts.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
