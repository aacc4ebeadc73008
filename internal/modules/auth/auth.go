package auth

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials covers every failed login, whatever the cause.
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("main admin only")
	ErrSharedLoginDisabled = errors.New("shared password login is not enabled")
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks an admin's email and password and opens a session.
	Login(ctx context.Context, email, password string) (string, *Session, error)
	// LoginShared checks the deployment-wide admin password and opens a session.
	LoginShared(ctx context.Context, password string) (string, *Session, error)
	// Authenticate resolves a bearer token to its live session.
	Authenticate(ctx context.Context, token string) (*Session, error)
}
