package admin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates the admins repository on db. A nil db
// yields a repository that reports itself as not configured.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Configured() bool { return r.db != nil }

func (r *postgresRepository) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	err := remote.Call("admins.select", func() error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, email, password_hash, role, created_at
			FROM admins
			ORDER BY created_at DESC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a Account
			if err := rows.Scan(&a.ID, &a.Email, &a.Credential, &a.Role, &a.CreatedAt); err != nil {
				return err
			}
			accounts = append(accounts, a)
		}
		return rows.Err()
	})
	return accounts, err
}

func (r *postgresRepository) Insert(ctx context.Context, a Account) (Account, error) {
	saved := Account{}
	err := remote.Call("admins.insert", func() error {
		query := `
			INSERT INTO admins (email, password_hash, role, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, email, password_hash, role, created_at
		`
		return r.db.QueryRowContext(ctx, query, a.Email, a.Credential, a.Role, a.CreatedAt).Scan(
			&saved.ID,
			&saved.Email,
			&saved.Credential,
			&saved.Role,
			&saved.CreatedAt,
		)
	})
	return saved, err
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	a := Account{}
	err := remote.Call("admins.select", func() error {
		query := `
			SELECT id, email, password_hash, role, created_at
			FROM admins
			WHERE email = $1
		`
		return r.db.QueryRowContext(ctx, query, email).Scan(
			&a.ID,
			&a.Email,
			&a.Credential,
			&a.Role,
			&a.CreatedAt,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

func (r *postgresRepository) UpdateCredential(ctx context.Context, id uuid.UUID, credential string) error {
	var affected int64
	err := remote.Call("admins.update", func() error {
		res, err := r.db.ExecContext(ctx, `UPDATE admins SET password_hash = $1 WHERE id = $2`, credential, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return remote.Call("admins.delete", func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
		return err
	})
}
