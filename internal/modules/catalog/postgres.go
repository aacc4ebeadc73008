package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

const productColumns = `id,name,price,category,description,kg,size,image_url,created_at,updated_at`

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository returns the products collection on db. A nil db
// yields a repository that reports itself as not configured.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Configured() bool { return r.db != nil }

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var kg decimal.NullDecimal
	var size, imageURL sql.NullString
	err := scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description,
		&kg, &size, &imageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if kg.Valid {
		w := kg.Decimal
		p.Weight = &w
	}
	p.Size = size.String
	p.ImageURL = imageURL.String
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]Product, error) {
	var products []Product
	err := remote.Call("products.select", func() error {
		rows, err := r.db.QueryContext(ctx,
			`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanProduct(rows.Scan)
			if err != nil {
				return err
			}
			products = append(products, *p)
		}
		return rows.Err()
	})
	return products, err
}

func (r *postgresRepo) Find(ctx context.Context, id uuid.UUID) (Product, error) {
	var found *Product
	err := remote.Call("products.find", func() error {
		row := r.db.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE id=$1`, id)
		var err error
		found, err = scanProduct(row.Scan)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return *found, nil
}

func (r *postgresRepo) Insert(ctx context.Context, p Product) (Product, error) {
	var saved *Product
	err := remote.Call("products.insert", func() error {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO products
			  (name, price, category, description, kg, size, image_url, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING `+productColumns,
			p.Name, p.Price, p.Category, p.Description, nullableWeight(p.Weight),
			nullableString(p.Size), nullableString(p.ImageURL), p.CreatedAt, p.UpdatedAt)
		var err error
		saved, err = scanProduct(row.Scan)
		return err
	})
	if err != nil {
		return Product{}, err
	}
	return *saved, nil
}

func (r *postgresRepo) Update(ctx context.Context, id uuid.UUID, d Draft, updatedAt time.Time) (Product, error) {
	var saved *Product
	err := remote.Call("products.update", func() error {
		row := r.db.QueryRowContext(ctx, `
			UPDATE products
			SET name=$1, price=$2, category=$3, description=$4, kg=$5,
			    size=$6, image_url=$7, updated_at=$8
			WHERE id=$9
			RETURNING `+productColumns,
			d.Name, d.Price, d.Category, d.Description, nullableWeight(d.Weight),
			nullableString(d.Size), nullableString(d.ImageURL), updatedAt, id)
		var err error
		saved, err = scanProduct(row.Scan)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return *saved, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return remote.Call("products.delete", func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
		return err
	})
}

func nullableWeight(w *decimal.Decimal) decimal.NullDecimal {
	if w == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *w, Valid: true}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
