package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is one of the fixed storefront shelves.
type Category string

const (
	CategoryPoultry    Category = "POULTRY"
	CategoryRedMeat    Category = "RED MEAT"
	CategorySeafood    Category = "SEAFOOD"
	CategoryVegetables Category = "VEGETABLES"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryPoultry, CategoryRedMeat, CategorySeafood, CategoryVegetables}

// ParseCategory normalises s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Product is a catalog entry. The remote store owns it; the Store keeps a replica.
type Product struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Category    Category         `json:"category"`
	Description string           `json:"description"`
	Weight      *decimal.Decimal `json:"kg,omitempty"`
	Size        string           `json:"size,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// pending reports whether p is an optimistic entry not yet confirmed by the remote store.
func (p Product) pending() bool { return p.ID == uuid.Nil }

func (p Product) equal(o Product) bool {
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.Price.Equal(o.Price) &&
		p.Category == o.Category &&
		p.Description == o.Description &&
		weightEqual(p.Weight, o.Weight) &&
		p.Size == o.Size &&
		p.ImageURL == o.ImageURL &&
		p.CreatedAt.Equal(o.CreatedAt) &&
		p.UpdatedAt.Equal(o.UpdatedAt)
}

func weightEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

var ErrNotFound = errors.New("product not found")

// ErrInvalidDraft is wrapped by every Draft validation failure.
var ErrInvalidDraft = errors.New("invalid product")

// Draft is the editable part of a product, as submitted by the admin console.
type Draft struct {
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Category    Category         `json:"category"`
	Description string           `json:"description"`
	Weight      *decimal.Decimal `json:"kg,omitempty"`
	Size        string           `json:"size,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
}

// Validate checks the draft before any store operation is attempted.
func (d *Draft) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDraft)
	}
	if d.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidDraft)
	}
	c, ok := ParseCategory(string(d.Category))
	if !ok {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidDraft, d.Category)
	}
	d.Category = c
	if d.Weight != nil && d.Weight.IsNegative() {
		return fmt.Errorf("%w: kg must not be negative", ErrInvalidDraft)
	}
	return nil
}

func (d Draft) product(stamp time.Time) Product {
	return Product{
		Name:        d.Name,
		Price:       d.Price,
		Category:    d.Category,
		Description: d.Description,
		Weight:      d.Weight,
		Size:        d.Size,
		ImageURL:    d.ImageURL,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
}

// Image is an uploaded product picture.
type Image struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

const MaxImageSize = 5 << 20

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Validate rejects anything that is not a JPEG/PNG/GIF/WebP of at most 5 MB.
func (img *Image) Validate() error {
	if !imageTypes[img.ContentType] {
		return fmt.Errorf("%w: image must be JPG, PNG, GIF or WebP", ErrInvalidDraft)
	}
	if img.Size > MaxImageSize {
		return fmt.Errorf("%w: image must be less than 5MB", ErrInvalidDraft)
	}
	return nil
}

// EventKind is the change type carried by a catalog notification.
type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
)

// Event is one remote change to the products collection.
type Event struct {
	Kind EventKind   `json:"op"`
	New  *Product    `json:"new,omitempty"`
	Old  *ProductRef `json:"old,omitempty"`
}

type ProductRef struct {
	ID uuid.UUID `json:"id"`
}

// Notice is a products trigger notification: the operation and the row id.
// The row itself is read back from the repository.
type Notice struct {
	Kind EventKind `json:"op"`
	ID   uuid.UUID `json:"id"`
}

// DecodeNotice parses a notification payload.
func DecodeNotice(payload []byte) (Notice, error) {
	var n Notice
	if err := json.Unmarshal(payload, &n); err != nil {
		return Notice{}, fmt.Errorf("decode catalog notice: %w", err)
	}
	switch n.Kind {
	case EventInsert, EventUpdate, EventDelete:
	default:
		return Notice{}, fmt.Errorf("decode catalog notice: unknown op %q", n.Kind)
	}
	if n.ID == uuid.Nil {
		return Notice{}, fmt.Errorf("decode catalog notice: %s without id", n.Kind)
	}
	return n, nil
}
