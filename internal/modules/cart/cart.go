package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/olambola-backend/internal/platform/kv"
	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
)

// Key is the storage key of a visitor's cart.
func Key(visitor string) string { return "cart:" + visitor }

// Cart is one visitor's cart. Every mutation writes the full line set back
// to the store before returning.
type Cart struct {
	store kv.Store
	key   string
	lines []Line
}

// New loads the cart stored under key. A missing or unreadable payload gives
// an empty cart; only a storage failure is returned as an error.
func New(ctx context.Context, store kv.Store, key string) (*Cart, error) {
	c := &Cart{store: store, key: key}

	raw, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		logger.Warn("cart: discarding unreadable saved cart", "key", key, "error", err)
		return c, nil
	}
	for _, l := range lines {
		if l.Quantity >= 1 && l.ID != uuid.Nil && c.index(l.ID) < 0 {
			if l.Quantity > MaxQuantity {
				l.Quantity = MaxQuantity
			}
			c.lines = append(c.lines, l)
		}
	}
	return c, nil
}

// Add puts one more of p in the cart. A line already at MaxQuantity is left
// alone and ErrQuantityLimit is returned.
func (c *Cart) Add(ctx context.Context, p Product) error {
	if i := c.index(p.ID); i >= 0 {
		if c.lines[i].Quantity >= MaxQuantity {
			return ErrQuantityLimit
		}
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, Line{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1})
	}
	return c.save(ctx)
}

// Remove drops the line for id. Removing an absent id is a no-op.
func (c *Cart) Remove(ctx context.Context, id uuid.UUID) error {
	i := c.index(id)
	if i < 0 {
		return nil
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return c.save(ctx)
}

// SetQuantity replaces the quantity of line id; below 1 removes the line and
// above MaxQuantity is rejected with ErrQuantityLimit.
func (c *Cart) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity < 1 {
		return c.Remove(ctx, id)
	}
	if quantity > MaxQuantity {
		return ErrQuantityLimit
	}
	i := c.index(id)
	if i < 0 {
		return nil
	}
	c.lines[i].Quantity = quantity
	return c.save(ctx)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.lines = nil
	return c.save(ctx)
}

// Lines returns a copy of the lines in the order they were added.
func (c *Cart) Lines() []Line {
	return append([]Line{}, c.lines...)
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) index(id uuid.UUID) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) save(ctx context.Context) error {
	raw, err := json.Marshal(c.Lines())
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
