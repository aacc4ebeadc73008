package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCustomer = errors.New("invalid checkout details")
	ErrQuantityLimit   = fmt.Errorf("quantity is limited to %d per product", MaxQuantity)
)

// MaxQuantity is the most units of one product a line can hold.
const MaxQuantity = 999

// Product is the part of a catalog product the cart snapshots at add time.
// Later catalog edits do not reach lines already in a cart.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
}

// Line is one product-and-quantity entry. Quantity is always between 1 and
// MaxQuantity.
type Line struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Customer is the delivery contact collected at checkout.
type Customer struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Handoff is a composed order ready to be opened in the messaging app.
type Handoff struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}
