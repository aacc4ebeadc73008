package cart

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/olambola-backend/internal/platform/metrics"
)

// Validate trims the fields and requires all three.
func (cu *Customer) Validate() error {
	cu.FullName = strings.TrimSpace(cu.FullName)
	cu.Phone = strings.TrimSpace(cu.Phone)
	cu.Address = strings.TrimSpace(cu.Address)
	switch {
	case cu.FullName == "":
		return fmt.Errorf("%w: full name is required", ErrInvalidCustomer)
	case cu.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidCustomer)
	case cu.Address == "":
		return fmt.Errorf("%w: delivery address is required", ErrInvalidCustomer)
	}
	return nil
}

// ComposeOrder builds the order summary for lines and the wa.me deep link
// that opens it in a chat with contact.
func ComposeOrder(contact string, lines []Line, cu Customer) (Handoff, error) {
	if len(lines) == 0 {
		return Handoff{}, ErrEmptyCart
	}

	var b strings.Builder
	b.WriteString("Hello! I want to place an order:\n\n")
	total := decimal.Zero
	for _, l := range lines {
		sub := l.Subtotal()
		total = total.Add(sub)
		fmt.Fprintf(&b, "• %s x%d = ₦%s\n", l.Name, l.Quantity, FormatNaira(sub))
	}
	fmt.Fprintf(&b, "\nTotal: ₦%s\n\n", FormatNaira(total))
	fmt.Fprintf(&b, "Delivery Address: %s\n", cu.Address)
	fmt.Fprintf(&b, "Name: %s\n", cu.FullName)
	fmt.Fprintf(&b, "Phone: %s", cu.Phone)

	msg := b.String()
	return Handoff{
		Message: msg,
		URL:     "https://wa.me/" + contact + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20"),
	}, nil
}

// Checkout composes the handoff for the current lines and empties the cart.
// The cart is cleared whether or not the link is ever opened.
func (c *Cart) Checkout(ctx context.Context, contact string, cu Customer) (Handoff, error) {
	h, err := ComposeOrder(contact, c.lines, cu)
	if err != nil {
		return Handoff{}, err
	}
	if err := c.Clear(ctx); err != nil {
		return Handoff{}, err
	}
	metrics.Checkouts.Inc()
	return h, nil
}

// FormatNaira renders d with comma thousands separators and at most two
// decimals, trailing zeros dropped: 4000 -> "4,000", 1234.5 -> "1,234.5".
func FormatNaira(d decimal.Decimal) string {
	s := d.Round(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var g strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			g.WriteByte(',')
		}
		g.WriteRune(r)
	}
	if frac != "" {
		return sign + g.String() + "." + frac
	}
	return sign + g.String()
}
