// Package cart holds the shopper's in-memory cart and the checkout session
// built on top of it. A Cart belongs to a single shopper and is not safe for
// concurrent use.
package cart

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

// Item is the product snapshot a line carries. Price stays a string so a
// malformed value degrades in Total instead of failing.
type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Image    string `json:"image,omitempty"`
}

func Snapshot(p domain.Product) Item {
	item := Item{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price.String(),
	}
	if p.PrimaryImage != nil {
		item.Image = p.PrimaryImage.URL
	}
	return item
}

type Line struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}

var pricePrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// parsePrice reads the leading number of s, so "12.50 USD" is 12.50. A price
// with no leading number is zero.
func parsePrice(s string) decimal.Decimal {
	m := pricePrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero
	}
	if i := strings.IndexAny(m, "eE"); i > 0 {
		m = strings.TrimSuffix(m[:i], ".") + m[i:]
	} else {
		m = strings.TrimSuffix(m, ".")
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Subtotal is price × quantity, using the leading number of the price.
func (l Line) Subtotal() decimal.Decimal {
	return parsePrice(l.Item.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Item.ID == productID {
			return i
		}
	}
	return -1
}

// Add merges qty into the existing line for the product or appends a new one.
// A qty below 1 counts as a single click.
func (c *Cart) Add(item Item, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: qty})
}

func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// UpdateQuantity sets the line quantity, never below 1. Dropping a line
// takes an explicit Remove.
func (c *Cart) UpdateQuantity(productID int64, qty int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines[i].Quantity = max(1, qty)
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Quantity(productID int64) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// TotalDecimal sums the line subtotals.
func (c *Cart) TotalDecimal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Total is the cart total formatted with two decimals, e.g. "25.50".
func (c *Cart) Total() string {
	return c.TotalDecimal().StringFixed(2)
}

// Summary renders the lines as the order's product description:
// "Mug (x2), Tea (x1)".
func (c *Cart) Summary() string {
	parts := make([]string, 0, len(c.lines))
	for _, l := range c.lines {
		parts = append(parts, fmt.Sprintf("%s (x%d)", l.Item.Name, l.Quantity))
	}
	return strings.Join(parts, ", ")
}
