package domain

import "time"

// CartLine is one product entry in the cart with a snapshot of the product
// fields taken at add time. Quantity is always >= 1 for a persisted line;
// any mutation that would drop it to zero or below removes the line.
type CartLine struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
	Quantity  int64   `json:"quantity" bson:"quantity"`
}

// Cart is the single per-user document holding the ordered line list. The
// whole document is replaced on every mutation (read-modify-write with
// last-write-wins, accepted for this entity).
type Cart struct {
	UserID    string     `json:"user_id" bson:"_id"`
	Lines     []CartLine `json:"lines" bson:"lines"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// NewCart returns an empty cart for a user. An empty line list is a valid
// cart, distinct from "no cart document".
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Lines: []CartLine{}}
}

// Add increments the quantity of an existing line or appends a new line with
// quantity 1. It reports whether the product entered the cart for the first
// time.
func (c *Cart) Add(line CartLine) (added bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity++
			return false
		}
	}
	line.Quantity = 1
	c.Lines = append(c.Lines, line)
	return true
}

// SetQuantity replaces the quantity of the matching line. A quantity of zero
// or less removes the line entirely. It reports whether a line matched.
func (c *Cart) SetQuantity(productID string, qty int64) (found bool) {
	if qty <= 0 {
		return c.Remove(productID)
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = qty
			return true
		}
	}
	return false
}

// Remove filters out the matching line. It reports whether a line matched.
func (c *Cart) Remove(productID string) (found bool) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID == productID {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	c.Lines = kept
	return found
}

// Clear empties the line list.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// TotalQuantity sums the quantities of all lines.
func (c *Cart) TotalQuantity() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
