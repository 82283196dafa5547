// Package cart holds the shopping cart: an ordered list of product copies,
// its derived count and total, the view rendered from it, and the
// session-scoped stores that persist it.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidIndex is matched by every *InvalidIndexError.
var ErrInvalidIndex = errors.New("invalid cart index")

// InvalidIndexError reports a removal outside [0, Len).
type InvalidIndexError struct {
	Index int
	Len   int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid cart index %d (cart has %d entries)", e.Index, e.Len)
}

func (e *InvalidIndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}

// Cart is an ordered sequence of entries. Insertion order is display order and
// removal addressing. The zero value is an empty cart. Cart is not safe for
// concurrent use; Store adds locking.
type Cart struct {
	entries []models.Product
}

// New returns a cart holding copies of entries in order.
func New(entries ...models.Product) *Cart {
	c := &Cart{}
	for _, e := range entries {
		c.Add(e)
	}
	return c
}

// Add appends a copy of p. Duplicates are kept as separate entries.
func (c *Cart) Add(p models.Product) {
	c.entries = append(c.entries, p)
}

// RemoveAt deletes the entry at index and shifts later entries down.
// An out-of-range index leaves the cart unchanged.
func (c *Cart) RemoveAt(index int) (models.Product, error) {
	if index < 0 || index >= len(c.entries) {
		return models.Product{}, &InvalidIndexError{Index: index, Len: len(c.entries)}
	}

	removed := c.entries[index]
	copy(c.entries[index:], c.entries[index+1:])
	c.entries[len(c.entries)-1] = models.Product{}
	c.entries = c.entries[:len(c.entries)-1]
	return removed, nil
}

func (c *Cart) Clear() {
	c.entries = nil
}

func (c *Cart) Count() int {
	return len(c.entries)
}

// Total sums entry prices in decimal so two-place prices add up exactly.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(decimal.NewFromFloat(e.Price))
	}
	return total
}

// Entries returns a copy of the entries in order.
func (c *Cart) Entries() []models.Product {
	out := make([]models.Product, len(c.entries))
	copy(out, c.entries)
	return out
}

// MarshalJSON encodes the cart as a plain array of entries.
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.entries)
}

// UnmarshalJSON decodes a plain array of entries. A negative price is rejected
// so a decoded cart always satisfies the same invariants as a built one.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var entries []models.Product
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for i, e := range entries {
		if e.Price < 0 {
			return fmt.Errorf("entry %d has negative price %v", i, e.Price)
		}
	}
	c.entries = entries
	return nil
}
