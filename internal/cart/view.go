package cart

import (
	"github.com/shopspring/decimal"
)

// State is the cart view's display state.
type State string

const (
	StateEmpty    State = "empty"
	StateNonEmpty State = "non_empty"
)

const EmptyMessage = "Your cart is empty."

// Row is one displayed entry. Index is the entry's current position and is the
// only address the remove action accepts.
type Row struct {
	Index     int     `json:"index"`
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	PriceText string  `json:"price_text"`
	ImageURL  string  `json:"image_url"`
}

// View is everything a surface needs to display the cart. It is a pure
// function of the entries: Count is their length and Total their price sum.
type View struct {
	State        State           `json:"state"`
	Count        int             `json:"count"`
	Rows         []Row           `json:"rows"`
	Total        decimal.Decimal `json:"total"`
	TotalText    string          `json:"total_text"`
	EmptyMessage string          `json:"empty_message,omitempty"`
}

func (v View) IsEmpty() bool {
	return v.State == StateEmpty
}

// Render builds the view for c. An empty cart renders with no rows and no summary.
func Render(c *Cart) View {
	if c.Count() == 0 {
		return View{
			State:        StateEmpty,
			Rows:         []Row{},
			Total:        decimal.Zero,
			TotalText:    FormatPrice(decimal.Zero),
			EmptyMessage: EmptyMessage,
		}
	}

	rows := make([]Row, 0, c.Count())
	for i, e := range c.entries {
		rows = append(rows, Row{
			Index:     i,
			ID:        e.ID,
			Name:      e.Name,
			Price:     e.Price,
			PriceText: FormatPrice(decimal.NewFromFloat(e.Price)),
			ImageURL:  e.ImageURL,
		})
	}

	total := c.Total()
	return View{
		State:     StateNonEmpty,
		Count:     len(rows),
		Rows:      rows,
		Total:     total,
		TotalText: FormatPrice(total),
	}
}

// FormatPrice renders an amount with exactly two decimal places.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
