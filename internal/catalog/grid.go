package catalog

import (
	"strconv"

	"github.com/Lixing-Zhang/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Card is one rendered product. Product is the exact value the card's add
// action hands to the cart.
type Card struct {
	Product   models.Product
	PriceText string
	// PriceValue is the lossless form of Price used in the add form.
	PriceValue string
}

// Grid is an ordered list of cards.
type Grid struct {
	Cards []Card
}

func (g Grid) Empty() bool {
	return len(g.Cards) == 0
}

// NewGrid renders one card per product, preserving input order.
func NewGrid(products []models.Product) Grid {
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, Card{
			Product:    p,
			PriceText:  decimal.NewFromFloat(p.Price).StringFixed(2),
			PriceValue: strconv.FormatFloat(p.Price, 'f', -1, 64),
		})
	}
	return Grid{Cards: cards}
}
