// Package storefront turns products and forms into the view models a front end
// renders: product cards, the registration page and the header.
package storefront

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/knpstore/sport-store/internal/product"
)

var (
	listPriceFactor = decimal.NewFromFloat(1.3)
	vnd             = message.NewPrinter(language.Vietnamese)
)

// Card is a product as shown in the grid.
type Card struct {
	ID        int
	Name      string
	Image     string
	Category  string
	Price     string
	ListPrice string
	Rating    string
	Sold      int
	SoldLabel string
	// Discount is the badge percentage, between 10 and 39.
	Discount int
}

func NewCard(p product.Product) Card {
	return Card{
		ID:        p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Category:  p.Category,
		Price:     FormatVND(p.Price),
		ListPrice: FormatVND(p.Price.Mul(listPriceFactor)),
		Rating:    p.Rating.StringFixed(1),
		Sold:      p.Sold,
		SoldLabel: "Sold " + strconv.Itoa(p.Sold),
		Discount:  discountFor(p.ID),
	}
}

func Cards(products []product.Product) []Card {
	out := make([]Card, 0, len(products))
	for _, p := range products {
		out = append(out, NewCard(p))
	}
	return out
}

// FormatVND renders an amount in whole dong, e.g. "1.250.000 ₫".
func FormatVND(amount decimal.Decimal) string {
	return vnd.Sprintf("%d ₫", amount.Round(0).IntPart())
}

// discountFor derives a stable badge value from the product id so the same card
// shows the same discount on every render.
func discountFor(id int) int {
	h := uint32(id)*2654435761 + 0x9e3779b9
	return 10 + int(h%30)
}
