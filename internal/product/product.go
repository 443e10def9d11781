package product

import (
	"github.com/shopspring/decimal"
)

// DefaultPageSize is the number of products in one listing page.
const DefaultPageSize = 12

// MaxPageSize caps the limit a client may ask for.
const MaxPageSize = 100

var maxRating = decimal.NewFromInt(5)

// Product is a catalogue entry. Prices are in VND.
type Product struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Rating   decimal.Decimal `json:"rating"`
	Sold     int             `json:"sold"`
}

// Page is one page of the catalogue listing.
type Page struct {
	Items   []Product `json:"items"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
	Total   int       `json:"total"`
	HasMore bool      `json:"has_more"`
}
