package product

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/knpstore/sport-store/internal/category"
)

// Generate synthesizes count products with consecutive ids starting at startID.
// It backs the demo catalogue and the client-side mock source.
func Generate(rng *rand.Rand, startID, count int) []Product {
	names := category.Names()
	out := make([]Product, 0, count)
	for i := 0; i < count; i++ {
		id := startID + i
		out = append(out, Product{
			ID:       id,
			Name:     fmt.Sprintf("Sport product %d", id),
			Price:    decimal.NewFromInt(int64(rng.IntN(2_000_000) + 200_000)),
			Image:    fmt.Sprintf("https://placehold.co/400x400/3b82f6/ffffff?text=SP+%d", id),
			Category: names[rng.IntN(len(names))],
			Rating:   decimal.NewFromFloat(3.5).Add(decimal.NewFromInt(int64(rng.IntN(2)))),
			Sold:     rng.IntN(1000),
		})
	}
	return out
}
