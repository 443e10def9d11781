package storefront

import (
	"context"
	"log/slog"

	"github.com/knpstore/sport-store/internal/listing"
	"github.com/knpstore/sport-store/internal/overlay"
)

// Storefront is the home page: header, product grid and overlays, plus the
// standalone registration page.
type Storefront struct {
	Header   *Header
	Products *listing.Loader
	Overlays *overlay.Orchestrator
	Register *RegisterPage
}

func New(products *listing.Loader, overlays *overlay.Orchestrator, register *RegisterPage, log *slog.Logger) *Storefront {
	return &Storefront{
		Header:   NewHeader(overlays, log),
		Products: products,
		Overlays: overlays,
		Register: register,
	}
}

// Open loads the first product page.
func (s *Storefront) Open(ctx context.Context) error {
	return s.Products.Start(ctx)
}

func (s *Storefront) Cards() []Card {
	return Cards(s.Products.Items())
}

// AddToCart forwards to the overlays; guests are asked to sign in.
func (s *Storefront) AddToCart(productID int) bool {
	return s.Overlays.AddToCart(productID)
}

// Close stops pending loads and timers. Results that arrive later are dropped.
func (s *Storefront) Close() {
	s.Products.Close()
	s.Overlays.Dispose()
	s.Products.Wait()
}
