package storefront

import (
	"log/slog"
	"strings"

	"github.com/knpstore/sport-store/internal/category"
	"github.com/knpstore/sport-store/internal/overlay"
)

const SearchPlaceholder = "Search for sports products..."

// Header is the top bar: text search, image search, sign-in and categories.
type Header struct {
	overlays *overlay.Orchestrator
	log      *slog.Logger
}

func NewHeader(overlays *overlay.Orchestrator, log *slog.Logger) *Header {
	return &Header{overlays: overlays, log: log}
}

// Search is a placeholder for text search; it only logs the query.
func (h *Header) Search(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	h.log.Info("search requested", "query", text)
}

func (h *Header) OpenImageSearch() {
	h.overlays.OpenImageSearch()
}

func (h *Header) SignIn() {
	h.overlays.OpenLogin()
}

func (h *Header) Categories() []string {
	return category.Names()
}
