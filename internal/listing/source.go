package listing

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/knpstore/sport-store/internal/apiclient"
	"github.com/knpstore/sport-store/internal/product"
)

// Page is one batch of products from a Source.
type Page struct {
	Items   []product.Product
	HasMore bool
}

// Source supplies product pages, numbered from 1.
type Source interface {
	FetchPage(ctx context.Context, page int) (Page, error)
}

// MockSource synthesizes a catalogue of MaxPages pages of PageSize products.
type MockSource struct {
	PageSize int
	MaxPages int
	Latency  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockSource(seed uint64, latency time.Duration) *MockSource {
	return &MockSource{
		PageSize: product.DefaultPageSize,
		MaxPages: 5,
		Latency:  latency,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *MockSource) FetchPage(ctx context.Context, page int) (Page, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-timer.C:
		}
	}
	if page < 1 || page > s.MaxPages {
		return Page{}, nil
	}

	s.mu.Lock()
	items := product.Generate(s.rng, (page-1)*s.PageSize+1, s.PageSize)
	s.mu.Unlock()

	return Page{Items: items, HasMore: page < s.MaxPages}, nil
}

// RemoteSource reads pages from the store API.
type RemoteSource struct {
	client *apiclient.Client
	limit  int
}

func NewRemoteSource(client *apiclient.Client, limit int) *RemoteSource {
	if limit <= 0 {
		limit = product.DefaultPageSize
	}
	return &RemoteSource{client: client, limit: limit}
}

func (s *RemoteSource) FetchPage(ctx context.Context, page int) (Page, error) {
	p, err := s.client.ListProducts(ctx, page, s.limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: p.Items, HasMore: p.HasMore}, nil
}
