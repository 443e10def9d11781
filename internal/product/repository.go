package product

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	// Page returns up to limit products after skipping offset, ordered by id,
	// together with the total number of products.
	Page(offset, limit int) ([]Product, int, error)
	GetByID(id int) (Product, error)
	// Reset replaces all products with the provided list (used for dev / seeding)
	Reset(products []Product) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{nextID: 1}
	_ = r.Reset(seed)
	return r
}

func (r *InMemoryRepository) Page(offset, limit int) ([]Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.storage)
	if offset < 0 || offset >= total {
		return []Product{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]Product, end-offset)
	copy(out, r.storage[offset:end])
	return out, total, nil
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Reset replaces the whole in-memory storage with the provided products.
func (r *InMemoryRepository) Reset(products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = make([]Product, 0, len(products))
	maxID := 0
	for _, p := range products {
		if p.ID == 0 {
			p.ID = r.nextID
			r.nextID++
		}
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	if maxID >= r.nextID {
		r.nextID = maxID + 1
	}
	return nil
}
