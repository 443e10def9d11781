package product

import "math"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Page returns the 1-based page of the catalogue. Out-of-range arguments are
// clamped: page to at least 1, limit to [1, MaxPageSize].
func (s *Service) Page(page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	offset := math.MaxInt
	if page-1 <= (math.MaxInt-limit)/limit {
		offset = (page - 1) * limit
	}
	items, total, err := s.repo.Page(offset, limit)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: page <= (total-1)/limit,
	}, nil
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

// ResetProducts replaces all products with the given list (used for dev / seeding).
func (s *Service) ResetProducts(products []Product) error {
	return s.repo.Reset(products)
}
