package catalog

import (
	"context"
	"strings"

	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

type Filter struct {
	Category string
	Search   string
}

type Service struct {
	Unit *store.Unit
}

func NewService(u *store.Unit) *Service {
	return &Service{Unit: u}
}

// List returns the products matching f in catalog order. Search is a
// case-insensitive substring match over name and description.
func (s *Service) List(ctx context.Context, f Filter) ([]store.Product, error) {
	out := []store.Product{}
	err := s.Unit.View(ctx, func(d *store.Document) error {
		for _, p := range d.Products {
			if f.matches(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (s *Service) Get(ctx context.Context, id int) (store.Product, error) {
	var (
		p     store.Product
		found bool
	)
	err := s.Unit.View(ctx, func(d *store.Document) error {
		var pp *store.Product
		pp, found = d.ProductByID(id)
		if found {
			p = *pp
		}
		return nil
	})
	if err != nil {
		return store.Product{}, err
	}
	if !found {
		return store.Product{}, kit.NotFound("product not found")
	}
	return p, nil
}

func (f Filter) matches(p store.Product) bool {
	if f.Category != "" && f.Category != CategoryAll && p.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}
