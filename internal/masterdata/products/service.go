package products

import (
	"context"
	"fmt"

	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/masterdata/shared"
	"github.com/minimarket/minimarket/internal/platform/db"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

const categoryFK = "products_category_id_fkey"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i] = items[i].withStatus()
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	return p.withStatus(), nil
}

// Catalog returns every product in the shape line-item lists seed from.
func (s *Service) Catalog(ctx context.Context) ([]lineitems.CatalogProduct, error) {
	items, _, err := s.repo.List(ctx, shared.ListFilters{SortBy: "name"})
	if err != nil {
		return nil, err
	}
	out := make([]lineitems.CatalogProduct, 0, len(items))
	for _, p := range items {
		out = append(out, lineitems.CatalogProduct{
			ID:        p.ID,
			Name:      p.Name,
			UnitCost:  p.UnitCost,
			UnitPrice: p.UnitPrice,
			Stock:     p.Stock,
		})
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	product, err := s.validate(form)
	if err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, mapWriteErr(err)
	}
	return created.withStatus(), nil
}

func (s *Service) Update(ctx context.Context, id int64, form ProductForm) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	product, err := s.validate(form)
	if err != nil {
		return Product{}, err
	}
	product.ID = id
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return Product{}, mapWriteErr(err)
	}
	return updated.withStatus(), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return mapWriteErr(s.repo.Delete(ctx, id))
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, ""):
		return httpx.FieldErrors{"code": "is already taken"}
	case db.IsForeignKeyViolation(err, categoryFK):
		return httpx.FieldErrors{"category_id": "does not exist"}
	case db.IsForeignKeyViolation(err, ""):
		return shared.ErrInUse
	case httpx.IsClientError(err):
		return err
	default:
		return fmt.Errorf("products: write: %w", err)
	}
}
