package categories

import (
	"context"
	"fmt"

	"github.com/minimarket/minimarket/internal/masterdata/shared"
	"github.com/minimarket/minimarket/internal/platform/db"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form CategoryForm) (Category, error) {
	category, err := s.validate(form)
	if err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, category)
	return created, mapWriteErr(err)
}

func (s *Service) Update(ctx context.Context, id int64, form CategoryForm) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	category, err := s.validate(form)
	if err != nil {
		return Category{}, err
	}
	category.ID = id
	updated, err := s.repo.Update(ctx, category)
	return updated, mapWriteErr(err)
}

// Delete fails with shared.ErrInUse while products still reference the category.
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
		return httpx.FieldErrors{"name": "is already taken"}
	case db.IsForeignKeyViolation(err, ""):
		return shared.ErrInUse
	case httpx.IsClientError(err):
		return err
	default:
		return fmt.Errorf("categories: write: %w", err)
	}
}
