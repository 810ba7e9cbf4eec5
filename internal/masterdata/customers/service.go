package customers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form CustomerForm) (Customer, error) {
	customer, err := s.validate(form)
	if err != nil {
		return Customer{}, err
	}
	created, err := s.repo.Create(ctx, customer)
	return created, mapWriteErr(err)
}

func (s *Service) Update(ctx context.Context, id int64, form CustomerForm) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrInvalidID
	}
	customer, err := s.validate(form)
	if err != nil {
		return Customer{}, err
	}
	customer.ID = id
	updated, err := s.repo.Update(ctx, customer)
	return updated, mapWriteErr(err)
}

// Delete keeps historical sales intact: customers referenced by a sale cannot be removed.
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
		return httpx.FieldErrors{"email": "is already registered"}
	case db.IsForeignKeyViolation(err, ""):
		return shared.ErrInUse
	case httpx.IsClientError(err):
		return err
	default:
		return fmt.Errorf("customers: write: %w", err)
	}
}
