package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrInsufficientStock is the authoritative stock rejection raised inside the transaction.
var ErrInsufficientStock = inventory.ErrInsufficientStock

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context, filter ListFilter) ([]Sale, int, error)
}

// CacheInvalidator is notified after every committed mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service orchestrates sale flows.
type Service struct {
	repo   RepositoryPort
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewService constructs the sales service.
func NewService(repo RepositoryPort, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Get returns one sale with items.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns sales, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	return s.repo.List(ctx, filter)
}

// Create records a sale and takes its quantities out of stock.
func (s *Service) Create(ctx context.Context, actorID int64, in SaleInput) (Sale, error) {
	sale, err := s.prepare(in)
	if err != nil {
		return Sale{}, err
	}
	sale.CreatedBy = actorID

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		if err := tx.ReplaceItems(ctx, id, sale.Items); err != nil {
			return err
		}
		return applyStock(ctx, tx, sale.Items, nil, sale.Items)
	})
	if err != nil {
		return Sale{}, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Update replaces a sale; quantities released by the old items count as available.
func (s *Service) Update(ctx context.Context, id int64, in SaleInput) (Sale, error) {
	sale, err := s.prepare(in)
	if err != nil {
		return Sale{}, err
	}
	sale.ID = id

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		previous, err := tx.LockItems(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}
		if err := tx.ReplaceItems(ctx, id, sale.Items); err != nil {
			return err
		}
		return applyStock(ctx, tx, sale.Items, previous, sale.Items)
	})
	if err != nil {
		return Sale{}, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a sale and returns its quantities to stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		previous, err := tx.LockItems(ctx, id)
		if err != nil {
			return err
		}
		if err := applyStock(ctx, tx, previous, previous, nil); err != nil {
			return err
		}
		return tx.DeleteSale(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) prepare(in SaleInput) (Sale, error) {
	if err := httpx.ValidateStruct(in); err != nil {
		return Sale{}, err
	}
	list := in.LineItems()
	if err := list.Validate(lineitems.KindSale); err != nil {
		return Sale{}, err
	}
	fields := httpx.FieldErrors{}
	for i, it := range list.Items {
		if it.ProductID <= 0 {
			fields["items."+strconv.Itoa(i)+".product_id"] = "is required"
		}
	}
	if len(fields) > 0 {
		return Sale{}, fields
	}
	date, err := time.Parse(time.DateOnly, in.SaleDate)
	if err != nil {
		return Sale{}, httpx.FieldErrors{"sale_date": "must be a date formatted as " + time.DateOnly}
	}

	totals := list.Totals()
	items := make([]SaleItem, len(list.Items))
	for i, it := range list.Items {
		items[i] = SaleItem{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			UnitPrice: it.Price,
			Subtotal:  totals.Subtotals[i],
		}
	}
	return Sale{
		CustomerID: in.CustomerID,
		SaleDate:   date,
		Items:      items,
		Total:      totals.GrandTotal,
	}, nil
}

// applyStock releases before and takes after. Sold quantities are negative movements.
func applyStock(ctx context.Context, tx TxRepository, positions, before, after []SaleItem) error {
	for _, m := range inventory.NetMovements(quantities(after), quantities(before)) {
		if _, err := tx.AdjustStock(ctx, m.ProductID, m.Delta); err != nil {
			return stockError(err, positions, m.ProductID)
		}
	}
	return nil
}

func stockError(err error, items []SaleItem, productID int64) error {
	key := "items"
	for i, it := range items {
		if it.ProductID == productID {
			key = "items." + strconv.Itoa(i)
			break
		}
	}
	var shortage *inventory.ShortageError
	switch {
	case errors.Is(err, inventory.ErrProductNotFound):
		return httpx.FieldErrors{key + ".product_id": "does not exist"}
	case errors.As(err, &shortage):
		return httpx.FieldErrors{key + ".qty": fmt.Sprintf("insufficient stock, %d available", shortage.Available)}
	default:
		return err
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate report cache", slog.Any("error", err))
	}
}
