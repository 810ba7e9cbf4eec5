package procurement

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

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Purchase, error)
	List(ctx context.Context, filter ListFilter) ([]Purchase, int, error)
}

// CacheInvalidator is notified after every committed mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service orchestrates purchase flows.
type Service struct {
	repo   RepositoryPort
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Get returns one purchase with items.
func (s *Service) Get(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.Get(ctx, id)
}

// List returns purchases, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	return s.repo.List(ctx, filter)
}

// Create records a purchase and adds its quantities to product stock.
func (s *Service) Create(ctx context.Context, actorID int64, in PurchaseInput) (Purchase, error) {
	purchase, err := s.prepare(in)
	if err != nil {
		return Purchase{}, err
	}
	purchase.CreatedBy = actorID

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		id, err = tx.InsertPurchase(ctx, purchase)
		if err != nil {
			return err
		}
		if err := tx.ReplaceItems(ctx, id, purchase.Items); err != nil {
			return err
		}
		return s.applyStock(ctx, tx, purchase.Items, nil, purchase.Items)
	})
	if err != nil {
		return Purchase{}, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Update replaces a purchase; stock moves by the difference between old and new items.
func (s *Service) Update(ctx context.Context, id int64, in PurchaseInput) (Purchase, error) {
	purchase, err := s.prepare(in)
	if err != nil {
		return Purchase{}, err
	}
	purchase.ID = id

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		previous, err := tx.LockItems(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.UpdatePurchase(ctx, purchase); err != nil {
			return err
		}
		if err := tx.ReplaceItems(ctx, id, purchase.Items); err != nil {
			return err
		}
		return s.applyStock(ctx, tx, purchase.Items, previous, purchase.Items)
	})
	if err != nil {
		return Purchase{}, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a purchase and takes its quantities back out of stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		previous, err := tx.LockItems(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyStock(ctx, tx, previous, previous, nil); err != nil {
			return err
		}
		return tx.DeletePurchase(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) prepare(in PurchaseInput) (Purchase, error) {
	if err := httpx.ValidateStruct(in); err != nil {
		return Purchase{}, err
	}
	list := in.LineItems()
	if err := list.Validate(lineitems.KindPurchase); err != nil {
		return Purchase{}, err
	}
	fields := httpx.FieldErrors{}
	for i, it := range list.Items {
		if it.ProductID <= 0 {
			fields["items."+strconv.Itoa(i)+".product_id"] = "is required"
		}
	}
	if len(fields) > 0 {
		return Purchase{}, fields
	}
	date, err := time.Parse(time.DateOnly, in.PurchaseDate)
	if err != nil {
		return Purchase{}, httpx.FieldErrors{"purchase_date": "must be a date formatted as " + time.DateOnly}
	}

	totals := list.Totals()
	items := make([]PurchaseItem, len(list.Items))
	for i, it := range list.Items {
		items[i] = PurchaseItem{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			UnitCost:  it.Price,
			Subtotal:  totals.Subtotals[i],
		}
	}
	return Purchase{
		SupplierName: in.SupplierName,
		PurchaseDate: date,
		Items:        items,
		Total:        totals.GrandTotal,
	}, nil
}

// applyStock moves stock from before to after. positions maps product ids to
// the item index used in field errors.
func (s *Service) applyStock(ctx context.Context, tx TxRepository, positions, before, after []PurchaseItem) error {
	for _, m := range inventory.NetMovements(quantities(before), quantities(after)) {
		if _, err := tx.AdjustStock(ctx, m.ProductID, m.Delta); err != nil {
			return stockError(err, positions, m.ProductID)
		}
	}
	return nil
}

func stockError(err error, items []PurchaseItem, productID int64) error {
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
		return httpx.FieldErrors{key + ".qty": fmt.Sprintf("only %d left in stock; the rest has already been sold", shortage.Available)}
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
