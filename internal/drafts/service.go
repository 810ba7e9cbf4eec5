package drafts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/procurement"
	"github.com/minimarket/minimarket/internal/routes"
	"github.com/minimarket/minimarket/internal/sales"
)

const processingTTL = 30 * time.Second

// StorePort persists drafts and their processing flag.
type StorePort interface {
	Save(ctx context.Context, d Draft, ttl time.Duration) error
	Load(ctx context.Context, id string) (Draft, error)
	Delete(ctx context.Context, id string) error
	Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id string) error
}

// Catalog lists the products an item can point at.
type Catalog interface {
	Catalog(ctx context.Context) ([]lineitems.CatalogProduct, error)
}

// PurchaseSubmitter stores purchases.
type PurchaseSubmitter interface {
	Get(ctx context.Context, id int64) (procurement.Purchase, error)
	Create(ctx context.Context, actorID int64, in procurement.PurchaseInput) (procurement.Purchase, error)
	Update(ctx context.Context, id int64, in procurement.PurchaseInput) (procurement.Purchase, error)
}

// SaleSubmitter stores sales.
type SaleSubmitter interface {
	Get(ctx context.Context, id int64) (sales.Sale, error)
	Create(ctx context.Context, actorID int64, in sales.SaleInput) (sales.Sale, error)
	Update(ctx context.Context, id int64, in sales.SaleInput) (sales.Sale, error)
}

// RejectionRecorder counts submissions refused before reaching storage.
type RejectionRecorder interface {
	RecordRejection(kind, code string)
}

// Service coordinates draft editing and submission.
type Service struct {
	store     StorePort
	catalog   Catalog
	purchases PurchaseSubmitter
	sales     SaleSubmitter
	metrics   RejectionRecorder
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the draft service. metrics may be nil.
func NewService(store StorePort, catalog Catalog, purchases PurchaseSubmitter, sales SaleSubmitter, metrics RejectionRecorder, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		catalog:   catalog,
		purchases: purchases,
		sales:     sales,
		metrics:   metrics,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Create opens a draft for ownerID.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateRequest) (View, error) {
	if err := httpx.ValidateStruct(req); err != nil {
		return View{}, err
	}
	now := s.now()
	d := Draft{
		ID:            uuid.NewString(),
		Kind:          req.Kind,
		TransactionID: req.TransactionID,
		OwnerID:       ownerID,
		Header:        Header{Date: now.Format("2006-01-02")},
		List:          lineitems.New(req.Kind.PriceField()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.TransactionID != nil {
		if err := s.seed(ctx, &d, *req.TransactionID); err != nil {
			return View{}, err
		}
	}
	if err := s.store.Save(ctx, d, s.ttl); err != nil {
		return View{}, err
	}
	return d.view(), nil
}

func (s *Service) seed(ctx context.Context, d *Draft, txID int64) error {
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return err
	}
	stock := make(map[int64]int, len(catalog))
	for _, p := range catalog {
		stock[p.ID] = p.Stock
	}
	add := func(productID int64, name string, qty int, price decimal.Decimal) {
		item := lineitems.Item{ProductID: productID, Name: name, Qty: qty, Price: price}
		if level, ok := stock[productID]; ok {
			item.Stock = &level
		}
		d.List.Items = append(d.List.Items, item)
	}

	switch d.Kind {
	case lineitems.KindPurchase:
		p, err := s.purchases.Get(ctx, txID)
		if err != nil {
			return err
		}
		d.Header.SupplierName = p.SupplierName
		d.Header.Date = p.PurchaseDate.Format("2006-01-02")
		for _, it := range p.Items {
			add(it.ProductID, it.ProductName, it.Qty, it.UnitCost)
		}
	case lineitems.KindSale:
		sale, err := s.sales.Get(ctx, txID)
		if err != nil {
			return err
		}
		d.Header.CustomerID = sale.CustomerID
		d.Header.Date = sale.SaleDate.Format("2006-01-02")
		d.Reserved = make(map[int64]int, len(sale.Items))
		for _, it := range sale.Items {
			d.Reserved[it.ProductID] += it.Qty
		}
		for _, it := range sale.Items {
			add(it.ProductID, it.ProductName, it.Qty, it.UnitPrice)
			d.refreshStock(d.List.Len() - 1)
		}
	}
	return nil
}

// Get returns a draft owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID int64, id string) (View, error) {
	d, err := s.load(ctx, ownerID, id)
	if err != nil {
		return View{}, err
	}
	return d.view(), nil
}

// AddItem appends a default item seeded from the first catalog product.
func (s *Service) AddItem(ctx context.Context, ownerID int64, id string) (View, error) {
	return s.edit(ctx, ownerID, id, func(d *Draft) error {
		catalog, err := s.catalog.Catalog(ctx)
		if err != nil {
			return err
		}
		if _, err := d.List.AddDefault(catalog); err != nil {
			return reject(err)
		}
		d.refreshStock(d.List.Len() - 1)
		return nil
	})
}

// UpdateItem sets one field of the item at index.
func (s *Service) UpdateItem(ctx context.Context, ownerID int64, id string, index int, req UpdateItemRequest) (View, error) {
	if err := httpx.ValidateStruct(req); err != nil {
		return View{}, err
	}
	return s.edit(ctx, ownerID, id, func(d *Draft) error {
		var catalog []lineitems.CatalogProduct
		if req.Field == lineitems.FieldProductID {
			var err error
			if catalog, err = s.catalog.Catalog(ctx); err != nil {
				return err
			}
		}
		if err := d.List.Update(index, req.Field, string(req.Value), catalog); err != nil {
			return reject(err)
		}
		if req.Field == lineitems.FieldProductID {
			d.refreshStock(index)
		}
		return nil
	})
}

// RemoveItem deletes the item at index.
func (s *Service) RemoveItem(ctx context.Context, ownerID int64, id string, index int) (View, error) {
	return s.edit(ctx, ownerID, id, func(d *Draft) error {
		return reject(d.List.Remove(index))
	})
}

// UpdateHeader applies the non-nil header fields.
func (s *Service) UpdateHeader(ctx context.Context, ownerID int64, id string, req HeaderRequest) (View, error) {
	if err := httpx.ValidateStruct(req); err != nil {
		return View{}, err
	}
	return s.edit(ctx, ownerID, id, func(d *Draft) error {
		if req.SupplierName != nil {
			d.Header.SupplierName = *req.SupplierName
		}
		if req.CustomerID != nil {
			if *req.CustomerID == 0 {
				d.Header.CustomerID = nil
			} else {
				customerID := *req.CustomerID
				d.Header.CustomerID = &customerID
			}
		}
		if req.Date != nil {
			d.Header.Date = *req.Date
		}
		return nil
	})
}

// Submit validates the draft and stores it as a purchase or sale. The draft
// survives any failure so the form can be corrected and resubmitted. The
// draft is read only while the processing flag is held.
func (s *Service) Submit(ctx context.Context, ownerID int64, id string) (SubmitResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SubmitResult{}, ErrNotFound
	}
	ok, err := s.store.Acquire(ctx, id, processingTTL)
	if err != nil {
		return SubmitResult{}, err
	}
	if !ok {
		return SubmitResult{}, ErrInFlight
	}
	defer func() {
		if err := s.store.Release(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Warn("release draft flag", slog.String("draft", id), slog.Any("error", err))
		}
	}()

	d, err := s.load(ctx, ownerID, id)
	if err != nil {
		return SubmitResult{}, err
	}

	if err := d.List.Validate(d.Kind); err != nil {
		var rejection *lineitems.SubmissionError
		if errors.As(err, &rejection) && s.metrics != nil {
			s.metrics.RecordRejection(string(d.Kind), rejection.Code())
		}
		return SubmitResult{}, err
	}

	result := SubmitResult{Kind: d.Kind}
	switch d.Kind {
	case lineitems.KindPurchase:
		p, err := s.submitPurchase(ctx, d)
		if err != nil {
			return SubmitResult{}, err
		}
		result.ID = p.ID
	case lineitems.KindSale:
		sale, err := s.submitSale(ctx, d)
		if err != nil {
			return SubmitResult{}, err
		}
		result.ID = sale.ID
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("delete submitted draft", slog.String("draft", id), slog.Any("error", err))
	}
	route := "purchases.show"
	if d.Kind == lineitems.KindSale {
		route = "sales.show"
	}
	result.Location, _ = routes.Resolve(route, result.ID)
	return result, nil
}

func (s *Service) submitPurchase(ctx context.Context, d Draft) (procurement.Purchase, error) {
	in := procurement.PurchaseInput{
		SupplierName: d.Header.SupplierName,
		PurchaseDate: d.Header.Date,
		Items:        make([]procurement.ItemInput, 0, d.List.Len()),
	}
	for _, it := range d.List.Items {
		in.Items = append(in.Items, procurement.ItemInput{ProductID: it.ProductID, Qty: it.Qty, UnitCost: it.Price})
	}
	if d.TransactionID != nil {
		return s.purchases.Update(ctx, *d.TransactionID, in)
	}
	return s.purchases.Create(ctx, d.OwnerID, in)
}

func (s *Service) submitSale(ctx context.Context, d Draft) (sales.Sale, error) {
	in := sales.SaleInput{
		CustomerID: d.Header.CustomerID,
		SaleDate:   d.Header.Date,
		Items:      make([]sales.ItemInput, 0, d.List.Len()),
	}
	for _, it := range d.List.Items {
		in.Items = append(in.Items, sales.ItemInput{ProductID: it.ProductID, Qty: it.Qty, UnitPrice: it.Price, Stock: it.Stock})
	}
	if d.TransactionID != nil {
		return s.sales.Update(ctx, *d.TransactionID, in)
	}
	return s.sales.Create(ctx, d.OwnerID, in)
}

// Cancel discards a draft.
func (s *Service) Cancel(ctx context.Context, ownerID int64, id string) error {
	if _, err := s.load(ctx, ownerID, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) load(ctx context.Context, ownerID int64, id string) (Draft, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Draft{}, ErrNotFound
	}
	d, err := s.store.Load(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	if d.OwnerID != ownerID {
		return Draft{}, ErrNotFound
	}
	if d.List == nil {
		d.List = lineitems.New(d.Kind.PriceField())
	}
	return d, nil
}

func (s *Service) edit(ctx context.Context, ownerID int64, id string, fn func(*Draft) error) (View, error) {
	d, err := s.load(ctx, ownerID, id)
	if err != nil {
		return View{}, err
	}
	if err := fn(&d); err != nil {
		return View{}, err
	}
	d.UpdatedAt = s.now()
	if err := s.store.Save(ctx, d, s.ttl); err != nil {
		return View{}, err
	}
	return d.view(), nil
}

func reject(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lineitems.ErrEmptyCatalog):
		return &RejectionError{Reason: CodeEmptyCatalog, Err: err}
	case errors.Is(err, lineitems.ErrIndexOutOfRange):
		return &RejectionError{Reason: CodeItemNotFound, Err: err}
	case errors.Is(err, lineitems.ErrUnknownField):
		return &RejectionError{Reason: CodeUnknownField, Err: err}
	default:
		return err
	}
}
