// Package drafts keeps in-progress purchase and sale forms server side until
// they are submitted or cancelled.
package drafts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

var (
	// ErrNotFound covers missing, expired and foreign drafts alike.
	ErrNotFound = fmt.Errorf("draft %w", httpx.ErrNotFound)
	// ErrInFlight is returned while another submit of the same draft runs.
	ErrInFlight = fmt.Errorf("draft submission already in progress: %w", httpx.ErrConflict)
)

// Rejection codes for edits that cannot be applied.
const (
	CodeEmptyCatalog = "EMPTY_CATALOG"
	CodeItemNotFound = "ITEM_NOT_FOUND"
	CodeUnknownField = "UNKNOWN_FIELD"
)

// RejectionError is a refused edit identified by a stable code.
type RejectionError struct {
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	return e.Err.Error()
}

// Code returns the machine-readable reason.
func (e *RejectionError) Code() string {
	return e.Reason
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Header holds the non-item fields of the form.
type Header struct {
	SupplierName string `json:"supplier_name,omitempty"`
	CustomerID   *int64 `json:"customer_id,omitempty"`
	Date         string `json:"date"`
}

// Draft is one open form. Reserved holds, for sale edits, the quantities the
// stored sale already took out of stock; they count as available again.
type Draft struct {
	ID            string          `json:"id"`
	Kind          lineitems.Kind  `json:"kind"`
	TransactionID *int64          `json:"transaction_id,omitempty"`
	OwnerID       int64           `json:"owner_id"`
	Header        Header          `json:"header"`
	List          *lineitems.List `json:"list"`
	Reserved      map[int64]int   `json:"reserved,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// View is the draft plus its derived totals.
type View struct {
	Draft
	Totals lineitems.Totals `json:"totals"`
}

func (d Draft) view() View {
	return View{Draft: d, Totals: d.List.Totals()}
}

// refreshStock adds back reserved quantity to the item's catalog stock.
func (d Draft) refreshStock(index int) {
	item := &d.List.Items[index]
	if item.Stock == nil {
		return
	}
	if extra, ok := d.Reserved[item.ProductID]; ok {
		stock := *item.Stock + extra
		item.Stock = &stock
	}
}

// CreateRequest opens a draft, optionally seeded from a stored transaction.
type CreateRequest struct {
	Kind          lineitems.Kind `json:"kind" validate:"required,oneof=purchase sale"`
	TransactionID *int64         `json:"transaction_id" validate:"omitempty,gt=0"`
}

// UpdateItemRequest sets one field of one item.
type UpdateItemRequest struct {
	Field string     `json:"field" validate:"required"`
	Value FieldValue `json:"value"`
}

// HeaderRequest updates header fields; nil fields are left as they are and a
// customer_id of 0 clears the customer.
type HeaderRequest struct {
	SupplierName *string `json:"supplier_name" validate:"omitempty,max=150"`
	CustomerID   *int64  `json:"customer_id" validate:"omitempty,gte=0"`
	Date         *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// SubmitResult identifies the stored transaction.
type SubmitResult struct {
	Kind     lineitems.Kind `json:"kind"`
	ID       int64          `json:"id"`
	Location string         `json:"location"`
}

// FieldValue accepts either a JSON string or a JSON number.
type FieldValue string

// UnmarshalJSON keeps numbers in their literal form.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FieldValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FieldValue(n.String())
	return nil
}
