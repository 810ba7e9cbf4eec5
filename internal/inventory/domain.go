package inventory

import "errors"

// StockStatus classifies a product's stock level against its minimum.
type StockStatus string

const (
	// StockOutOfStock means no units left.
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	// StockCritical means stock is at or below the minimum.
	StockCritical StockStatus = "CRITICAL"
	// StockWarning means stock is at or below twice the minimum.
	StockWarning StockStatus = "WARNING"
	// StockLow is the fallback bucket, including products without a minimum.
	StockLow StockStatus = "LOW"
)

// warningMultiplier scales min_stock into the WARNING ceiling.
const warningMultiplier = 2

// ClassifyStock maps stock and an optional min_stock to a StockStatus.
// Rules are evaluated in order and the first match wins.
func ClassifyStock(stock int, minStock *int) StockStatus {
	if stock == 0 {
		return StockOutOfStock
	}
	if minStock != nil {
		if stock <= *minStock {
			return StockCritical
		}
		if stock <= warningMultiplier*(*minStock) {
			return StockWarning
		}
	}
	return StockLow
}

// NeedsAttention reports whether the status belongs on the low stock widget.
func (s StockStatus) NeedsAttention() bool {
	return s != StockLow
}

// Candidate is a product row considered for stock or expiry alerts.
type Candidate struct {
	ProductID  int64
	Name       string
	Stock      int
	MinStock   *int
	ExpiryDate string
}

// StockAlertEntry is one row of the low stock widget.
type StockAlertEntry struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	Stock     int         `json:"stock"`
	MinStock  *int        `json:"min_stock,omitempty"`
	Status    StockStatus `json:"status"`
}

// ExpiryAlertEntry is one row of the expiring products widget.
type ExpiryAlertEntry struct {
	ProductID     int64        `json:"product_id"`
	Name          string       `json:"name"`
	ExpiryDate    string       `json:"expiry_date"`
	Stock         int          `json:"stock"`
	DaysRemaining *int         `json:"days_remaining"`
	DaysLabel     string       `json:"days_label"`
	Urgency       AlertUrgency `json:"urgency"`
}

// AlertKind identifies a dismissible dashboard widget.
type AlertKind string

const (
	AlertKindStock  AlertKind = "stock"
	AlertKindExpiry AlertKind = "expiry"
)

// Valid reports whether k names a known widget.
func (k AlertKind) Valid() bool {
	return k == AlertKindStock || k == AlertKindExpiry
}

// ErrUnknownAlertKind is returned for an unsupported widget name.
var ErrUnknownAlertKind = errors.New("inventory: unknown alert kind")
