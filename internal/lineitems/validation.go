package lineitems

import "fmt"

// Kind identifies which transaction a list is submitted as.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindSale     Kind = "sale"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindPurchase || k == KindSale
}

// PriceField returns the money field edited for k.
func (k Kind) PriceField() PriceField {
	if k == KindPurchase {
		return UnitCost
	}
	return UnitPrice
}

// Rejection codes returned by Validate.
const (
	CodeEmptyItems        = "EMPTY_ITEMS"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeInvalidPrice      = "INVALID_PRICE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// SubmissionError is a pre-submission rejection. Index is -1 for EMPTY_ITEMS.
type SubmissionError struct {
	Reason string
	Index  int
	Name   string
}

func (e *SubmissionError) Error() string {
	switch e.Reason {
	case CodeEmptyItems:
		return "at least one item is required"
	case CodeInvalidQuantity:
		return fmt.Sprintf("item %d: quantity must be greater than zero", e.Index+1)
	case CodeInvalidPrice:
		return fmt.Sprintf("item %d: price must not be negative", e.Index+1)
	case CodeInsufficientStock:
		return fmt.Sprintf("item %d: not enough stock for %s", e.Index+1, e.Name)
	default:
		return e.Reason
	}
}

// Code exposes the machine-readable reason.
func (e *SubmissionError) Code() string {
	return e.Reason
}

// Validate runs the submission checks in order and returns the first failure.
// The stock check is advisory; the sale repository enforces stock authoritatively.
func (l *List) Validate(kind Kind) error {
	if len(l.Items) == 0 {
		return &SubmissionError{Reason: CodeEmptyItems, Index: -1}
	}
	for i, item := range l.Items {
		if item.Qty <= 0 {
			return &SubmissionError{Reason: CodeInvalidQuantity, Index: i, Name: item.Name}
		}
	}
	for i, item := range l.Items {
		if item.Price.IsNegative() {
			return &SubmissionError{Reason: CodeInvalidPrice, Index: i, Name: item.Name}
		}
	}
	if kind == KindSale {
		for i, item := range l.Items {
			if item.Stock != nil && item.Qty > *item.Stock {
				return &SubmissionError{Reason: CodeInsufficientStock, Index: i, Name: item.Name}
			}
		}
	}
	return nil
}
