package products

import (
	"errors"
	"strings"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

func (s *Service) validate(form ProductForm) (Product, error) {
	form.Code = strings.TrimSpace(form.Code)
	form.Name = strings.TrimSpace(form.Name)

	fields := httpx.FieldErrors{}
	if err := httpx.ValidateStruct(form); err != nil {
		var fe httpx.FieldErrors
		if !errors.As(err, &fe) {
			return Product{}, err
		}
		fields = fe
	}
	if form.UnitCost.IsNegative() {
		fields["unit_cost"] = "must not be negative"
	}
	if form.UnitPrice.IsNegative() {
		fields["unit_price"] = "must not be negative"
	}

	var expiry *string
	if form.ExpiryDate != nil && strings.TrimSpace(*form.ExpiryDate) != "" {
		t, err := inventory.ParseExpiryDate(*form.ExpiryDate)
		if err != nil {
			fields["expiry_date"] = "must be a date formatted as " + inventory.DateLayout
		} else {
			normalized := t.Format(inventory.DateLayout)
			expiry = &normalized
		}
	}
	var image *string
	if form.Image != nil && strings.TrimSpace(*form.Image) != "" {
		trimmed := strings.TrimSpace(*form.Image)
		image = &trimmed
	}
	if len(fields) > 0 {
		return Product{}, fields
	}
	return Product{
		Code:       form.Code,
		Name:       form.Name,
		CategoryID: form.CategoryID,
		UnitCost:   form.UnitCost,
		UnitPrice:  form.UnitPrice,
		Stock:      form.Stock,
		MinStock:   form.MinStock,
		ExpiryDate: expiry,
		Image:      image,
	}, nil
}
