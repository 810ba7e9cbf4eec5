package customers

import (
	"strings"

	"github.com/minimarket/minimarket/internal/platform/httpx"
)

func (s *Service) validate(form CustomerForm) (Customer, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	form.Address = strings.TrimSpace(form.Address)
	if err := httpx.ValidateStruct(form); err != nil {
		return Customer{}, err
	}
	return Customer{Name: form.Name, Phone: form.Phone, Email: form.Email, Address: form.Address}, nil
}
