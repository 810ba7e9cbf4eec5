package categories

import (
	"strings"

	"github.com/minimarket/minimarket/internal/platform/httpx"
)

func (s *Service) validate(form CategoryForm) (Category, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Description = strings.TrimSpace(form.Description)
	if err := httpx.ValidateStruct(form); err != nil {
		return Category{}, err
	}
	return Category{Name: form.Name, Description: form.Description}, nil
}
