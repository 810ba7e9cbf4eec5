// Package masterdata mounts the category, product and customer endpoints.
package masterdata

import (
	"github.com/go-chi/chi/v5"

	"github.com/minimarket/minimarket/internal/masterdata/categories"
	"github.com/minimarket/minimarket/internal/masterdata/customers"
	"github.com/minimarket/minimarket/internal/masterdata/products"
)

// Handlers groups the master data handlers.
type Handlers struct {
	Categories *categories.Handler
	Products   *products.Handler
	Customers  *customers.Handler
}

// MountRoutes registers master data routes.
func (h Handlers) MountRoutes(r chi.Router) {
	if h.Categories != nil {
		r.Route("/categories", h.Categories.MountRoutes)
	}
	if h.Products != nil {
		r.Route("/products", h.Products.MountRoutes)
	}
	if h.Customers != nil {
		r.Route("/customers", h.Customers.MountRoutes)
	}
}
