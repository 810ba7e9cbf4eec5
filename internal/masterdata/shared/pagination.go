package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// ListFilters represents standard list page filters
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CategoryID  *int64
	StockStatus string
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// FiltersFromRequest reads page, limit, search, sort and dir query params.
func FiltersFromRequest(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	filters := ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort"),
		SortDir: strings.ToLower(q.Get("dir")),
	}
	if raw := q.Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CategoryID = &id
		}
	}
	filters.StockStatus = strings.ToUpper(q.Get("stock_status"))
	return filters
}

// Page is the JSON envelope for list endpoints.
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPage wraps items, never encoding a null data array.
func NewPage[T any](items []T, total int, f ListFilters) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Total: total, Page: f.Page, Limit: f.Limit}
}

// SortOrder builds an ORDER BY clause restricted to allowed columns.
func SortOrder(sortBy, sortDir string, allowed map[string]string, fallback string) string {
	dir := "ASC"
	if sortDir == SortDesc {
		dir = "DESC"
	}
	col, ok := allowed[sortBy]
	if !ok {
		col = fallback
	}
	return col + " " + dir
}
