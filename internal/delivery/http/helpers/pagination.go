package helpers

import (
	"net/http"
	"strconv"

	"eventlisting/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParsePagination reads page and limit from the request query string,
// clamps them to valid ranges, and returns domain.PaginationParams.
// Invalid or missing values fall back to defaults. Page is 1-indexed.
func ParsePagination(r *http.Request) domain.PaginationParams {
	page := DefaultPage
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			page = v
		}
	}
	limit := DefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			limit = v
			if limit > MaxLimit {
				limit = MaxLimit
			}
		}
	}
	return domain.PaginationParams{Page: page, Limit: limit}
}

// PaginationMeta is the pagination metadata included in paginated listings.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page limit,
// and total count. Pages is ceiling(total / limit); 0 when limit is 0.
func NewPaginationMeta(page, limit, total int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return PaginationMeta{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}
