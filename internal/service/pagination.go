package service

import (
	"math"
	"strconv"

	"example.com/storefront/internal/store"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int at any allowed limit.
	MaxPage = math.MaxInt/MaxLimit + 1
)

// PageRequest is a 1-based page of limit rows.
type PageRequest struct {
	Page  int
	Limit int
}

// ParsePage reads the page and limit query values, falling back to the
// defaults for anything missing, malformed or below 1. Oversized pages are
// clamped to MaxPage, which is still past the end of any listing.
func ParsePage(page, limit string) PageRequest {
	p := PageRequest{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n >= 1 {
		p.Page = min(n, MaxPage)
	}
	if n, err := strconv.Atoi(limit); err == nil && n >= 1 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

func (p PageRequest) window() store.Page {
	return store.Page{Offset: (p.Page - 1) * p.Limit, Limit: p.Limit}
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func (p PageRequest) paginate(total int64) Pagination {
	limit := int64(p.Limit)
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

// Paged is the list envelope returned by every listing endpoint.
type Paged[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newPaged[T any](data []T, p PageRequest, total int64) Paged[T] {
	if data == nil {
		data = []T{}
	}
	return Paged[T]{Data: data, Pagination: p.paginate(total)}
}
