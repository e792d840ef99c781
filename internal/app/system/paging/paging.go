// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows returned when the client does
// not ask for a size.
const DefaultPageSize = 20

// MaxPageSize caps client-requested page sizes.
const MaxPageSize = 100

// Params is an offset-pagination request, 1-based.
type Params struct {
	Page     int
	PageSize int
}

// Parse reads "page" and "page_size" query parameters, clamping them to
// sane values.
func Parse(r *http.Request) Params {
	p := Params{Page: 1, PageSize: DefaultPageSize}

	if s := query.Get(r, "page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if s := query.Get(r, "page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.PageSize = n
			if p.PageSize > MaxPageSize {
				p.PageSize = MaxPageSize
			}
		}
	}
	return p
}

// Skip returns the number of rows before this page.
func (p Params) Skip() int {
	return (p.Page - 1) * p.PageSize
}

// Slice cuts one page out of an in-memory result set. Pages past the
// end come back empty rather than erroring.
func Slice[T any](rows []T, p Params) []T {
	start := p.Skip()
	if start >= len(rows) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// Envelope is the wire shape for every paginated list response.
type Envelope[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

// Wrap builds the response envelope for one page.
func Wrap[T any](items []T, total int64, p Params) Envelope[T] {
	if items == nil {
		items = []T{}
	}
	return Envelope[T]{
		Items:      items,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
}
