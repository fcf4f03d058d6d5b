package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medreg/registry/internal/platform/apperr"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds page-based pagination parameters extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts pagination parameters from the echo context.
// Out-of-range values are rejected rather than clamped: the API contract is
// page >= 1 and 1 <= limit <= 100.
func FromContext(c echo.Context) (Params, error) {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return Params{}, apperr.InvalidPagination("page must be a positive integer")
		}
		page = v
	}

	limit := DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > MaxLimit {
			return Params{}, apperr.InvalidPagination("limit must be between 1 and 100")
		}
		limit = v
	}

	return Params{Page: page, Limit: limit}, nil
}

// Offset returns the SQL offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the page count for the given total item count.
func (p Params) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return pages
}

// Response wraps a paginated API response.
type Response struct {
	CurrentPage int         `json:"current_page"`
	PerPage     int         `json:"per_page"`
	TotalItems  int         `json:"total_items"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrev     bool        `json:"has_prev"`
	Items       interface{} `json:"items"`
}

func NewResponse(items interface{}, total int, p Params) *Response {
	pages := p.TotalPages(total)
	return &Response{
		CurrentPage: p.Page,
		PerPage:     p.Limit,
		TotalItems:  total,
		TotalPages:  pages,
		HasNext:     p.Page < pages,
		HasPrev:     p.Page > 1,
		Items:       items,
	}
}
