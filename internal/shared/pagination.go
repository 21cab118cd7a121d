package shared

import "math"

// Pagination describes one page of a listing response.
type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// NewPagination computes pagination metadata for a listing.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Total: total, TotalPages: totalPages, CurrentPage: page, Limit: limit}
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	return (p.CurrentPage - 1) * p.Limit
}
