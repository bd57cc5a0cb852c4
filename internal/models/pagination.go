package models

// Pagination describes one page of a list response:
// {page, limit, total, pages}.
type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination normalises page/limit and computes the page count.
func NewPagination(page, limit, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Skip returns the number of documents to skip for this page.
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.Limit
}
