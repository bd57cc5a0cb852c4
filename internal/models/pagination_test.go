package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int64
		want               Pagination
	}{
		{"exact pages", 1, 10, 30, Pagination{Page: 1, Limit: 10, Total: 30, Pages: 3}},
		{"partial last page", 2, 10, 25, Pagination{Page: 2, Limit: 10, Total: 25, Pages: 3}},
		{"empty result", 1, 10, 0, Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0}},
		{"page and limit normalised", 0, 0, 5, Pagination{Page: 1, Limit: 10, Total: 5, Pages: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.limit, tt.total))
		})
	}
}

func TestPaginationSkip(t *testing.T) {
	assert.Equal(t, int64(0), NewPagination(1, 10, 100).Skip())
	assert.Equal(t, int64(40), NewPagination(5, 10, 100).Skip())
}
