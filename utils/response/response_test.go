package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 10, 35)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 10, meta.PerPage)
	assert.Equal(t, int64(35), meta.Total)
	assert.Equal(t, 4, meta.TotalPages)
}

func TestCalculatePaginationExactPages(t *testing.T) {
	meta := CalculatePagination(1, 10, 30)
	assert.Equal(t, 3, meta.TotalPages)
}

func TestCalculatePaginationClamps(t *testing.T) {
	meta := CalculatePagination(0, 0, 5)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 10, meta.PerPage)

	meta = CalculatePagination(1, 500, 50)
	assert.Equal(t, 100, meta.PerPage)
	assert.Equal(t, 1, meta.TotalPages)
}

func TestCalculatePaginationEmpty(t *testing.T) {
	meta := CalculatePagination(1, 10, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.Equal(t, int64(0), meta.Total)
}
