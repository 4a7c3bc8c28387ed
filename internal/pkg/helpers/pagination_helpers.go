package helpers

import (
	"math"

	"github.com/emre/schoolhub/internal/app/models/dto"
)

const (
	// DefaultPageSize is the fixed page size shared by every list endpoint
	DefaultPageSize = 10
	// MaxPageSize bounds the larger pages used by the export path
	MaxPageSize = 500
	// DefaultPage is the 1-based first page
	DefaultPage = 1
)

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}
