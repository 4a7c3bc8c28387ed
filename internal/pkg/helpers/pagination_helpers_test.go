package helpers

import "testing"

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	if info.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", info.TotalPages)
	}
	if info.CurrentPage != 2 || info.PageSize != 10 || info.TotalItems != 25 {
		t.Errorf("info = %+v", info)
	}

	// an empty first page still reports one page
	info = NewPaginationInfo(0, 1, 10)
	if info.TotalPages != 1 {
		t.Errorf("totalPages = %d, want 1 for empty result", info.TotalPages)
	}

	// bad inputs normalize
	info = NewPaginationInfo(10, 0, 0)
	if info.CurrentPage != 1 || info.PageSize != DefaultPageSize {
		t.Errorf("info = %+v, want normalized page and size", info)
	}
}
