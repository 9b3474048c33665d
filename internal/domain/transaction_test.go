package domain

import "testing"

func TestListOptionsNormalize(t *testing.T) {
	tests := []struct {
		name      string
		opts      ListOptions
		wantPage  int
		wantLimit int
	}{
		{name: "zero values get defaults", opts: ListOptions{}, wantPage: 1, wantLimit: 10},
		{name: "negative page clamps to first", opts: ListOptions{Page: -3, Limit: 25}, wantPage: 1, wantLimit: 25},
		{name: "oversized limit clamps to cap", opts: ListOptions{Page: 2, Limit: 500}, wantPage: 2, wantLimit: 100},
		{name: "in-range values pass through", opts: ListOptions{Page: 4, Limit: 50}, wantPage: 4, wantLimit: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.Normalize()
			if got.Page != tt.wantPage {
				t.Fatalf("expected page %d, got %d", tt.wantPage, got.Page)
			}
			if got.Limit != tt.wantLimit {
				t.Fatalf("expected limit %d, got %d", tt.wantLimit, got.Limit)
			}
		})
	}
}

func TestListOptionsOffset(t *testing.T) {
	opts := ListOptions{Page: 3, Limit: 20}
	if got := opts.Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		total          int64
		opts           ListOptions
		wantTotalPages int
		wantNext       bool
		wantPrev       bool
	}{
		{name: "first of many pages", total: 45, opts: ListOptions{Page: 1, Limit: 10}, wantTotalPages: 5, wantNext: true, wantPrev: false},
		{name: "middle page", total: 45, opts: ListOptions{Page: 3, Limit: 10}, wantTotalPages: 5, wantNext: true, wantPrev: true},
		{name: "last partial page", total: 45, opts: ListOptions{Page: 5, Limit: 10}, wantTotalPages: 5, wantNext: false, wantPrev: true},
		{name: "exact multiple of limit", total: 40, opts: ListOptions{Page: 4, Limit: 10}, wantTotalPages: 4, wantNext: false, wantPrev: true},
		{name: "empty result", total: 0, opts: ListOptions{Page: 1, Limit: 10}, wantTotalPages: 0, wantNext: false, wantPrev: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.total, tt.opts)
			if got.TotalPages != tt.wantTotalPages {
				t.Fatalf("expected %d total pages, got %d", tt.wantTotalPages, got.TotalPages)
			}
			if got.HasNextPage != tt.wantNext {
				t.Fatalf("expected has_next_page=%t, got %t", tt.wantNext, got.HasNextPage)
			}
			if got.HasPrevPage != tt.wantPrev {
				t.Fatalf("expected has_prev_page=%t, got %t", tt.wantPrev, got.HasPrevPage)
			}
		})
	}
}
