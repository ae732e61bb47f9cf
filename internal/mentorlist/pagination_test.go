package mentorlist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := seq(15)

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     []int
	}{
		{name: "first page", page: 1, pageSize: 10, want: seq(10)},
		{name: "partial last page", page: 2, pageSize: 10, want: []int{10, 11, 12, 13, 14}},
		{name: "past the end", page: 3, pageSize: 10, want: []int{}},
		{name: "zero page treated as first", page: 0, pageSize: 10, want: seq(10)},
		{name: "negative page treated as first", page: -4, pageSize: 5, want: seq(5)},
		{name: "zero page size", page: 1, pageSize: 0, want: []int{}},
		{name: "page size larger than input", page: 1, pageSize: 50, want: seq(15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.page, tt.pageSize)
			assert.NotNil(t, got)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Paginate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPaginate_EmptyInput(t *testing.T) {
	got := Paginate([]string(nil), 1, 10)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPaginate_PagesReconstructInput(t *testing.T) {
	for n := 0; n <= 25; n++ {
		for size := 1; size <= 7; size++ {
			items := seq(n)
			pages := (n + size - 1) / size

			var joined []int
			for p := 1; p <= pages; p++ {
				page := Paginate(items, p, size)
				assert.LessOrEqual(t, len(page), size)
				joined = append(joined, page...)
			}
			if joined == nil {
				joined = []int{}
			}

			if diff := cmp.Diff(items, joined); diff != "" {
				t.Fatalf("n=%d size=%d: pages do not reconstruct input (-want +got):\n%s", n, size, diff)
			}
			assert.Empty(t, Paginate(items, pages+1, size))
		}
	}
}
