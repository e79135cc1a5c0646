package service

import (
	"testing"

	"mycogenesis/internal/data"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name      string
		number    int
		size      int
		wantItems int
		wantPage  int
		wantTotal int
		wantNext  bool
	}{
		{"first page", 1, 2, 2, 1, 3, true},
		{"last partial page", 3, 2, 1, 3, 3, false},
		{"past the end clamps", 9, 2, 1, 3, 3, false},
		{"zero clamps to first", 0, 2, 2, 1, 3, true},
		{"no size is one page", 1, 0, 5, 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.number, tt.size)
			if len(p.Items) != tt.wantItems || p.Number != tt.wantPage || p.TotalPages != tt.wantTotal || p.HasNext() != tt.wantNext {
				t.Errorf("got items=%d page=%d total=%d next=%v", len(p.Items), p.Number, p.TotalPages, p.HasNext())
			}
		})
	}

	empty := Paginate([]int{}, 2, 10)
	if empty.Number != 1 || empty.TotalPages != 1 || len(empty.Items) != 0 || empty.HasPrev() {
		t.Errorf("unexpected empty page %+v", empty)
	}
}

func TestParsePageNumber(t *testing.T) {
	for raw, want := range map[string]int{"": 1, "3": 3, "-2": 1, "abc": 1, " 2 ": 2} {
		if got := ParsePageNumber(raw); got != want {
			t.Errorf("ParsePageNumber(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestPostsInCategory(t *testing.T) {
	posts := []*data.BlogPost{
		{Slug: "a", Categories: []string{"cultivation"}},
		{Slug: "b", Categories: []string{"recipes", "Cultivation"}},
		{Slug: "c"},
	}
	if got := PostsInCategory(posts, "cultivation"); len(got) != 2 {
		t.Errorf("expected 2 posts, got %d", len(got))
	}
	if got := PostsInCategory(posts, ""); len(got) != 3 {
		t.Errorf("expected all posts, got %d", len(got))
	}
	products := []*data.Product{{Category: "extracts"}, {Category: "kits"}}
	if got := ProductsInCategory(products, "kits"); len(got) != 1 {
		t.Errorf("expected 1 product, got %d", len(got))
	}
}
