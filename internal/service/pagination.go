package service

import (
	"strconv"
	"strings"

	"mycogenesis/internal/data"
)

// Page is one page of a paginated list.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	TotalItems int
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Prev is the previous page number.
func (p Page[T]) Prev() int { return p.Number - 1 }

// Next is the next page number.
func (p Page[T]) Next() int { return p.Number + 1 }

// Paginate returns page number (1-based) of items, size per page. Out of
// range numbers are clamped to the first or last page.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = len(items)
	}
	total := 1
	if size > 0 && len(items) > 0 {
		total = (len(items) + size - 1) / size
	}
	if number < 1 {
		number = 1
	}
	if number > total {
		number = total
	}
	start := (number - 1) * size
	end := min(start+size, len(items))
	if start > end {
		start = end
	}
	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: total,
		TotalItems: len(items),
	}
}

// ParsePageNumber reads a ?page= value, defaulting to 1.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PostsInCategory returns the posts tagged with category. An empty category
// returns every post.
func PostsInCategory(posts []*data.BlogPost, category string) []*data.BlogPost {
	if category == "" {
		return posts
	}
	out := make([]*data.BlogPost, 0, len(posts))
	for _, p := range posts {
		for _, c := range p.Categories {
			if strings.EqualFold(c, category) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// ProductsInCategory returns the products of category. An empty category
// returns every product.
func ProductsInCategory(products []*data.Product, category string) []*data.Product {
	if category == "" {
		return products
	}
	out := make([]*data.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}
