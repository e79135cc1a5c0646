package data

import (
	"sort"
	"strings"
)

// FilterPosts keeps the posts whose title, excerpt or content contains term,
// ignoring case. An empty term keeps everything.
func FilterPosts(posts []*BlogPost, term string) []*BlogPost {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return posts
	}
	out := make([]*BlogPost, 0, len(posts))
	for _, p := range posts {
		if containsFold(term, p.Title, p.Excerpt, p.Content, p.Body.PlainText()) {
			out = append(out, p)
		}
	}
	return out
}

// FilterProducts keeps the products whose name, description or category
// contains term, ignoring case.
func FilterProducts(products []*Product, term string) []*Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if containsFold(term, p.Name, p.Description, p.Category) {
			out = append(out, p)
		}
	}
	return out
}

// SortPostsByDate orders posts newest first.
func SortPostsByDate(posts []*BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
}

func containsFold(lowerTerm string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerTerm) {
			return true
		}
	}
	return false
}
