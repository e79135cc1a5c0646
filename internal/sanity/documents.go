package sanity

import (
	"context"
	"strings"
	"time"

	"mycogenesis/internal/data"
)

// SearchResults holds the CMS matches for a search term.
type SearchResults struct {
	Products []*data.Product  `json:"products"`
	Posts    []*data.BlogPost `json:"posts"`
}

// SitemapEntry is one document that gets its own public URL.
type SitemapEntry struct {
	Type      string    `json:"_type"`
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"_updatedAt"`
}

// FeaturedProducts returns up to limit featured products.
func (c *Client) FeaturedProducts(ctx context.Context, limit int) ([]*data.Product, error) {
	var out []*data.Product
	if err := c.Fetch(ctx, queryFeaturedProducts, Params{"limit": limit}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Products returns every orderable product.
func (c *Client) Products(ctx context.Context) ([]*data.Product, error) {
	var out []*data.Product
	if err := c.Fetch(ctx, queryProducts, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories returns all categories ordered by title.
func (c *Client) Categories(ctx context.Context) ([]*data.Category, error) {
	var out []*data.Category
	if err := c.Fetch(ctx, queryCategories, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FeaturedPosts returns up to limit featured, published posts.
func (c *Client) FeaturedPosts(ctx context.Context, limit int) ([]*data.BlogPost, error) {
	var out []*data.BlogPost
	if err := c.Fetch(ctx, queryFeaturedPosts, Params{"limit": limit}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Posts returns all published posts, newest first.
func (c *Client) Posts(ctx context.Context) ([]*data.BlogPost, error) {
	var out []*data.BlogPost
	if err := c.Fetch(ctx, queryPosts, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PostBySlug returns one published post or ErrNotFound.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*data.BlogPost, error) {
	var out data.BlogPost
	if err := c.Fetch(ctx, queryPostBySlug, Params{"slug": slug}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RelatedPosts returns posts sharing a category with the given post.
func (c *Client) RelatedPosts(ctx context.Context, slug string, categories []string, limit int) ([]*data.BlogPost, error) {
	if len(categories) == 0 {
		return []*data.BlogPost{}, nil
	}
	var out []*data.BlogPost
	params := Params{"slug": slug, "categories": categories, "limit": limit}
	if err := c.Fetch(ctx, queryRelatedPosts, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FAQs returns every FAQ ordered by category then position.
func (c *Client) FAQs(ctx context.Context) ([]*data.FAQ, error) {
	var out []*data.FAQ
	if err := c.Fetch(ctx, queryFAQs, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tutorials returns every tutorial guide.
func (c *Client) Tutorials(ctx context.Context) ([]*data.TutorialGuide, error) {
	var out []*data.TutorialGuide
	if err := c.Fetch(ctx, queryTutorials, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TutorialBySlug returns one tutorial guide or ErrNotFound.
func (c *Client) TutorialBySlug(ctx context.Context, slug string) (*data.TutorialGuide, error) {
	var out data.TutorialGuide
	if err := c.Fetch(ctx, queryTutorialBySlug, Params{"slug": slug}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BusinessPage returns one business page or ErrNotFound.
func (c *Client) BusinessPage(ctx context.Context, slug string) (*data.BusinessPage, error) {
	var out data.BusinessPage
	if err := c.Fetch(ctx, queryBusinessPage, Params{"slug": slug}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search matches products and posts against term. GROQ's match operator
// works on word prefixes, so each word gets a trailing wildcard.
func (c *Client) Search(ctx context.Context, term string, limit int) (*SearchResults, error) {
	words := strings.Fields(term)
	if len(words) == 0 {
		return &SearchResults{Products: []*data.Product{}, Posts: []*data.BlogPost{}}, nil
	}
	for i, w := range words {
		words[i] = w + "*"
	}
	var out SearchResults
	if err := c.Fetch(ctx, querySearch, Params{"term": strings.Join(words, " "), "limit": limit}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SitemapEntries lists the documents that have public pages.
func (c *Client) SitemapEntries(ctx context.Context) ([]SitemapEntry, error) {
	var out []SitemapEntry
	if err := c.Fetch(ctx, querySitemap, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
