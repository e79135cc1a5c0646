package content

import (
	"context"
	"errors"

	"mycogenesis/internal/data"
	"mycogenesis/internal/resilience"
	"mycogenesis/internal/sanity"
)

// Page types served by the site.
const (
	PageHome      = "home"
	PageProducts  = "products"
	PageBlog      = "blog"
	PagePost      = "post"
	PageFAQ       = "faq"
	PageTutorials = "tutorials"
	PageTutorial  = "tutorial"
	PageBusiness  = "business"
	PageSearch    = "search"
)

// CMS is the subset of the Sanity client the registry reads from.
type CMS interface {
	FeaturedProducts(ctx context.Context, limit int) ([]*data.Product, error)
	Products(ctx context.Context) ([]*data.Product, error)
	Categories(ctx context.Context) ([]*data.Category, error)
	FeaturedPosts(ctx context.Context, limit int) ([]*data.BlogPost, error)
	Posts(ctx context.Context) ([]*data.BlogPost, error)
	PostBySlug(ctx context.Context, slug string) (*data.BlogPost, error)
	RelatedPosts(ctx context.Context, slug string, categories []string, limit int) ([]*data.BlogPost, error)
	FAQs(ctx context.Context) ([]*data.FAQ, error)
	Tutorials(ctx context.Context) ([]*data.TutorialGuide, error)
	TutorialBySlug(ctx context.Context, slug string) (*data.TutorialGuide, error)
	BusinessPage(ctx context.Context, slug string) (*data.BusinessPage, error)
	Search(ctx context.Context, term string, limit int) (*sanity.SearchResults, error)
}

// Database is the subset of the secondary database the registry reads from.
type Database interface {
	PublishedPosts(ctx context.Context, limit int) ([]*data.BlogPost, error)
	AvailableProducts(ctx context.Context, limit int) ([]*data.Product, error)
	SearchPosts(ctx context.Context, term string, limit int) ([]*data.BlogPost, error)
	RecordPageView(ctx context.Context, page string) (*data.PageAnalytics, error)
}

// Limits on list sizes fetched for pages.
const (
	featuredProductsLimit = 6
	featuredPostsLimit    = 3
	relatedPostsLimit     = 3
	communityPostsLimit   = 10
	inventoryLimit        = 100
	searchLimit           = 10
)

// ErrMissingOption is returned when a page needs an option that was not given.
var ErrMissingOption = errors.New("missing required option")

// NewRegistry builds the operation table of every page type.
func NewRegistry(cms CMS, db Database) Registry {
	products := func(name string, required bool, fetch func(context.Context, Options) ([]*data.Product, error)) Operation {
		return NewOperation(name, required, []*data.Product{}, fetch)
	}
	posts := func(name string, required bool, fetch func(context.Context, Options) ([]*data.BlogPost, error)) Operation {
		return NewOperation(name, required, []*data.BlogPost{}, fetch)
	}
	categories := NewOperation("categories", false, []*data.Category{}, func(ctx context.Context, _ Options) ([]*data.Category, error) {
		return cms.Categories(ctx)
	})

	return Registry{
		PageHome: {
			products("featuredProducts", true, func(ctx context.Context, _ Options) ([]*data.Product, error) {
				return cms.FeaturedProducts(ctx, featuredProductsLimit)
			}).WithPolicy(resilience.PolicyCritical),
			posts("featuredBlogPosts", false, func(ctx context.Context, _ Options) ([]*data.BlogPost, error) {
				return cms.FeaturedPosts(ctx, featuredPostsLimit)
			}),
			categories,
			NewOperation("pageAnalytics", false, (*data.PageAnalytics)(nil), func(ctx context.Context, _ Options) (*data.PageAnalytics, error) {
				return db.RecordPageView(ctx, PageHome)
			}).WithPolicy(resilience.PolicyQuick),
		},
		PageProducts: {
			products("products", true, func(ctx context.Context, _ Options) ([]*data.Product, error) {
				return cms.Products(ctx)
			}).WithPolicy(resilience.PolicyCritical),
			categories,
			products("inventory", false, func(ctx context.Context, _ Options) ([]*data.Product, error) {
				return db.AvailableProducts(ctx, inventoryLimit)
			}),
		},
		PageBlog: {
			posts("posts", true, func(ctx context.Context, _ Options) ([]*data.BlogPost, error) {
				return cms.Posts(ctx)
			}).WithPolicy(resilience.PolicyCritical),
			categories,
			posts("communityPosts", false, func(ctx context.Context, _ Options) ([]*data.BlogPost, error) {
				return db.PublishedPosts(ctx, communityPostsLimit)
			}),
		},
		PagePost: {
			NewOperation("post", true, (*data.BlogPost)(nil), func(ctx context.Context, opts Options) (*data.BlogPost, error) {
				slug, err := requireOption(opts, "slug")
				if err != nil {
					return nil, err
				}
				return notFoundIsPermanent(cms.PostBySlug(ctx, slug))
			}),
			posts("relatedPosts", false, func(ctx context.Context, opts Options) ([]*data.BlogPost, error) {
				slug, err := requireOption(opts, "slug")
				if err != nil {
					return nil, err
				}
				post, err := notFoundIsPermanent(cms.PostBySlug(ctx, slug))
				if err != nil {
					return nil, err
				}
				return cms.RelatedPosts(ctx, slug, post.Categories, relatedPostsLimit)
			}).WithPolicy(resilience.PolicyQuick),
		},
		PageFAQ: {
			NewOperation("faqs", true, []*data.FAQ{}, func(ctx context.Context, _ Options) ([]*data.FAQ, error) {
				return cms.FAQs(ctx)
			}),
		},
		PageTutorials: {
			NewOperation("tutorials", true, []*data.TutorialGuide{}, func(ctx context.Context, _ Options) ([]*data.TutorialGuide, error) {
				return cms.Tutorials(ctx)
			}),
		},
		PageTutorial: {
			NewOperation("tutorial", true, (*data.TutorialGuide)(nil), func(ctx context.Context, opts Options) (*data.TutorialGuide, error) {
				slug, err := requireOption(opts, "slug")
				if err != nil {
					return nil, err
				}
				return notFoundIsPermanent(cms.TutorialBySlug(ctx, slug))
			}),
		},
		PageBusiness: {
			NewOperation("page", true, (*data.BusinessPage)(nil), func(ctx context.Context, opts Options) (*data.BusinessPage, error) {
				slug, err := requireOption(opts, "slug")
				if err != nil {
					return nil, err
				}
				return notFoundIsPermanent(cms.BusinessPage(ctx, slug))
			}),
		},
		PageSearch: {
			NewOperation("cmsResults", true, &sanity.SearchResults{Products: []*data.Product{}, Posts: []*data.BlogPost{}}, func(ctx context.Context, opts Options) (*sanity.SearchResults, error) {
				return cms.Search(ctx, opts["q"], searchLimit)
			}),
			posts("communityResults", false, func(ctx context.Context, opts Options) ([]*data.BlogPost, error) {
				return db.SearchPosts(ctx, opts["q"], searchLimit)
			}).WithPolicy(resilience.PolicyQuick),
		},
	}
}

func requireOption(opts Options, name string) (string, error) {
	v := opts[name]
	if v == "" {
		return "", resilience.Permanent(errors.Join(ErrMissingOption, errors.New(name)))
	}
	return v, nil
}

func notFoundIsPermanent[T any](v T, err error) (T, error) {
	if errors.Is(err, sanity.ErrNotFound) {
		return v, resilience.Permanent(err)
	}
	return v, err
}
