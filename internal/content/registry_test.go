package content

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycogenesis/internal/data"
	"mycogenesis/internal/sanity"
)

type fakeCMS struct {
	postCalls   atomic.Int32
	searchTerms chan string
	posts       map[string]*data.BlogPost
	featuredErr error
}

func (f *fakeCMS) FeaturedProducts(context.Context, int) ([]*data.Product, error) {
	if f.featuredErr != nil {
		return nil, f.featuredErr
	}
	return []*data.Product{{ID: "p1", Name: "Lion's Mane", Availability: data.InStock}}, nil
}
func (f *fakeCMS) Products(context.Context) ([]*data.Product, error) {
	return []*data.Product{{ID: "p1"}, {ID: "p2"}}, nil
}
func (f *fakeCMS) Categories(context.Context) ([]*data.Category, error) {
	return []*data.Category{{Title: "Cultivation", Slug: "cultivation"}}, nil
}
func (f *fakeCMS) FeaturedPosts(context.Context, int) ([]*data.BlogPost, error) {
	return []*data.BlogPost{{Slug: "hello"}}, nil
}
func (f *fakeCMS) Posts(context.Context) ([]*data.BlogPost, error) {
	return []*data.BlogPost{{Slug: "hello"}}, nil
}
func (f *fakeCMS) PostBySlug(_ context.Context, slug string) (*data.BlogPost, error) {
	f.postCalls.Add(1)
	if p, ok := f.posts[slug]; ok {
		return p, nil
	}
	return nil, sanity.ErrNotFound
}
func (f *fakeCMS) RelatedPosts(_ context.Context, slug string, _ []string, _ int) ([]*data.BlogPost, error) {
	return []*data.BlogPost{{Slug: "related-to-" + slug}}, nil
}
func (f *fakeCMS) FAQs(context.Context) ([]*data.FAQ, error) { return nil, nil }
func (f *fakeCMS) Tutorials(context.Context) ([]*data.TutorialGuide, error) {
	return nil, nil
}
func (f *fakeCMS) TutorialBySlug(context.Context, string) (*data.TutorialGuide, error) {
	return nil, sanity.ErrNotFound
}
func (f *fakeCMS) BusinessPage(_ context.Context, slug string) (*data.BusinessPage, error) {
	return &data.BusinessPage{Slug: slug, Title: "Wholesale"}, nil
}
func (f *fakeCMS) Search(_ context.Context, term string, _ int) (*sanity.SearchResults, error) {
	if f.searchTerms != nil {
		f.searchTerms <- term
	}
	return &sanity.SearchResults{Posts: []*data.BlogPost{{Slug: term}}}, nil
}

type fakeDB struct {
	views atomic.Int32
	err   error
}

func (f *fakeDB) PublishedPosts(context.Context, int) ([]*data.BlogPost, error) {
	return nil, f.err
}
func (f *fakeDB) AvailableProducts(context.Context, int) ([]*data.Product, error) {
	return nil, f.err
}
func (f *fakeDB) SearchPosts(context.Context, string, int) ([]*data.BlogPost, error) {
	return nil, f.err
}
func (f *fakeDB) RecordPageView(_ context.Context, page string) (*data.PageAnalytics, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &data.PageAnalytics{Page: page, Views: int64(f.views.Add(1))}, nil
}

func TestRegistry_PageTypes(t *testing.T) {
	r := NewRegistry(&fakeCMS{}, &fakeDB{})
	for _, pt := range []string{PageHome, PageProducts, PageBlog, PagePost, PageFAQ, PageTutorials, PageTutorial, PageBusiness, PageSearch} {
		ops, ok := r[pt]
		require.True(t, ok, pt)
		assert.True(t, ops[0].Required, "first operation of %s is required", pt)
	}
}

func TestRegistry_HomeSurvivesDatabaseOutage(t *testing.T) {
	o, _ := newTestOrchestrator(t, NewRegistry(&fakeCMS{}, &fakeDB{err: errors.New("firestore/pageAnalytics: unavailable")}))

	pc, err := o.LoadPageContent(context.Background(), PageHome, nil)
	require.NoError(t, err)
	assert.True(t, pc.Success)
	assert.Len(t, Get[[]*data.Product](pc, "featuredProducts"), 1)
	assert.Nil(t, Get[*data.PageAnalytics](pc, "pageAnalytics"))
	require.Len(t, pc.Errors, 1)
	assert.Equal(t, "database", pc.Errors[0].Kind)
}

func TestRegistry_HomeFailsWithoutFeaturedProducts(t *testing.T) {
	o, _ := newTestOrchestrator(t, NewRegistry(&fakeCMS{featuredErr: errors.New("sanity: 500")}, &fakeDB{}))

	pc, err := o.LoadPageContent(context.Background(), PageHome, nil)
	require.NoError(t, err)
	assert.False(t, pc.Success)
	assert.Empty(t, Get[[]*data.Product](pc, "featuredProducts"))
	assert.NotEmpty(t, pc.Notices)
}

func TestRegistry_PostNotFoundIsPermanent(t *testing.T) {
	cms := &fakeCMS{}
	o, _ := newTestOrchestrator(t, NewRegistry(cms, &fakeDB{}))

	pc, err := o.LoadPageContent(context.Background(), PagePost, Options{"slug": "missing"})
	require.NoError(t, err)
	assert.False(t, pc.Success)
	assert.ErrorIs(t, pc.RequiredError(), sanity.ErrNotFound)
	// One call from "post" and one from "relatedPosts", neither retried.
	assert.EqualValues(t, 2, cms.postCalls.Load())
}

func TestRegistry_PostLoadsRelated(t *testing.T) {
	cms := &fakeCMS{posts: map[string]*data.BlogPost{"grow": {Slug: "grow", Categories: []string{"cultivation"}}}}
	o, _ := newTestOrchestrator(t, NewRegistry(cms, &fakeDB{}))

	pc, err := o.LoadPageContent(context.Background(), PagePost, Options{"slug": "grow"})
	require.NoError(t, err)
	assert.True(t, pc.Success)
	assert.Equal(t, "grow", Get[*data.BlogPost](pc, "post").Slug)
	related := Get[[]*data.BlogPost](pc, "relatedPosts")
	require.Len(t, related, 1)
	assert.Equal(t, "related-to-grow", related[0].Slug)
}

func TestRegistry_MissingSlug(t *testing.T) {
	o, _ := newTestOrchestrator(t, NewRegistry(&fakeCMS{}, &fakeDB{}))

	pc, err := o.LoadPageContent(context.Background(), PageBusiness, nil)
	require.NoError(t, err)
	assert.False(t, pc.Success)
	assert.ErrorIs(t, pc.RequiredError(), ErrMissingOption)
	assert.Equal(t, 1, pc.Errors[0].Attempts)
}

func TestRegistry_SearchPassesTerm(t *testing.T) {
	cms := &fakeCMS{searchTerms: make(chan string, 1)}
	o, _ := newTestOrchestrator(t, NewRegistry(cms, &fakeDB{}))

	pc, err := o.LoadPageContent(context.Background(), PageSearch, Options{"q": "reishi"})
	require.NoError(t, err)
	assert.True(t, pc.Success)
	assert.Equal(t, "reishi", <-cms.searchTerms)
	res := Get[*sanity.SearchResults](pc, "cmsResults")
	require.NotNil(t, res)
	assert.Equal(t, "reishi", res.Posts[0].Slug)
}
