package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mycogenesis/internal/content"
	"mycogenesis/internal/data"
	"mycogenesis/internal/logger"
	"mycogenesis/internal/middleware"
	"mycogenesis/internal/render"
	"mycogenesis/internal/resilience"
	"mycogenesis/internal/sanity"
	"mycogenesis/internal/seo"
	"mycogenesis/internal/service"
	"mycogenesis/internal/session"
)

// ContentLoader loads merged page content.
type ContentLoader interface {
	LoadPageContent(ctx context.Context, pageType string, opts content.Options) (*content.PageContent, error)
}

// PageHandler holds the dependencies for the page handlers.
type PageHandler struct {
	content   ContentLoader
	faqs      *service.FAQService
	tutorials *service.TutorialService
	sessions  session.Manager
	view      middleware.Renderer
	seo       *seo.Builder
	render    *render.Renderer
	log       logger.Logger
	pageSize  int
}

// NewPageHandler creates a new PageHandler with the given dependencies.
func NewPageHandler(cl ContentLoader, faqs *service.FAQService, tutorials *service.TutorialService, sm session.Manager, v middleware.Renderer, sb *seo.Builder, rr *render.Renderer, log logger.Logger, pageSize int) *PageHandler {
	return &PageHandler{
		content:   cl,
		faqs:      faqs,
		tutorials: tutorials,
		sessions:  sm,
		view:      v,
		seo:       sb,
		render:    rr,
		log:       log,
		pageSize:  pageSize,
	}
}

// load fetches pageType. A missing document or option becomes a 404; any
// other failure of a required operation is left to the caller, which renders
// the fallbacks.
func (h *PageHandler) load(r *http.Request, pageType string, opts content.Options) (*content.PageContent, *middleware.AppError) {
	pc, err := h.content.LoadPageContent(r.Context(), pageType, opts)
	if errors.Is(err, content.ErrUnknownPageType) {
		return nil, &middleware.AppError{Error: err, Message: "Page not found", Code: http.StatusNotFound}
	}
	if err != nil {
		return nil, &middleware.AppError{Error: err, Message: "Failed to load page", Code: http.StatusInternalServerError}
	}
	if reqErr := pc.RequiredError(); reqErr != nil && isNotFound(reqErr) {
		return nil, &middleware.AppError{Error: reqErr, Message: "Page not found", Code: http.StatusNotFound}
	}
	return pc, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sanity.ErrNotFound) || errors.Is(err, content.ErrMissingOption)
}

// unavailable is returned for detail pages whose document could not be loaded.
func unavailable(pc *content.PageContent) *middleware.AppError {
	return &middleware.AppError{
		Error:   pc.RequiredError(),
		Message: "This page is temporarily unavailable. Please try again shortly.",
		Code:    http.StatusServiceUnavailable,
	}
}

func (h *PageHandler) renderPage(w http.ResponseWriter, r *http.Request, name string, pc *content.PageContent, data map[string]interface{}) *middleware.AppError {
	if pc != nil {
		data["Notices"] = pc.Notices
	}
	if err := h.view.Render(w, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}

// homeHandler renders the landing page.
func (h *PageHandler) homeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pc, appErr := h.load(r, content.PageHome, nil)
	if appErr != nil {
		return appErr
	}
	return h.renderPage(w, r, "home.html", pc, map[string]interface{}{
		"Meta":             h.seo.Page("", "", "/"),
		"FeaturedProducts": content.Get[[]*data.Product](pc, "featuredProducts"),
		"FeaturedPosts":    content.Get[[]*data.BlogPost](pc, "featuredBlogPosts"),
		"Categories":       content.Get[[]*data.Category](pc, "categories"),
	})
}

// productsHandler renders the product catalogue with ?category= and ?page=.
func (h *PageHandler) productsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pc, appErr := h.load(r, content.PageProducts, nil)
	if appErr != nil {
		return appErr
	}
	category := r.URL.Query().Get("category")
	products := service.ProductsInCategory(content.Get[[]*data.Product](pc, "products"), category)
	page := service.Paginate(products, service.ParsePageNumber(r.URL.Query().Get("page")), h.pageSize)

	return h.renderPage(w, r, "products.html", pc, map[string]interface{}{
		"Meta":       h.seo.Page("Shop", "Functional mushroom products, grow kits and extracts.", "/products"),
		"Page":       page,
		"Category":   category,
		"Categories": content.Get[[]*data.Category](pc, "categories"),
	})
}

// blogHandler renders the post list with ?category= and ?page=.
func (h *PageHandler) blogHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pc, appErr := h.load(r, content.PageBlog, nil)
	if appErr != nil {
		return appErr
	}
	category := r.URL.Query().Get("category")
	posts := service.PostsInCategory(content.Get[[]*data.BlogPost](pc, "posts"), category)
	page := service.Paginate(posts, service.ParsePageNumber(r.URL.Query().Get("page")), h.pageSize)

	return h.renderPage(w, r, "blog.html", pc, map[string]interface{}{
		"Meta":           h.seo.Page("Blog", "", "/blog"),
		"Page":           page,
		"Category":       category,
		"Categories":     content.Get[[]*data.Category](pc, "categories"),
		"CommunityPosts": content.Get[[]*data.BlogPost](pc, "communityPosts"),
	})
}

// postHandler renders a single post.
func (h *PageHandler) postHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")
	pc, appErr := h.load(r, content.PagePost, content.Options{"slug": slug})
	if appErr != nil {
		return appErr
	}
	post := content.Get[*data.BlogPost](pc, "post")
	if post == nil {
		return unavailable(pc)
	}
	return h.renderPage(w, r, "post.html", pc, map[string]interface{}{
		"Meta":    h.seo.Post(post, h.render.ImageURL(post.MainImage, 1200)),
		"Post":    post,
		"Related": content.Get[[]*data.BlogPost](pc, "relatedPosts"),
	})
}

// faqHandler renders the FAQ with ?category=, ?q= and ?open=.
func (h *PageHandler) faqHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pc, appErr := h.load(r, content.PageFAQ, nil)
	if appErr != nil {
		return appErr
	}
	q := r.URL.Query()
	all := content.Get[[]*data.FAQ](pc, "faqs")
	category, term := q.Get("category"), strings.TrimSpace(q.Get("q"))

	// The envelope is shared with the cache, so sort a copy.
	faqs := slices.Clone(service.SearchFAQs(service.FilterByCategory(all, category), term))
	service.SortFAQs(faqs)

	return h.renderPage(w, r, "faq.html", pc, map[string]interface{}{
		"Meta":       h.seo.Page("FAQ", "Answers to common questions about our mushrooms and grow kits.", "/faq"),
		"FAQs":       faqs,
		"Categories": service.Categories(all),
		"Category":   category,
		"Query":      term,
		"Open":       splitList(q.Get("open")),
	})
}

// rateFAQHandler records an FAQ rating. The visitor is sent back to the FAQ
// whether or not the rating could be stored.
func (h *PageHandler) rateFAQHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	helpful, _ := strconv.ParseBool(r.FormValue("helpful"))

	if err := h.faqs.Rate(r.Context(), id, helpful); err != nil {
		h.log.Error(err, "Failed to record FAQ rating")
	} else {
		middleware.Flash(r.Context(), h.sessions, resilience.Notice{Level: "info", Message: "Thanks for your feedback!"})
	}
	http.Redirect(w, r, "/faq?open="+id+"#faq-"+id, http.StatusSeeOther)
	return nil
}

// tutorialsHandler renders the guide list.
func (h *PageHandler) tutorialsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pc, appErr := h.load(r, content.PageTutorials, nil)
	if appErr != nil {
		return appErr
	}
	return h.renderPage(w, r, "tutorials.html", pc, map[string]interface{}{
		"Meta":      h.seo.Page("Grow guides", "Step-by-step mushroom growing tutorials.", "/tutorials"),
		"Tutorials": content.Get[[]*data.TutorialGuide](pc, "tutorials"),
	})
}

func (h *PageHandler) loadTutorial(r *http.Request) (*content.PageContent, *data.TutorialGuide, *middleware.AppError) {
	pc, appErr := h.load(r, content.PageTutorial, content.Options{"slug": chi.URLParam(r, "slug")})
	if appErr != nil {
		return nil, nil, appErr
	}
	guide := content.Get[*data.TutorialGuide](pc, "tutorial")
	if guide == nil {
		return nil, nil, unavailable(pc)
	}
	return pc, guide, nil
}

// tutorialHandler renders one step of a guide. ?step= moves the visitor and
// is remembered; without it the saved step is shown.
func (h *PageHandler) tutorialHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pc, guide, appErr := h.loadTutorial(r)
	if appErr != nil {
		return appErr
	}

	progress := h.tutorials.Progress(r.Context(), guide)
	if raw := r.URL.Query().Get("step"); raw != "" {
		step, err := strconv.Atoi(raw)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Invalid step", Code: http.StatusBadRequest}
		}
		if progress, err = h.tutorials.SetCurrentStep(r.Context(), guide, step); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to save progress", Code: http.StatusInternalServerError}
		}
	}

	var current *data.TutorialStep
	if len(guide.Steps) > 0 {
		current = &guide.Steps[progress.CurrentStep]
	}
	return h.renderPage(w, r, "tutorial.html", pc, map[string]interface{}{
		"Meta":     h.seo.Tutorial(guide),
		"Tutorial": guide,
		"Progress": progress,
		"Percent":  progress.Percent(len(guide.Steps)),
		"Step":     progress.CurrentStep,
		"Current":  current,
	})
}

// toggleStepHandler marks a step complete or incomplete.
func (h *PageHandler) toggleStepHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	_, guide, appErr := h.loadTutorial(r)
	if appErr != nil {
		return appErr
	}
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid step", Code: http.StatusBadRequest}
	}
	if _, err := h.tutorials.ToggleStepComplete(r.Context(), guide, step); err != nil {
		if errors.Is(err, service.ErrStepOutOfRange) {
			return &middleware.AppError{Error: err, Message: "Invalid step", Code: http.StatusBadRequest}
		}
		return &middleware.AppError{Error: err, Message: "Failed to save progress", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/tutorials/"+guide.Slug+"?step="+strconv.Itoa(step), http.StatusSeeOther)
	return nil
}

// resetTutorialHandler clears the visitor's progress in a guide.
func (h *PageHandler) resetTutorialHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	_, guide, appErr := h.loadTutorial(r)
	if appErr != nil {
		return appErr
	}
	h.tutorials.ResetProgress(r.Context(), guide)
	http.Redirect(w, r, "/tutorials/"+guide.Slug, http.StatusSeeOther)
	return nil
}

// businessHandler renders a CMS landing page.
func (h *PageHandler) businessHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pc, appErr := h.load(r, content.PageBusiness, content.Options{"slug": chi.URLParam(r, "slug")})
	if appErr != nil {
		return appErr
	}
	page := content.Get[*data.BusinessPage](pc, "page")
	if page == nil {
		return unavailable(pc)
	}
	return h.renderPage(w, r, "business.html", pc, map[string]interface{}{
		"Meta": h.seo.Business(page, h.render.ImageURL(page.Hero.Image, 1200)),
		"Page": page,
	})
}

// searchHandler searches the CMS and the community posts for ?q=.
func (h *PageHandler) searchHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	viewData := map[string]interface{}{
		"Meta":  h.seo.Page("Search", "", "/search"),
		"Query": term,
	}
	if term == "" {
		return h.renderPage(w, r, "search.html", nil, viewData)
	}

	pc, appErr := h.load(r, content.PageSearch, content.Options{"q": term})
	if appErr != nil {
		return appErr
	}
	var products []*data.Product
	posts := content.Get[[]*data.BlogPost](pc, "communityResults")
	if res := content.Get[*sanity.SearchResults](pc, "cmsResults"); res != nil {
		products = res.Products
		posts = slices.Concat(res.Posts, posts)
	}
	viewData["Products"] = products
	viewData["Posts"] = posts
	return h.renderPage(w, r, "search.html", pc, viewData)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
