package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mycogenesis/internal/middleware"
	"mycogenesis/internal/session"
)

// Handlers groups the handlers served by the router.
type Handlers struct {
	Pages *PageHandler
	API   *APIHandler
	SEO   *SeoHandler
	Admin *AdminHandler
	Auth  *AuthHandler
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, authzMiddleware func(http.Handler) http.Handler, errorMiddleware func(middleware.AppHandler) http.Handler, sm session.Manager, static fs.FS) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/robots.txt", h.SEO.robotsHandler)
	r.Get("/sitemap.xml", h.SEO.sitemapHandler)
	r.Get("/healthz", h.Admin.healthHandler)
	r.Method(http.MethodGet, "/api/content/{pageType}", errorMiddleware(h.API.contentHandler))

	// Everything below carries a session.
	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)
		r.Use(middleware.Notices(sm))

		r.Method(http.MethodGet, "/", errorMiddleware(h.Pages.homeHandler))
		r.Method(http.MethodGet, "/products", errorMiddleware(h.Pages.productsHandler))
		r.Method(http.MethodGet, "/blog", errorMiddleware(h.Pages.blogHandler))
		r.Method(http.MethodGet, "/blog/{slug}", errorMiddleware(h.Pages.postHandler))
		r.Method(http.MethodGet, "/faq", errorMiddleware(h.Pages.faqHandler))
		r.Method(http.MethodPost, "/faq/{id}/rate", errorMiddleware(h.Pages.rateFAQHandler))
		r.Method(http.MethodGet, "/tutorials", errorMiddleware(h.Pages.tutorialsHandler))
		r.Method(http.MethodGet, "/tutorials/{slug}", errorMiddleware(h.Pages.tutorialHandler))
		r.Method(http.MethodPost, "/tutorials/{slug}/steps/{step}/toggle", errorMiddleware(h.Pages.toggleStepHandler))
		r.Method(http.MethodPost, "/tutorials/{slug}/reset", errorMiddleware(h.Pages.resetTutorialHandler))
		r.Method(http.MethodGet, "/business/{slug}", errorMiddleware(h.Pages.businessHandler))
		r.Method(http.MethodGet, "/search", errorMiddleware(h.Pages.searchHandler))

		// Authentication routes
		r.Get("/auth/login", h.Auth.handleLogin)
		r.Get("/auth/callback", h.Auth.handleCallback)
		r.Get("/auth/logout", h.Auth.handleLogout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authzMiddleware)

			r.Method(http.MethodGet, "/admin", errorMiddleware(h.Admin.dashboardHandler))
			r.Method(http.MethodPost, "/admin/cache/clear", errorMiddleware(h.Admin.clearCacheHandler))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		sm.LoadAndSave(errorMiddleware(func(http.ResponseWriter, *http.Request) *middleware.AppError {
			return &middleware.AppError{Message: "Page not found", Code: http.StatusNotFound}
		})).ServeHTTP(w, r)
	})

	return r
}
