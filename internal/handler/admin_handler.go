package handler

import (
	"context"
	"net/http"

	"mycogenesis/internal/content"
	"mycogenesis/internal/coordinator"
	"mycogenesis/internal/logger"
	"mycogenesis/internal/middleware"
	"mycogenesis/internal/resilience"
	"mycogenesis/internal/session"
)

// PageCache is the orchestrator's cache.
type PageCache interface {
	ClearCache()
	CacheStats() content.CacheStats
}

// CacheClearer is a cache that can be emptied, such as the CMS query cache.
type CacheClearer interface {
	ClearCache(ctx context.Context) error
}

// HealthChecker reports the health of the site's dependencies.
type HealthChecker interface {
	Check(ctx context.Context) coordinator.Report
}

// AdminHandler serves the admin area and health endpoint.
type AdminHandler struct {
	pages    PageCache
	caches   []CacheClearer
	health   HealthChecker
	sessions session.Manager
	view     middleware.Renderer
	log      logger.Logger
}

// NewAdminHandler creates a new AdminHandler. caches are cleared together
// with the page cache.
func NewAdminHandler(pages PageCache, health HealthChecker, sm session.Manager, v middleware.Renderer, log logger.Logger, caches ...CacheClearer) *AdminHandler {
	return &AdminHandler{pages: pages, caches: caches, health: health, sessions: sm, view: v, log: log}
}

// dashboardHandler shows cache and service status.
func (h *AdminHandler) dashboardHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	data := map[string]interface{}{
		"Stats":  h.pages.CacheStats(),
		"Health": h.health.Check(r.Context()).Services,
	}
	if err := h.view.Render(w, r, "admin.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render admin page", Code: http.StatusInternalServerError}
	}
	return nil
}

// clearCacheHandler drops the page cache and the CMS query cache.
func (h *AdminHandler) clearCacheHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	h.pages.ClearCache()
	for _, c := range h.caches {
		if err := c.ClearCache(r.Context()); err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to clear cache", Code: http.StatusInternalServerError}
		}
	}
	h.log.With(map[string]interface{}{"user": middleware.GetUserInfo(r.Context()).Subject}).Info("Caches cleared from admin")
	middleware.Flash(r.Context(), h.sessions, resilience.Notice{Level: "info", Message: "Caches cleared."})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
	return nil
}

// healthHandler reports dependency health; 503 when any is down.
func (h *AdminHandler) healthHandler(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
