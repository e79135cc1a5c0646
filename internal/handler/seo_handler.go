package handler

import (
	"context"
	"net/http"

	"mycogenesis/internal/logger"
	"mycogenesis/internal/sanity"
	"mycogenesis/internal/seo"
)

// SitemapSource lists the documents that have public pages.
type SitemapSource interface {
	SitemapEntries(ctx context.Context) ([]sanity.SitemapEntry, error)
}

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	source SitemapSource
	seo    *seo.Builder
	log    logger.Logger
}

// NewSeoHandler creates a new SeoHandler.
func NewSeoHandler(src SitemapSource, sb *seo.Builder, log logger.Logger) *SeoHandler {
	return &SeoHandler{source: src, seo: sb, log: log}
}

// robotsHandler serves robots.txt.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.seo.WriteRobots(w); err != nil {
		h.log.Error(err, "Failed to write robots.txt")
	}
}

// sitemapHandler generates and serves a dynamic sitemap.xml. When the CMS is
// unreachable only the static pages are listed.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.source.SitemapEntries(r.Context())
	if err != nil {
		h.log.Error(err, "Failed to list sitemap entries")
	}
	entries := make([]seo.Entry, len(docs))
	for i, d := range docs {
		entries[i] = seo.Entry{Type: d.Type, Slug: d.Slug, UpdatedAt: d.UpdatedAt}
	}

	w.Header().Set("Content-Type", "application/xml")
	if err := h.seo.WriteSitemap(w, entries); err != nil {
		h.log.Error(err, "Failed to generate sitemap XML")
	}
}
