// Package seo builds page metadata, robots.txt and sitemap.xml.
package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"mycogenesis/internal/config"
	"mycogenesis/internal/data"
)

// Meta is the head metadata of a rendered page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Type        string // OpenGraph type: "website" or "article"
	Keywords    []string
	NoIndex     bool
	SiteName    string
	Twitter     string
	Published   time.Time
}

// Builder derives Meta from site settings and documents.
type Builder struct {
	site config.SiteConfig
}

// NewBuilder creates a Builder for site.
func NewBuilder(site config.SiteConfig) *Builder {
	return &Builder{site: site}
}

// URL joins path onto the site URL.
func (b *Builder) URL(path string) string {
	return strings.TrimRight(b.site.URL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Page returns the metadata of a plain page. An empty title gives the site name.
func (b *Builder) Page(title, description, path string) Meta {
	m := Meta{
		Title:       b.site.Name,
		Description: description,
		Canonical:   b.URL(path),
		Image:       b.site.DefaultImage,
		Type:        "website",
		SiteName:    b.site.Name,
		Twitter:     b.site.TwitterHandle,
	}
	if title != "" {
		m.Title = title + " | " + b.site.Name
	}
	if m.Description == "" {
		m.Description = b.site.Description
	}
	return m
}

// Post returns article metadata for a blog post.
func (b *Builder) Post(p *data.BlogPost, image string) Meta {
	m := b.Page(p.Title, p.Excerpt, "/blog/"+p.Slug)
	m.Type = "article"
	m.Published = p.PublishedAt
	m.Keywords = p.Categories
	if image != "" {
		m.Image = image
	}
	return m
}

// Business returns metadata for a business page, preferring its SEO fields.
func (b *Builder) Business(p *data.BusinessPage, image string) Meta {
	title := p.Title
	if p.SEO.MetaTitle != "" {
		title = p.SEO.MetaTitle
	}
	desc := p.SEO.MetaDescription
	if desc == "" {
		desc = p.Hero.Subheading
	}
	m := b.Page(title, desc, "/business/"+p.Slug)
	m.Keywords = p.SEO.Keywords
	m.NoIndex = p.SEO.NoIndex
	if image != "" {
		m.Image = image
	}
	return m
}

// Tutorial returns metadata for a tutorial guide.
func (b *Builder) Tutorial(g *data.TutorialGuide) Meta {
	return b.Page(g.Title, g.Description, "/tutorials/"+g.Slug)
}

// WriteRobots writes robots.txt.
func (b *Builder) WriteRobots(w io.Writer) error {
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\nDisallow: /auth/\n\nSitemap: %s\n", b.URL("/sitemap.xml"))
	return err
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Entry is a document with its own URL.
type Entry struct {
	Type      string
	Slug      string
	UpdatedAt time.Time
}

// StaticPaths are listed in every sitemap.
var StaticPaths = []string{"/", "/products", "/blog", "/faq", "/tutorials", "/search"}

var entryPaths = map[string]string{
	"blogPost":      "/blog/",
	"businessPage":  "/business/",
	"tutorialGuide": "/tutorials/",
}

// WriteSitemap writes sitemap.xml for the static pages plus entries.
// Entries of types without a detail page are left out.
func (b *Builder) WriteSitemap(w io.Writer, entries []Entry) error {
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range StaticPaths {
		set.URLs = append(set.URLs, sitemapURL{Loc: b.URL(p)})
	}
	for _, e := range entries {
		prefix, ok := entryPaths[e.Type]
		if !ok || e.Slug == "" {
			continue
		}
		u := sitemapURL{Loc: b.URL(prefix + url.PathEscape(e.Slug))}
		if !e.UpdatedAt.IsZero() {
			u.LastMod = e.UpdatedAt.Format(sitemapDateFormat)
		}
		set.URLs = append(set.URLs, u)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(set)
}
