// Package render turns CMS rich text and markdown into sanitized HTML.
package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"mycogenesis/internal/data"
	"mycogenesis/internal/sanity"
)

// Renderer converts content documents into HTML fragments. Every fragment
// passes through the sanitizer before it reaches a template.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	images sanity.ImageBuilder
}

// New creates a Renderer that resolves CMS images with images.
func New(images sanity.ImageBuilder) *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: policy,
		images: images,
	}
}

// Sanitize strips unsafe markup from raw.
func (r *Renderer) Sanitize(raw string) template.HTML {
	return template.HTML(r.policy.Sanitize(raw))
}

// Markdown renders markdown source. Source that fails to convert is shown
// as escaped text.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + html.EscapeString(src) + "</p>")
	}
	return r.Sanitize(buf.String())
}

// ImageURL resolves img to a URL of the given width. It returns "" when the
// image has no usable source.
func (r *Renderer) ImageURL(img *data.Image, width int) string {
	if img == nil {
		return ""
	}
	if img.URL != "" {
		return img.URL
	}
	if img.Asset.Ref == "" {
		return ""
	}
	u, err := r.images.URL(img.Asset.Ref, sanity.ImageOptions{Width: width, Fit: "max"})
	if err != nil {
		return ""
	}
	return u
}

// ProductImage returns the first image URL of p.
func (r *Renderer) ProductImage(p *data.Product, width int) string {
	if p == nil {
		return ""
	}
	if len(p.Images) > 0 {
		if u := r.ImageURL(&p.Images[0], width); u != "" {
			return u
		}
	}
	return p.ImageURL
}

// Answer renders an FAQ answer from whichever representation it carries.
func (r *Renderer) Answer(f *data.FAQ) template.HTML {
	if len(f.AnswerBlocks) > 0 {
		return r.Blocks(f.AnswerBlocks)
	}
	return r.Markdown(f.Answer)
}

// PostBody renders a blog post body. CMS posts carry portable text, posts
// from the secondary database carry markdown.
func (r *Renderer) PostBody(p *data.BlogPost) template.HTML {
	if len(p.Body) > 0 {
		return r.Blocks(p.Body)
	}
	return r.Markdown(p.Content)
}

// Excerpt shortens text to at most n runes on a word boundary.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// FuncMap exposes the renderer to templates.
func (r *Renderer) FuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown":     r.Markdown,
		"blocks":       r.Blocks,
		"answer":       r.Answer,
		"postBody":     r.PostBody,
		"imageURL":     r.ImageURL,
		"productImage": r.ProductImage,
		"excerpt":      Excerpt,
	}
}
