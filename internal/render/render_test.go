package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mycogenesis/internal/data"
	"mycogenesis/internal/sanity"
)

func newTestRenderer() *Renderer {
	return New(sanity.NewImageBuilder("proj", "production"))
}

func span(text string, marks ...string) data.Span {
	return data.Span{Type: "span", Text: text, Marks: marks}
}

func TestBlocks(t *testing.T) {
	r := newTestRenderer()

	t.Run("styles and marks", func(t *testing.T) {
		out := string(r.Blocks(data.Blocks{
			{Type: "block", Style: "h2", Children: []data.Span{span("Growing")}},
			{Type: "block", Style: "normal", Children: []data.Span{span("Keep it "), span("humid", "strong", "em")}},
		}))
		assert.Equal(t, "<h2>Growing</h2><p>Keep it <strong><em>humid</em></strong></p>", out)
	})

	t.Run("lists are grouped", func(t *testing.T) {
		out := string(r.Blocks(data.Blocks{
			{Type: "block", ListItem: "bullet", Children: []data.Span{span("one")}},
			{Type: "block", ListItem: "bullet", Children: []data.Span{span("two")}},
			{Type: "block", ListItem: "number", Children: []data.Span{span("first")}},
			{Type: "block", Children: []data.Span{span("after")}},
		}))
		assert.Equal(t, "<ul><li>one</li><li>two</li></ul><ol><li>first</li></ol><p>after</p>", out)
	})

	t.Run("links resolve mark definitions", func(t *testing.T) {
		out := string(r.Blocks(data.Blocks{{
			Type:     "block",
			Children: []data.Span{span("shop", "l1")},
			MarkDefs: []data.MarkDef{{Key: "l1", Type: "link", Href: "https://example.com/shop"}},
		}}))
		assert.Contains(t, out, `href="https://example.com/shop"`)
		assert.Contains(t, out, ">shop</a>")
	})

	t.Run("text is escaped", func(t *testing.T) {
		out := string(r.Blocks(data.Blocks{{Type: "block", Children: []data.Span{span("<script>alert(1)</script>")}}}))
		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "&lt;script&gt;")
	})

	t.Run("images use the CDN", func(t *testing.T) {
		out := string(r.Blocks(data.Blocks{{Type: "image", Asset: data.Reference{Ref: "image-abc-800x600-jpg"}, Alt: "Oyster flush"}}))
		assert.Contains(t, out, "https://cdn.sanity.io/images/proj/production/abc-800x600.jpg")
		assert.Contains(t, out, "<figcaption>Oyster flush</figcaption>")
	})

	t.Run("unknown types are skipped", func(t *testing.T) {
		assert.Empty(t, string(r.Blocks(data.Blocks{{Type: "youtube"}})))
	})
}

func TestMarkdown(t *testing.T) {
	r := newTestRenderer()

	out := string(r.Markdown("Keep it **cool**.\n\n<script>x()</script>"))
	assert.Contains(t, out, "<strong>cool</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestImageURL(t *testing.T) {
	r := newTestRenderer()

	assert.Empty(t, r.ImageURL(nil, 100))
	assert.Equal(t, "https://img.example.com/a.png", r.ImageURL(&data.Image{URL: "https://img.example.com/a.png"}, 100))
	assert.Empty(t, r.ImageURL(&data.Image{Asset: data.Reference{Ref: "bogus"}}, 100))
	assert.True(t, strings.HasPrefix(r.ImageURL(&data.Image{Asset: data.Reference{Ref: "image-abc-10x10-png"}}, 100), "https://cdn.sanity.io/"))

	p := &data.Product{ImageURL: "https://img.example.com/p.png"}
	assert.Equal(t, "https://img.example.com/p.png", r.ProductImage(p, 400))
}

func TestAnswerAndPostBody(t *testing.T) {
	r := newTestRenderer()

	assert.Contains(t, string(r.Answer(&data.FAQ{Answer: "*yes*"})), "<em>yes</em>")
	assert.Contains(t, string(r.Answer(&data.FAQ{AnswerBlocks: data.Blocks{{Type: "block", Children: []data.Span{span("blocks")}}}})), "<p>blocks</p>")
	assert.Contains(t, string(r.PostBody(&data.BlogPost{Content: "# Title"})), "<h1")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "Lion's mane…", Excerpt("Lion's mane supports focus", 14))
}
