package render

import (
	"html"
	"html/template"
	"strings"

	"mycogenesis/internal/data"
)

var blockTags = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"h5":         "h5",
	"h6":         "h6",
	"blockquote": "blockquote",
}

var markTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

var listTags = map[string]string{
	"bullet": "ul",
	"number": "ol",
}

// Blocks renders portable text. Unknown block types are skipped and unknown
// styles render as paragraphs.
func (r *Renderer) Blocks(blocks data.Blocks) template.HTML {
	var b strings.Builder
	openList := ""
	closeList := func() {
		if openList != "" {
			b.WriteString("</" + openList + ">")
			openList = ""
		}
	}

	for _, block := range blocks {
		switch block.Type {
		case "block":
			if tag, ok := listTags[block.ListItem]; ok {
				if openList != tag {
					closeList()
					b.WriteString("<" + tag + ">")
					openList = tag
				}
				b.WriteString("<li>")
				writeSpans(&b, block)
				b.WriteString("</li>")
				continue
			}
			closeList()
			tag, ok := blockTags[block.Style]
			if !ok {
				tag = "p"
			}
			b.WriteString("<" + tag + ">")
			writeSpans(&b, block)
			b.WriteString("</" + tag + ">")
		case "image":
			closeList()
			u := r.ImageURL(&data.Image{Asset: block.Asset}, 1200)
			if u == "" {
				continue
			}
			b.WriteString(`<figure><img src="` + html.EscapeString(u) + `" alt="` + html.EscapeString(block.Alt) + `" loading="lazy">`)
			if block.Alt != "" {
				b.WriteString("<figcaption>" + html.EscapeString(block.Alt) + "</figcaption>")
			}
			b.WriteString("</figure>")
		}
	}
	closeList()
	return r.Sanitize(b.String())
}

func writeSpans(b *strings.Builder, block data.Block) {
	links := make(map[string]string, len(block.MarkDefs))
	for _, def := range block.MarkDefs {
		if def.Type == "link" {
			links[def.Key] = def.Href
		}
	}

	for _, span := range block.Children {
		text := html.EscapeString(span.Text)
		text = strings.ReplaceAll(text, "\n", "<br>")
		// Marks are applied innermost first, so the first mark is outermost.
		for i := len(span.Marks) - 1; i >= 0; i-- {
			mark := span.Marks[i]
			if tag, ok := markTags[mark]; ok {
				text = "<" + tag + ">" + text + "</" + tag + ">"
			} else if href, ok := links[mark]; ok {
				text = `<a href="` + html.EscapeString(href) + `">` + text + "</a>"
			}
		}
		b.WriteString(text)
	}
}
