// Package web embeds the page templates and the static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// TemplateFS holds templates/layouts and templates/pages.
var TemplateFS fs.FS = templateFS

// StaticFS holds the stylesheets and scripts served under /static/.
var StaticFS fs.FS = mustSub(staticFS, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
