// Package view renders the HTML templates embedded in the web package.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"mycogenesis/internal/config"
	"mycogenesis/internal/middleware"
)

// View represents a collection of parsed HTML templates.
type View struct {
	templates map[string]*template.Template
	site      config.SiteConfig
}

// New creates a new View by parsing all templates from the given filesystem.
// funcs are added to the built-in template functions.
func New(templateFS fs.FS, site config.SiteConfig, funcs template.FuncMap) (*View, error) {
	v := &View{
		templates: make(map[string]*template.Template),
		site:      site,
	}

	fm := baseFuncs()
	for name, fn := range funcs {
		fm[name] = fn
	}

	// First, get all the layout files
	layouts, err := fs.Glob(templateFS, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}

	// Then, get all the page files
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	// For each page, parse it with the layout files
	for _, page := range pages {
		files := append(slices.Clone(layouts), page)
		name := filepath.Base(page)
		ts, err := template.New(name).Funcs(fm).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.templates[name] = ts
	}

	return v, nil
}

// Render executes a specific template by name. The data map gets the site
// settings, the signed in user and any flashed notice.
func (v *View) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	ts, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	data["Site"] = v.site
	data["UserInfo"] = middleware.GetUserInfo(r.Context())
	data["Path"] = r.URL.Path
	if n := middleware.FlashedNotice(r.Context()); n != nil {
		data["Flash"] = n
	}

	// Execute the template into a buffer first to catch any errors
	// before writing to the response writer.
	buf := new(bytes.Buffer)
	if err := ts.Execute(buf, data); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)
	return err
}

func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"isoDate": func(t time.Time) string { return t.Format(time.RFC3339) },
		"join":    strings.Join,
		"hasInt":  func(s []int, v int) bool { return slices.Contains(s, v) },
		"hasStr":  func(s []string, v string) bool { return slices.Contains(s, v) },
		"price":   func(p float64) string { return fmt.Sprintf("$%.2f", p) },
		"lower":   strings.ToLower,
	}
}
