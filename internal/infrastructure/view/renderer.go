// Package view implements Echo's rendering contract over html/template.
// Handlers supply only a view name and an attribute map; everything about
// markup lives in the templates.
package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// Renderer resolves view names against a parsed template set.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every templates/*.html file in fsys. Each file becomes a
// view named after its base name without the extension ("getAll.html" renders
// as "getAll").
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: glob templates: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("view: no templates found")
	}

	root := template.New("")
	for _, file := range files {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("view: read %s: %w", file, err)
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		if _, err := root.New(name).Parse(string(raw)); err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", file, err)
		}
	}

	return &Renderer{templates: root}, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl := r.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("view: unknown view %q", name)
	}
	return tmpl.Execute(w, data)
}
