package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Page names
const (
	PageIndex = "index"
	PageCart  = "cart"
)

// Layout is the data every page shares
type Layout struct {
	Title     string
	CartCount int
	Notice    string
}

// IndexData is the catalog page
type IndexData struct {
	Layout
	Products        catalog.Grid
	Recommendations catalog.Grid
}

// CartData is the cart page
type CartData struct {
	Layout
	Cart cart.View
}

// Renderer executes the page templates. Each page is parsed together with
// the layout into its own set so pages can each define "content".
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates once
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, name := range []string{PageIndex, PageCart} {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// Render writes the named page with status. The page is executed into a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
