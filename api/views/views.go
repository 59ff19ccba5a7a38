// Package views renders the HTML fragments served alongside JSON payloads.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/money"
)

//go:embed templates/*.html
var templateFS embed.FS

const placeholderImage = "/static/img/placeholder.png"

// Renderer executes the embedded fragment templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the templates. Prices are shown in currency.
func New(currency string) (*Renderer, error) {
	funcs := template.FuncMap{
		"price": func(amount int64) string { return money.Format(amount, currency) },
		"image": productImage,
	}
	tmpl, err := template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// ProductList renders the product grid used by the facet filter.
func (r *Renderer) ProductList(products []models.Product) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "product_list", products); err != nil {
		return "", fmt.Errorf("render product list: %w", err)
	}
	return buf.String(), nil
}

func productImage(p models.Product) string {
	for _, attr := range p.Attributes {
		if attr.Image != "" {
			return attr.Image
		}
	}
	return placeholderImage
}
