// Package view renders the dashboard's HTML pages.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/leadboard/lead-dashboard/internal/i18n"
	"github.com/leadboard/lead-dashboard/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NavItem is one sidebar link.
type NavItem struct {
	Label string
	Href  string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	Lang        string
	CurrentPath string
	Nav         []NavItem
	Data        any
}

// Navigation builds the sidebar entries in the printer's language.
func Navigation(p *i18n.Printer) []NavItem {
	return []NavItem{
		{Label: p.T(i18n.KeyNavCharts), Href: "/charts"},
		{Label: p.T(i18n.KeyNavTable), Href: "/table"},
		{Label: p.T(i18n.KeyNavScoring), Href: "/scoring"},
		{Label: p.T(i18n.KeyNavUpload), Href: "/upload"},
	}
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"isActive": func(current, href string) bool {
			return current == href || strings.HasPrefix(current, href+"/")
		},
		"add": func(a, b int) int { return a + b },
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData. The page is built
// in memory first so a template error never leaves a half-written body.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
