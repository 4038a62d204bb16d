package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/webhooks-analytics/console/internal/theme"
	"github.com/webhooks-analytics/console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	buffers   sync.Pool
}

// NavItem is one sidebar link.
type NavItem struct {
	Href   string
	Label  string
	Active bool
}

// Banner is a non-blocking notice rendered above page content.
type Banner struct {
	Tone    string
	Message string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	CurrentPath string
	Theme       theme.Preference
	Environment string
	Range       string
	Nav         []NavItem
	Banners     []Banner
	Data        any
}

var navItems = []NavItem{
	{Href: "/", Label: "Overview"},
	{Href: "/ingestion", Label: "Ingestion"},
	{Href: "/registry", Label: "Schemas"},
	{Href: "/subscriptions", Label: "Subscriptions"},
	{Href: "/delivery", Label: "Delivery"},
	{Href: "/retries", Label: "Retries/DLQ"},
	{Href: "/partners", Label: "Partners"},
	{Href: "/audit", Label: "Audit"},
	{Href: "/alerts", Label: "Alerts"},
}

// Navigation returns the sidebar with the entry for path marked active.
func Navigation(path string) []NavItem {
	items := make([]NavItem, len(navItems))
	copy(items, navItems)
	for i := range items {
		if items[i].Href == "/" {
			items[i].Active = path == "/"
			continue
		}
		items[i].Active = path == items[i].Href || strings.HasPrefix(path, items[i].Href+"/")
	}
	return items
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"severityTone": func(severity string) string {
			switch strings.ToLower(severity) {
			case "high", "critical":
				return "severity-high"
			case "medium":
				return "severity-medium"
			case "low":
				return "severity-low"
			default:
				return "severity-unknown"
			}
		},
		"themeLabel": func(p theme.Preference) string {
			if p == theme.Dark {
				return "Light mode"
			}
			return "Dark mode"
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	e := &Engine{templates: tpl}
	e.buffers.New = func() any { return new(bytes.Buffer) }
	return e, nil
}

// Render executes a named template with TemplateData. Output is buffered so a failed
// execution never leaves a half-written page.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	if data.Nav == nil {
		data.Nav = Navigation(data.CurrentPath)
	}
	if data.Theme == "" {
		data.Theme = theme.Light
	}
	buf := e.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer e.buffers.Put(buf)

	if err := e.templates.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("view: execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
