// Package handler contains HTTP handlers for the Studio Youkai site.
package handler

import (
	"net/http"
	"strings"

	"github.com/DukeRupert/youkai/internal/service"
	"github.com/DukeRupert/youkai/internal/site"
	"github.com/DukeRupert/youkai/internal/templ/components/ui"
)

// TemplateRenderer defines the interface for rendering templates.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data interface{})
	RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{})
	RenderPartial(w http.ResponseWriter, name string, data interface{})
}

// =============================================================================
// Template Data Types
// =============================================================================

// PageData is passed to every full page template.
type PageData struct {
	Meta        service.PageMeta // Document metadata
	Site        *site.Copy       // Site copy for layout and landing sections
	BaseURL     string           // Absolute origin for canonical and og:url
	CurrentPath string           // Current URL path
	Content     interface{}      // Page-specific data
}

// StatusPageData contains data for the not found and error pages.
type StatusPageData struct {
	Heading     string
	Message     string
	Href        string
	Label       string
	ButtonClass string
}

// Layout builds PageData for the handlers.
type Layout struct {
	Site    *site.Copy
	BaseURL string
}

// NewLayout creates a Layout. A trailing slash on baseURL is dropped.
func NewLayout(c *site.Copy, baseURL string) Layout {
	return Layout{Site: c, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Page wraps content for the public layout.
func (l Layout) Page(r *http.Request, meta service.PageMeta, content interface{}) PageData {
	path := ""
	if r != nil {
		path = r.URL.Path
	}
	return PageData{
		Meta:        meta,
		Site:        l.Site,
		BaseURL:     l.BaseURL,
		CurrentPath: path,
		Content:     content,
	}
}

// SiteMeta returns metadata for a top-level page titled title.
func (l Layout) SiteMeta(title, canonical string) service.PageMeta {
	fullTitle := l.Site.Name
	if title != "" {
		fullTitle = title + " | " + l.Site.Name
	}
	return service.PageMeta{
		Title:       fullTitle,
		Description: l.Site.Description,
		OGType:      "website",
		Canonical:   canonical,
	}
}

// renderNotFound renders the 404 page.
func renderNotFound(w http.ResponseWriter, r *http.Request, renderer TemplateRenderer, layout Layout, meta service.PageMeta, content StatusPageData) {
	if content.ButtonClass == "" {
		content.ButtonClass = ui.ButtonClass(ui.ButtonPrimary)
	}
	renderer.RenderHTTPStatus(w, http.StatusNotFound, "public/not_found", layout.Page(r, meta, content))
}

// renderErrorPage renders a full error page with the status for err.
func renderErrorPage(w http.ResponseWriter, r *http.Request, renderer TemplateRenderer, layout Layout, status int, message string) {
	content := StatusPageData{
		Message:     message,
		Href:        r.URL.RequestURI(),
		ButtonClass: ui.ButtonClass(ui.ButtonPrimary),
	}
	meta := layout.SiteMeta("Error", "")
	renderer.RenderHTTPStatus(w, status, "public/error", layout.Page(r, meta, content))
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
