package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/DukeRupert/youkai/internal/service"
	"github.com/DukeRupert/youkai/internal/site"
	"github.com/DukeRupert/youkai/internal/templ/components/ui"
)

// =============================================================================
// Template Data Types
// =============================================================================

// HomePageData contains data for the landing page.
type HomePageData struct {
	PrimaryClass   string
	SecondaryClass string
}

// =============================================================================
// Handler Configuration
// =============================================================================

// Pinger checks that a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PublicHandler serves the landing and about pages and the site metadata
// documents.
type PublicHandler struct {
	artworks service.ArtworkService
	renderer TemplateRenderer
	layout   Layout
	icons    map[int][]byte
	health   Pinger
	logger   *slog.Logger
}

// NewPublicHandler creates a new PublicHandler. icons maps a pixel size to
// PNG bytes; health may be nil.
func NewPublicHandler(
	artworkService service.ArtworkService,
	renderer TemplateRenderer,
	layout Layout,
	icons map[int][]byte,
	health Pinger,
	logger *slog.Logger,
) *PublicHandler {
	return &PublicHandler{
		artworks: artworkService,
		renderer: renderer,
		layout:   layout,
		icons:    icons,
		health:   health,
		logger:   logger,
	}
}

// RegisterRoutes registers the public routes.
//
// Routes:
// - GET /                     -> Home
// - GET /about                -> About
// - GET /sitemap.xml          -> Sitemap
// - GET /manifest.webmanifest -> Manifest
// - GET /icons/{file}         -> Icon (icon-192.png, icon-512.png)
// - GET /health               -> Health
func (h *PublicHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /about", h.About)
	mux.HandleFunc("GET /sitemap.xml", h.Sitemap)
	mux.HandleFunc("GET /manifest.webmanifest", h.Manifest)
	mux.HandleFunc("GET /icons/{file}", h.Icon)
	mux.HandleFunc("GET /health", h.Health)
}

// =============================================================================
// Pages
// =============================================================================

// Home renders the landing page.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := HomePageData{
		PrimaryClass:   ui.ButtonClass(ui.ButtonPrimary, "rounded-full px-8 py-4 text-lg"),
		SecondaryClass: ui.ButtonClass(ui.ButtonOutline, "rounded-full border-2 px-8 py-4 text-lg"),
	}
	meta := h.layout.SiteMeta("", "/")
	meta.Title = h.layout.Site.Name + " - " + h.layout.Site.Tagline
	h.renderer.RenderHTTP(w, "public/home", h.layout.Page(r, meta, data))
}

// About renders the artist profile.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	meta := h.layout.SiteMeta("About", "/about")
	h.renderer.RenderHTTP(w, "public/about", h.layout.Page(r, meta, nil))
}

// NotFound renders the 404 page for unmatched paths.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r, h.renderer, h.layout, h.layout.SiteMeta("Page Not Found", ""), StatusPageData{})
}

// =============================================================================
// GET /sitemap.xml
// =============================================================================

// Sitemap lists the landing page, the gallery and every artwork page.
func (h *PublicHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := BuildSitemap(h.layout.BaseURL, h.artworks.Slugs(r.Context()), time.Now())
	if err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// BuildSitemap renders the sitemap document for baseURL.
func BuildSitemap(baseURL string, slugs []string, now time.Time) ([]byte, error) {
	lastMod := now.UTC().Format("2006-01-02")
	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: baseURL + "/", LastMod: lastMod, ChangeFreq: "weekly", Priority: "1.0"},
			{Loc: baseURL + "/gallery", LastMod: lastMod, ChangeFreq: "daily", Priority: "0.8"},
			{Loc: baseURL + "/about", LastMod: lastMod, ChangeFreq: "monthly", Priority: "0.5"},
		},
	}
	for _, slug := range slugs {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        baseURL + "/sketch/" + slug,
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// =============================================================================
// Manifest and icons
// =============================================================================

// Manifest serves the web app manifest.
func (h *PublicHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	body, err := BuildManifest(h.layout.Site, iconSizes(h.icons))
	if err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/manifest+json")
	_, _ = w.Write(body)
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
	Categories      []string       `json:"categories,omitempty"`
	Lang            string         `json:"lang"`
	Orientation     string         `json:"orientation"`
}

// BuildManifest renders the web app manifest. sizes lists the generated
// icon sizes in pixels.
func BuildManifest(c *site.Copy, sizes []int) ([]byte, error) {
	m := webManifest{
		Name:            c.Manifest.Name,
		ShortName:       c.Manifest.ShortName,
		Description:     c.Description,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: c.Manifest.BackgroundColor,
		ThemeColor:      c.Manifest.ThemeColor,
		Categories:      c.Manifest.Categories,
		Lang:            "en",
		Orientation:     "portrait-primary",
	}
	for _, size := range sizes {
		m.Icons = append(m.Icons, manifestIcon{
			Src:   IconPath(size),
			Sizes: fmt.Sprintf("%dx%d", size, size),
			Type:  "image/png",
		})
	}

	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return body, nil
}

// IconPath returns the URL path of the icon with the given size.
func IconPath(size int) string {
	return "/icons/icon-" + strconv.Itoa(size) + ".png"
}

// Icon serves a generated PNG icon.
func (h *PublicHandler) Icon(w http.ResponseWriter, r *http.Request) {
	var size int
	if _, err := fmt.Sscanf(r.PathValue("file"), "icon-%d.png", &size); err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}
	body, ok := h.icons[size]
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(body)
}

func iconSizes(icons map[int][]byte) []int {
	sizes := make([]int, 0, len(icons))
	for size := range icons {
		sizes = append(sizes, size)
	}
	slices.Sort(sizes)
	return sizes
}

// =============================================================================
// GET /health
// =============================================================================

// Health reports whether the content store is reachable.
func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
