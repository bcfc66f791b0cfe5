package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/service"
	"github.com/DukeRupert/youkai/internal/templ/components/ui"
)

// =============================================================================
// Template Data Types
// =============================================================================

// SketchPageData contains data for the artwork detail page.
type SketchPageData struct {
	Title       string
	Description string
	Tags        []string
	Featured    bool
	CreatedAt   time.Time
	Images      []domain.ProcessedImage
	Related     []service.RelatedArtwork
	Previous    *SketchLink // nil at the start of the gallery
	Next        *SketchLink // nil at the end of the gallery
	BackClass   string
	NavClass    string
}

// SketchLink points at a neighboring artwork.
type SketchLink struct {
	Title string
	Path  string
}

// =============================================================================
// Handler Configuration
// =============================================================================

// ArtworkHandler serves standalone artwork detail pages.
type ArtworkHandler struct {
	artworks service.ArtworkService
	renderer TemplateRenderer
	layout   Layout
	logger   *slog.Logger
}

// NewArtworkHandler creates a new ArtworkHandler.
func NewArtworkHandler(artworkService service.ArtworkService, renderer TemplateRenderer, layout Layout, logger *slog.Logger) *ArtworkHandler {
	return &ArtworkHandler{
		artworks: artworkService,
		renderer: renderer,
		layout:   layout,
		logger:   logger,
	}
}

// RegisterRoutes registers the artwork routes.
//
// Routes:
// - GET /sketch/{slug} -> Show
func (h *ArtworkHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /sketch/{slug}", h.Show)
}

// =============================================================================
// GET /sketch/{slug} - Detail Page
// =============================================================================

// Show renders the detail page for an artwork.
func (h *ArtworkHandler) Show(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	detail, err := h.artworks.BySlug(r.Context(), slug)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			renderNotFound(w, r, h.renderer, h.layout, service.NotFoundMeta(), StatusPageData{
				Heading: "Sketch Not Found",
				Message: "The sketch you are looking for does not exist or has been removed.",
				Href:    "/gallery",
				Label:   "Back to Gallery",
			})
			return
		}
		h.logger.Error("failed to load artwork page", "error", err, "slug", slug)
		renderErrorPage(w, r, h.renderer, h.layout, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), domain.ErrorMessage(err))
		return
	}

	h.renderer.RenderHTTP(w, "public/sketch", h.layout.Page(r, detail.Meta, ToSketchPageData(detail)))
}

// ToSketchPageData converts an artwork detail into template data.
func ToSketchPageData(detail *service.ArtworkDetail) SketchPageData {
	a := detail.Artwork
	return SketchPageData{
		Title:       a.DisplayTitle(),
		Description: a.Description,
		Tags:        a.Tags,
		Featured:    a.Featured,
		CreatedAt:   a.CreatedAt,
		Images:      detail.Images,
		Related:     detail.Related,
		Previous:    sketchLink(detail.Navigation.Previous),
		Next:        sketchLink(detail.Navigation.Next),
		BackClass:   ui.ButtonClass(ui.ButtonGhost, "px-0"),
		NavClass:    ui.ButtonClass(ui.ButtonOutline),
	}
}

func sketchLink(s *domain.ArtworkSummary) *SketchLink {
	if s == nil || s.Slug == "" {
		return nil
	}
	return &SketchLink{Title: s.DisplayTitle(), Path: domain.ArtworkPath(s.Slug)}
}
