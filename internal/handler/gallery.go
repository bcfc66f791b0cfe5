package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/gallery"
	"github.com/DukeRupert/youkai/internal/service"
	"github.com/DukeRupert/youkai/internal/templ/components/masonry"
	"github.com/DukeRupert/youkai/internal/templ/components/overlay"
	"github.com/DukeRupert/youkai/internal/templ/components/ui"
	"github.com/DukeRupert/youkai/internal/templ/partials"
)

// =============================================================================
// Template Data Types
// =============================================================================

// GalleryPageData contains data for the gallery page.
type GalleryPageData struct {
	SessionID string          // Gallery session backing the page
	Count     int             // Total artworks, 0 when unknown
	Grid      templ.Component // Masonry grid for the current session state
	Overlay   templ.Component // Overlay for the selected artwork, nil when closed
	BackClass string          // Back link classes
}

// GalleryCountData contains data for the gallery_count partial.
type GalleryCountData struct {
	Count int
}

// scrollRequest is the scroll position posted by the tracker.
type scrollRequest struct {
	Top      int `validate:"gte=0"`
	Viewport int `validate:"gt=0"`
	Document int `validate:"gte=0"`
}

// searchRequest is the search box query.
type searchRequest struct {
	Query string `validate:"max=100"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// GalleryHandler serves the gallery page and the htmx endpoints of its
// sessions.
type GalleryHandler struct {
	sessions *gallery.Registry
	gallery  service.GalleryService
	artworks service.ArtworkService
	renderer TemplateRenderer
	layout   Layout
	validate *validator.Validate
	logger   *slog.Logger
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(
	sessions *gallery.Registry,
	galleryService service.GalleryService,
	artworkService service.ArtworkService,
	renderer TemplateRenderer,
	layout Layout,
	logger *slog.Logger,
) *GalleryHandler {
	return &GalleryHandler{
		sessions: sessions,
		gallery:  galleryService,
		artworks: artworkService,
		renderer: renderer,
		layout:   layout,
		validate: validator.New(),
		logger:   logger,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// Per-client request budgets, per minute, for the rate limited gallery
// routes. The scroll tracker posts while the reader scrolls, so scroll gets
// a budget of its own.
const (
	SearchRequestsPerMinute = 120
	ScrollRequestsPerMinute = 1200
)

// GalleryLimits are the rate limiters wrapped around search and scroll.
type GalleryLimits struct {
	Search func(http.Handler) http.Handler
	Scroll func(http.Handler) http.Handler
}

// RegisterRoutes registers all gallery routes with the provided mux.
//
// Routes:
// - GET    /gallery                         -> Index
// - GET    /gallery/count                   -> Count (partial)
// - GET    /gallery/search                  -> Search (rate limited)
// - POST   /gallery/sessions/{id}/scroll    -> Scroll (rate limited)
// - POST   /gallery/sessions/{id}/retry     -> Retry
// - POST   /gallery/sessions/{id}/navigate  -> Navigate
// - GET    /gallery/sessions/{id}/overlay   -> OpenOverlay
// - DELETE /gallery/sessions/{id}/overlay   -> CloseOverlay
// - DELETE /gallery/sessions/{id}           -> Unmount
func (h *GalleryHandler) RegisterRoutes(mux *http.ServeMux, limits GalleryLimits) {
	mux.HandleFunc("GET /gallery", h.Index)
	mux.HandleFunc("GET /gallery/count", h.Count)
	mux.Handle("GET /gallery/search", limits.Search(http.HandlerFunc(h.Search)))
	mux.Handle("POST /gallery/sessions/{id}/scroll", limits.Scroll(http.HandlerFunc(h.Scroll)))
	mux.HandleFunc("POST /gallery/sessions/{id}/retry", h.Retry)
	mux.HandleFunc("POST /gallery/sessions/{id}/navigate", h.Navigate)
	mux.HandleFunc("GET /gallery/sessions/{id}/overlay", h.OpenOverlay)
	mux.HandleFunc("DELETE /gallery/sessions/{id}/overlay", h.CloseOverlay)
	mux.HandleFunc("DELETE /gallery/sessions/{id}", h.Unmount)
}

// =============================================================================
// GET /gallery - Gallery Page
// =============================================================================

// Index mounts a new gallery session, waits for the first page and renders
// the full gallery. The total count is fetched alongside the first page.
func (h *GalleryHandler) Index(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create(r.URL.RequestURI())

	var (
		snap  gallery.Snapshot
		count int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		snap, err = session.Load(ctx)
		return err
	})
	g.Go(func() error {
		count = h.gallery.Count(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("failed to mount gallery session", "error", err, "session_id", session.ID())
		h.sessions.Remove(session.ID())
		renderErrorPage(w, r, h.renderer, h.layout, http.StatusServiceUnavailable, domain.MsgLoadFailed)
		return
	}

	data := GalleryPageData{
		SessionID: session.ID(),
		Count:     count,
		Grid:      masonry.Grid(gridData(snap)),
		BackClass: ui.ButtonClass(ui.ButtonGhost, "px-0"),
	}
	if snap.Selected != "" {
		data.Overlay = h.overlayFor(r.Context(), session.ID(), snap.Selected)
	}

	meta := h.layout.SiteMeta("Art Gallery", gallery.GalleryPath)
	h.renderer.RenderHTTP(w, "public/gallery", h.layout.Page(r, meta, data))
}

// =============================================================================
// GET /gallery/count - Count Partial
// =============================================================================

// Count renders the artwork count line.
func (h *GalleryHandler) Count(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPartial(w, "gallery_count", GalleryCountData{Count: h.gallery.Count(r.Context())})
}

// =============================================================================
// GET /gallery/search - Search
// =============================================================================

// Search renders the results for the q parameter.
func (h *GalleryHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := h.validate.Struct(req); err != nil {
		ValidationErrorResponse(w, r, h.logger, toValidationError("GalleryHandler.Search", err))
		return
	}

	var artworks []domain.Artwork
	if req.Query != "" {
		artworks = h.gallery.Search(r.Context(), req.Query)
	}
	templ.Handler(partials.SearchResults(partials.ToSearchResultsData(req.Query, artworks))).ServeHTTP(w, r)
}

// =============================================================================
// POST /gallery/sessions/{id}/scroll - Scroll
// =============================================================================

// Scroll records a scroll position. It answers with the appended items when
// this request triggered a fetch, or 204 when nothing changed.
func (h *GalleryHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	req, err := h.parseScroll(r)
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	delta, err := session.Scroll(r.Context(), gallery.ScrollPosition{
		Top:      req.Top,
		Viewport: req.Viewport,
		Document: req.Document,
	})
	if err != nil {
		h.sessionError(w, r, session.ID(), err)
		return
	}
	if delta == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	status := masonry.Status{
		SessionID: session.ID(),
		Phase:     delta.Phase.String(),
		HasMore:   delta.HasMore,
		Error:     delta.Error,
	}
	templ.Handler(masonry.Append(status, delta.Items)).ServeHTTP(w, r)
}

func (h *GalleryHandler) parseScroll(r *http.Request) (scrollRequest, error) {
	const op = "GalleryHandler.Scroll"
	if err := r.ParseForm(); err != nil {
		return scrollRequest{}, domain.NewValidationError(op, "form", "malformed form body")
	}

	var req scrollRequest
	var verr *domain.ValidationError
	fields := []struct {
		name string
		dst  *int
	}{
		{"top", &req.Top},
		{"viewport", &req.Viewport},
		{"document", &req.Document},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(r.PostFormValue(f.name))
		if err != nil {
			if verr == nil {
				verr = domain.NewValidationError(op, f.name, f.name+" must be a whole number")
			} else {
				verr = domain.AddFieldError(verr, f.name, f.name+" must be a whole number")
			}
			continue
		}
		*f.dst = n
	}
	if verr != nil {
		return scrollRequest{}, verr
	}

	if err := h.validate.Struct(req); err != nil {
		return scrollRequest{}, toValidationError(op, err)
	}
	return req, nil
}

// =============================================================================
// POST /gallery/sessions/{id}/retry - Retry
// =============================================================================

// Retry reloads a gallery whose first load failed or came back empty.
func (h *GalleryHandler) Retry(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	snap, err := session.Load(r.Context())
	if err != nil {
		h.sessionError(w, r, session.ID(), err)
		return
	}
	templ.Handler(masonry.Grid(gridData(snap))).ServeHTTP(w, r)
}

// =============================================================================
// Overlay
// =============================================================================

// OpenOverlay selects the artwork in the sketch parameter and renders its
// overlay. The browser URL follows via HX-Push-Url.
func (h *GalleryHandler) OpenOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	slug := strings.TrimSpace(r.URL.Query().Get(gallery.SelectionParam))
	if slug == "" {
		ValidationErrorResponse(w, r, h.logger, domain.NewValidationError("GalleryHandler.OpenOverlay", gallery.SelectionParam, "sketch is required"))
		return
	}

	if err := session.Select(r.Context(), slug); err != nil {
		h.sessionError(w, r, session.ID(), err)
		return
	}

	w.Header().Set("HX-Push-Url", gallery.SelectionURL(slug))
	templ.Handler(h.overlayFor(r.Context(), session.ID(), slug)).ServeHTTP(w, r)
}

// CloseOverlay clears the selection and returns an empty overlay.
func (h *GalleryHandler) CloseOverlay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.CloseOverlay(r.Context()); err != nil {
		h.sessionError(w, r, session.ID(), err)
		return
	}

	w.Header().Set("HX-Push-Url", gallery.GalleryPath)
	w.WriteHeader(http.StatusOK)
}

// Navigate follows browser back and forward. The overlay is re-rendered for
// whatever the new URL selects.
func (h *GalleryHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	target := r.PostFormValue("url")
	if !gallery.IsGalleryURL(target) {
		ValidationErrorResponse(w, r, h.logger, domain.NewValidationError("GalleryHandler.Navigate", "url", "url must be a gallery location"))
		return
	}

	if err := session.Navigate(r.Context(), target); err != nil {
		if errors.Is(err, gallery.ErrClosed) || errors.Is(err, context.Canceled) {
			h.sessionError(w, r, session.ID(), err)
			return
		}
		ValidationErrorResponse(w, r, h.logger, domain.NewValidationError("GalleryHandler.Navigate", "url", "url is malformed"))
		return
	}

	snap, err := session.Snapshot(r.Context())
	if err != nil {
		h.sessionError(w, r, session.ID(), err)
		return
	}
	if snap.Selected == "" {
		w.WriteHeader(http.StatusOK)
		return
	}
	templ.Handler(h.overlayFor(r.Context(), session.ID(), snap.Selected)).ServeHTTP(w, r)
}

// Unmount discards a session.
func (h *GalleryHandler) Unmount(w http.ResponseWriter, r *http.Request) {
	h.sessions.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// session resolves the path session. Expired sessions make htmx reload the
// page, which mounts a fresh one.
func (h *GalleryHandler) session(w http.ResponseWriter, r *http.Request) (*gallery.Session, bool) {
	id := r.PathValue("id")
	session, ok := h.sessions.Get(id)
	if !ok {
		h.logger.Info("gallery session not found", "session_id", id)
		if !isHTMX(r) && r.Method == http.MethodGet {
			http.Redirect(w, r, gallery.GalleryPath, http.StatusSeeOther)
			return nil, false
		}
		w.Header().Set("HX-Refresh", "true")
		NotFoundResponse(w, r, h.logger)
		return nil, false
	}
	return session, true
}

func (h *GalleryHandler) sessionError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, gallery.ErrClosed) {
		w.Header().Set("HX-Refresh", "true")
		ErrorResponse(w, r, h.logger, domain.NotFound("GalleryHandler", "gallery session", id))
		return
	}
	if errors.Is(err, context.Canceled) {
		// Client went away
		return
	}
	InternalErrorResponse(w, r, h.logger, err)
}

// overlayFor resolves slug into an overlay component.
func (h *GalleryHandler) overlayFor(ctx context.Context, sessionID, slug string) templ.Component {
	detail, err := h.artworks.BySlug(ctx, slug)
	if err != nil {
		if domain.ErrorCode(err) != domain.ENOTFOUND {
			h.logger.Error("failed to load overlay artwork", "error", err, "slug", slug)
		}
		return overlay.NotFound(sessionID)
	}

	return overlay.Overlay(overlay.Data{
		SessionID:   sessionID,
		Slug:        slug,
		Title:       detail.Artwork.DisplayTitle(),
		Description: detail.Artwork.Description,
		Tags:        detail.Artwork.Tags,
		Images:      detail.Images,
		DetailURL:   detail.Artwork.Path(),
		Previous:    overlay.FromSummary(detail.Navigation.Previous),
		Next:        overlay.FromSummary(detail.Navigation.Next),
	})
}

// gridData converts a session snapshot into grid data.
func gridData(snap gallery.Snapshot) masonry.Data {
	return masonry.Data{
		SessionID: snap.ID,
		Items:     snap.Items,
		Status: masonry.Status{
			SessionID: snap.ID,
			Phase:     snap.Phase.String(),
			HasMore:   snap.HasMore,
			Error:     snap.Error,
		},
	}
}

// toValidationError converts validator errors into field errors.
func toValidationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Invalid(op, "invalid request")
	}

	var ve *domain.ValidationError
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		msg := field + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		if ve == nil {
			ve = domain.NewValidationError(op, field, msg)
		} else {
			domain.AddFieldError(ve, field, msg)
		}
	}
	return ve
}
