// Package masonry renders the infinite-scroll gallery grid.
package masonry

import (
	"net/url"

	"github.com/DukeRupert/youkai/internal/domain"
)

// Phase names mirror the gallery session lifecycle.
const (
	PhaseLoading     = "loading"
	PhaseError       = "error"
	PhaseEmpty       = "empty"
	PhaseLoaded      = "loaded"
	PhaseLoadingMore = "loading_more"
	PhaseExhausted   = "exhausted"
)

// ExhaustedMessage is shown once every artwork has been loaded.
const ExhaustedMessage = "You've seen all the artworks!"

// Data contains everything the grid needs for a full render.
type Data struct {
	SessionID string              // Gallery session the grid belongs to
	Items     []domain.LayoutItem // Layout items in display order
	Status    Status
}

// Status describes the grid footer.
type Status struct {
	SessionID string
	Phase     string // One of the Phase constants
	HasMore   bool
	Error     string // Incremental load failure, shown under the grid
}

// Routes builds the htmx endpoints for one session.
type Routes struct {
	SessionID string
}

// Scroll is the endpoint scroll positions are posted to.
func (r Routes) Scroll() string {
	return "/gallery/sessions/" + url.PathEscape(r.SessionID) + "/scroll"
}

// Retry is the endpoint that reloads a failed or empty gallery.
func (r Routes) Retry() string {
	return "/gallery/sessions/" + url.PathEscape(r.SessionID) + "/retry"
}

// Navigate is the endpoint browser back and forward are reported to.
func (r Routes) Navigate() string {
	return "/gallery/sessions/" + url.PathEscape(r.SessionID) + "/navigate"
}

// Overlay is the endpoint serving the overlay for slug.
func (r Routes) Overlay(slug string) string {
	base := "/gallery/sessions/" + url.PathEscape(r.SessionID) + "/overlay"
	if slug == "" {
		return base
	}
	return base + "?" + url.Values{"sketch": {slug}}.Encode()
}
