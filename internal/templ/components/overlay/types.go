// Package overlay renders the artwork overlay shown above the gallery.
package overlay

import (
	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/templ/components/masonry"
)

// Data contains the overlay content for one artwork.
type Data struct {
	SessionID   string
	Slug        string
	Title       string
	Description string
	Tags        []string
	Images      []domain.ProcessedImage
	DetailURL   string // Standalone detail page
	Previous    *Link  // Neighbor before this artwork, nil at the start
	Next        *Link  // Neighbor after this artwork, nil at the end
}

// Link points at a neighboring artwork.
type Link struct {
	Title string
	Slug  string
}

// FromSummary converts a navigation summary into a link. Summaries without
// a slug cannot be opened and yield nil.
func FromSummary(s *domain.ArtworkSummary) *Link {
	if s == nil || s.Slug == "" {
		return nil
	}
	return &Link{Title: s.DisplayTitle(), Slug: s.Slug}
}

func (d Data) routes() masonry.Routes {
	return masonry.Routes{SessionID: d.SessionID}
}
