// Package domain contains core business types and interfaces.
//
// This file defines the Artwork domain type: a single piece of art authored
// in the content store and read (never written) by the site.
package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Artwork Constants
// =============================================================================

const (
	// DocumentType is the content store document type for artworks.
	DocumentType = "sketch"

	// UntitledArtwork is displayed when an artwork has no title.
	UntitledArtwork = "Untitled Sketch"

	// PlaceholderPath is the navigation target for artworks without a slug.
	PlaceholderPath = "#"
)

// =============================================================================
// Artwork Domain Type
// =============================================================================

// ImageRef references an image asset held by the content store.
type ImageRef struct {
	AssetRef  string // Asset reference (e.g., "image-abc123-1200x800-jpg")
	AssetType string // Reference type reported by the store (usually "reference")
	Alt       string // Alternative text
	Caption   string // Optional caption
}

// Artwork represents one piece of art with its metadata and images.
//
// Artworks are read-only for the lifetime of a page load; they are created
// and edited externally in the content store.
type Artwork struct {
	ID          string     // Store-assigned identity (opaque, sortable)
	Title       string     // Optional title
	Description string     // Optional description
	Images      []ImageRef // Image references, may be empty
	Tags        []string   // Optional tags
	CreatedAt   time.Time  // Creation timestamp
	Featured    bool       // Featured flag
	Slug        string     // URL-safe identifier, empty when not set
}

// HasImages returns true if the artwork has at least one image.
func (a *Artwork) HasImages() bool {
	return len(a.Images) > 0
}

// Navigable returns true if the artwork can be displayed on its own.
// An artwork lacking both a slug and images is filtered from gallery display.
func (a *Artwork) Navigable() bool {
	return a.Slug != "" || a.HasImages()
}

// DisplayTitle returns the title or the untitled fallback.
func (a *Artwork) DisplayTitle() string {
	if strings.TrimSpace(a.Title) == "" {
		return UntitledArtwork
	}
	return a.Title
}

// Path returns the detail page path, or the placeholder if no slug is set.
func (a *Artwork) Path() string {
	return ArtworkPath(a.Slug)
}

// Summary returns the navigation summary for this artwork.
func (a *Artwork) Summary() *ArtworkSummary {
	return &ArtworkSummary{
		ID:    a.ID,
		Title: a.Title,
		Slug:  a.Slug,
	}
}

// ArtworkPath returns the detail page path for a slug.
func ArtworkPath(slug string) string {
	if slug == "" {
		return PlaceholderPath
	}
	return "/sketch/" + slug
}

// ArtworkSummary is the minimal projection used for previous/next browsing.
type ArtworkSummary struct {
	ID    string
	Title string
	Slug  string
}

// DisplayTitle returns the title or "Untitled".
func (s *ArtworkSummary) DisplayTitle() string {
	if strings.TrimSpace(s.Title) == "" {
		return "Untitled"
	}
	return s.Title
}

// Navigation holds the neighbors of an artwork under the gallery ordering.
// Either side is nil at a boundary.
type Navigation struct {
	Previous *ArtworkSummary
	Next     *ArtworkSummary
}

// ProcessedImage is an image prepared for the detail view.
type ProcessedImage struct {
	URL     string
	Alt     string
	Caption string
	Width   int
	Height  int
}
