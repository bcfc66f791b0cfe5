package domain

import "fmt"

// =============================================================================
// Layout Constants
// =============================================================================

const (
	// LayoutImageWidth is the target width of masonry images in pixels.
	LayoutImageWidth = 600

	// LayoutImageQuality is the quality requested for masonry images (0-100).
	LayoutImageQuality = 80

	// LayoutMinHeight is the inclusive lower bound of masonry item heights.
	LayoutMinHeight = 350

	// LayoutHeightBand is the width of the height band; heights fall in
	// [LayoutMinHeight, LayoutMinHeight+LayoutHeightBand).
	LayoutHeightBand = 200

	// DetailImageWidth is the width of images on the detail view.
	DetailImageWidth = 1200

	// DetailImageHeight is the nominal height reported for detail images.
	DetailImageHeight = 800

	// DetailImageQuality is the quality requested for detail images.
	DetailImageQuality = 90
)

// =============================================================================
// Layout Item
// =============================================================================

// LayoutItem is a display-ready projection of an Artwork for masonry rendering.
//
// ID is unique within the accumulated set of a gallery session even when the
// same artwork is fetched in two batches.
type LayoutItem struct {
	ID        string // Artwork identity combined with the fetch batch
	ArtworkID string // Source artwork identity
	Slug      string // Source artwork slug (may be empty)
	Title     string // Display title
	Image     string // Image URL pre-sized for LayoutImageWidth
	URL       string // Detail path or PlaceholderPath
	Height    int    // Layout height in pixels
}

// LayoutItemID builds the unique identity of a layout item.
func LayoutItemID(artworkID, batch string, index int) string {
	return fmt.Sprintf("%s-%s-%d", artworkID, batch, index)
}

// =============================================================================
// Pagination Cursor
// =============================================================================

// Cursor marks the position after which the next page starts.
//
// The gallery orders artworks by identity ascending, so the cursor is the
// identity of the last loaded artwork. The zero value means "no cursor".
type Cursor string

// IsZero returns true if the cursor is absent.
func (c Cursor) IsZero() bool {
	return c == ""
}

// String returns the cursor value.
func (c Cursor) String() string {
	return string(c)
}

// After returns true if c is strictly past other in the gallery ordering.
// Any cursor is after the absent cursor.
func (c Cursor) After(other Cursor) bool {
	if other.IsZero() {
		return !c.IsZero()
	}
	return string(c) > string(other)
}

// CursorOf derives the cursor from a loaded list: the last element's identity.
// Returns the zero cursor for an empty list.
func CursorOf(loaded []Artwork) Cursor {
	if len(loaded) == 0 {
		return ""
	}
	return Cursor(loaded[len(loaded)-1].ID)
}
