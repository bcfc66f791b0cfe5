// Package query holds the named, parameterized reads the site performs
// against its artwork catalogue.
//
// Every implementation orders artworks by identity ascending. The page
// cursor is the identity of the last loaded artwork, and previous/next
// navigation walks the same order, so the catalogue has exactly one
// total order.
package query

import (
	"context"

	"github.com/DukeRupert/youkai/internal/domain"
)

// RelatedLimit is the default number of related artworks returned.
const RelatedLimit = 4

// Store is the read interface over the artwork catalogue.
type Store interface {
	// FirstPage returns the first limit artworks.
	FirstPage(ctx context.Context, limit int) ([]domain.Artwork, error)

	// NextPage returns up to limit artworks strictly after cursor.
	NextPage(ctx context.Context, cursor domain.Cursor, limit int) ([]domain.Artwork, error)

	// Count returns the total number of artworks.
	Count(ctx context.Context) (int, error)

	// Search returns artworks whose title or tags match the term by prefix.
	Search(ctx context.Context, term string, limit int) ([]domain.Artwork, error)

	// BySlug returns the artwork with the given slug, or nil if none exists.
	BySlug(ctx context.Context, slug string) (*domain.Artwork, error)

	// Slugs returns every defined slug.
	Slugs(ctx context.Context) ([]string, error)

	// Related returns artworks sharing at least one tag, excluding excludeID.
	Related(ctx context.Context, tags []string, excludeID string, limit int) ([]domain.Artwork, error)

	// Previous returns the artwork immediately before id, or nil at the start.
	Previous(ctx context.Context, id string) (*domain.ArtworkSummary, error)

	// Next returns the artwork immediately after id, or nil at the end.
	Next(ctx context.Context, id string) (*domain.ArtworkSummary, error)

	// All returns the whole catalogue in order.
	All(ctx context.Context) ([]domain.Artwork, error)
}
