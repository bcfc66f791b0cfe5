package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DukeRupert/youkai/internal/content"
	"github.com/DukeRupert/youkai/internal/domain"
)

// Projections shared by the queries below.
const (
	artworkProjection = `{
  _id,
  title,
  description,
  images[] { asset, alt, caption },
  tags,
  createdAt,
  featured,
  "slug": slug.current
}`

	summaryProjection = `{ _id, title, "slug": slug.current }`
)

// Query templates. Values are always bound as parameters.
const (
	firstPageQuery = `*[_type == $type] | order(_id asc) [0...$limit] ` + artworkProjection

	nextPageQuery = `*[_type == $type && _id > $cursor] | order(_id asc) [0...$limit] ` + artworkProjection

	countQuery = `count(*[_type == $type])`

	searchQuery = `*[_type == $type && (title match $term || tags[] match $term)] | order(_id asc) [0...$limit] ` + artworkProjection

	bySlugQuery = `*[_type == $type && slug.current == $slug][0] ` + artworkProjection

	slugsQuery = `*[_type == $type && defined(slug.current)] | order(_id asc).slug.current`

	relatedQuery = `*[_type == $type && _id != $excludeId && count((tags[])[@ in $tags]) > 0] | order(_id asc) [0...$limit] ` + artworkProjection

	previousQuery = `*[_type == $type && _id < $id] | order(_id desc) [0] ` + summaryProjection

	nextQuery = `*[_type == $type && _id > $id] | order(_id asc) [0] ` + summaryProjection

	allQuery = `*[_type == $type] | order(_id asc) ` + artworkProjection
)

// GROQ implements Store over the remote content store.
type GROQ struct {
	client content.Querier
}

// NewGROQ creates a store backed by the given content client.
func NewGROQ(client content.Querier) *GROQ {
	return &GROQ{client: client}
}

// FirstPage returns the first limit artworks.
func (s *GROQ) FirstPage(ctx context.Context, limit int) ([]domain.Artwork, error) {
	var docs []document
	err := s.client.Fetch(ctx, "first_page", firstPageQuery, map[string]any{
		"type":  domain.DocumentType,
		"limit": limit,
	}, &docs)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	return toArtworks(docs), nil
}

// NextPage returns up to limit artworks after cursor.
func (s *GROQ) NextPage(ctx context.Context, cursor domain.Cursor, limit int) ([]domain.Artwork, error) {
	var docs []document
	err := s.client.Fetch(ctx, "next_page", nextPageQuery, map[string]any{
		"type":   domain.DocumentType,
		"cursor": cursor.String(),
		"limit":  limit,
	}, &docs)
	if err != nil {
		return nil, fmt.Errorf("fetch page after %s: %w", cursor, err)
	}
	return toArtworks(docs), nil
}

// Count returns the total number of artworks.
func (s *GROQ) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.client.Fetch(ctx, "count", countQuery, map[string]any{"type": domain.DocumentType}, &n); err != nil {
		return 0, fmt.Errorf("count artworks: %w", err)
	}
	return n, nil
}

// Search matches term as a prefix against titles and tags.
// An empty term returns no results without querying.
func (s *GROQ) Search(ctx context.Context, term string, limit int) ([]domain.Artwork, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	var docs []document
	err := s.client.Fetch(ctx, "search", searchQuery, map[string]any{
		"type":  domain.DocumentType,
		"term":  term + "*",
		"limit": limit,
	}, &docs)
	if err != nil {
		return nil, fmt.Errorf("search artworks: %w", err)
	}
	return toArtworks(docs), nil
}

// BySlug returns the artwork with slug, or nil if none exists.
func (s *GROQ) BySlug(ctx context.Context, slug string) (*domain.Artwork, error) {
	var doc *document
	err := s.client.Fetch(ctx, "by_slug", bySlugQuery, map[string]any{
		"type": domain.DocumentType,
		"slug": slug,
	}, &doc)
	if err != nil {
		return nil, fmt.Errorf("fetch artwork %q: %w", slug, err)
	}
	if doc == nil {
		return nil, nil
	}
	a := doc.toArtwork()
	return &a, nil
}

// Slugs returns every defined slug.
func (s *GROQ) Slugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := s.client.Fetch(ctx, "slugs", slugsQuery, map[string]any{"type": domain.DocumentType}, &slugs); err != nil {
		return nil, fmt.Errorf("fetch slugs: %w", err)
	}
	return slugs, nil
}

// Related returns artworks sharing at least one tag with tags.
func (s *GROQ) Related(ctx context.Context, tags []string, excludeID string, limit int) ([]domain.Artwork, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	var docs []document
	err := s.client.Fetch(ctx, "related", relatedQuery, map[string]any{
		"type":      domain.DocumentType,
		"tags":      tags,
		"excludeId": excludeID,
		"limit":     limit,
	}, &docs)
	if err != nil {
		return nil, fmt.Errorf("fetch related artworks: %w", err)
	}
	return toArtworks(docs), nil
}

// Previous returns the artwork immediately before id.
func (s *GROQ) Previous(ctx context.Context, id string) (*domain.ArtworkSummary, error) {
	return s.neighbor(ctx, "previous", previousQuery, id)
}

// Next returns the artwork immediately after id.
func (s *GROQ) Next(ctx context.Context, id string) (*domain.ArtworkSummary, error) {
	return s.neighbor(ctx, "next", nextQuery, id)
}

func (s *GROQ) neighbor(ctx context.Context, kind, q, id string) (*domain.ArtworkSummary, error) {
	var doc *summaryDocument
	err := s.client.Fetch(ctx, kind, q, map[string]any{
		"type": domain.DocumentType,
		"id":   id,
	}, &doc)
	if err != nil {
		return nil, fmt.Errorf("fetch %s of %s: %w", kind, id, err)
	}
	if doc == nil {
		return nil, nil
	}
	return &domain.ArtworkSummary{ID: doc.ID, Title: doc.Title, Slug: doc.Slug}, nil
}

// All returns the whole catalogue in order.
func (s *GROQ) All(ctx context.Context) ([]domain.Artwork, error) {
	var docs []document
	if err := s.client.Fetch(ctx, "all", allQuery, map[string]any{"type": domain.DocumentType}, &docs); err != nil {
		return nil, fmt.Errorf("fetch all artworks: %w", err)
	}
	return toArtworks(docs), nil
}

// =============================================================================
// Document decoding
// =============================================================================

// document is the projected shape of an artwork as returned by the store.
type document struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Images      []imageDocument `json:"images"`
	Tags        []string        `json:"tags"`
	CreatedAt   string          `json:"createdAt"`
	Featured    bool            `json:"featured"`
	Slug        string          `json:"slug"`
}

type imageDocument struct {
	Asset *struct {
		Ref  string `json:"_ref"`
		Type string `json:"_type"`
	} `json:"asset"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type summaryDocument struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

func (d document) toArtwork() domain.Artwork {
	a := domain.Artwork{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Tags:        d.Tags,
		CreatedAt:   parseTime(d.CreatedAt),
		Featured:    d.Featured,
		Slug:        d.Slug,
	}
	for _, img := range d.Images {
		// Images without an uploaded asset cannot be rendered.
		if img.Asset == nil || img.Asset.Ref == "" {
			continue
		}
		a.Images = append(a.Images, domain.ImageRef{
			AssetRef:  img.Asset.Ref,
			AssetType: img.Asset.Type,
			Alt:       img.Alt,
			Caption:   img.Caption,
		})
	}
	return a
}

func toArtworks(docs []document) []domain.Artwork {
	artworks := make([]domain.Artwork, 0, len(docs))
	for _, d := range docs {
		artworks = append(artworks, d.toArtwork())
	}
	return artworks
}

// parseTime accepts RFC 3339 timestamps and plain dates. Unparseable values
// yield the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
