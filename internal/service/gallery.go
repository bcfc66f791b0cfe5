// Package service contains business logic for the gallery site.
//
// This file implements gallery pagination: initial and incremental page
// fetches, identity de-duplication, and masonry layout item assembly.
package service

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/DukeRupert/youkai/internal/content"
	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/metrics"
	"github.com/DukeRupert/youkai/internal/query"
	"github.com/google/uuid"
)

// DefaultPageSize is the number of artworks requested per gallery page.
const DefaultPageSize = 12

// DefaultSearchLimit caps search results.
const DefaultSearchLimit = 24

// =============================================================================
// Interface Definition
// =============================================================================

// GalleryService fetches gallery pages and turns them into layout items.
//
// The service holds no session state. Callers pass in what they have loaded
// and receive a delta.
type GalleryService interface {
	// FetchInitial fetches the first page.
	FetchInitial(ctx context.Context) (*GalleryPage, error)

	// FetchMore fetches the page after the last artwork in loaded, with
	// artworks already in loaded removed. Returns domain.ErrNoCursor without
	// querying when loaded is empty.
	FetchMore(ctx context.Context, loaded []domain.Artwork) (*GalleryPage, error)

	// Count returns the total number of artworks, or 0 on failure.
	Count(ctx context.Context) int

	// Search returns artworks matching term, or nil on failure.
	Search(ctx context.Context, term string) []domain.Artwork

	// Layout converts artworks into layout items under a fresh batch tag.
	Layout(artworks []domain.Artwork) ([]domain.LayoutItem, string)

	// PageSize returns the configured page size.
	PageSize() int
}

// GalleryPage is the result of one page fetch.
type GalleryPage struct {
	Artworks []domain.Artwork    // New artworks, de-duplicated, in store order
	Items    []domain.LayoutItem // Layout items for artworks with images
	HasMore  bool                // More pages may exist
	Batch    string              // Batch tag embedded in every item ID
	Cursor   domain.Cursor       // Cursor the page was fetched after (zero for the first page)
}

// ImageURLBuilder builds sized image URLs from asset references.
type ImageURLBuilder interface {
	URL(ref string, opts content.ImageOptions) (string, error)
}

// GalleryConfig configures the gallery service.
type GalleryConfig struct {
	PageSize    int
	SearchLimit int

	// Height returns a pseudo-random offset in [0, n). Defaults to rand.IntN.
	Height func(n int) int

	// NewBatch returns a fresh batch tag. Defaults to a random UUID.
	NewBatch func() string
}

// =============================================================================
// Implementation
// =============================================================================

type galleryService struct {
	store       query.Store
	images      ImageURLBuilder
	pageSize    int
	searchLimit int
	height      func(n int) int
	newBatch    func() string
	logger      *slog.Logger
}

// NewGalleryService creates a new GalleryService.
func NewGalleryService(store query.Store, images ImageURLBuilder, cfg GalleryConfig, logger *slog.Logger) GalleryService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultSearchLimit
	}
	if cfg.Height == nil {
		cfg.Height = rand.IntN
	}
	if cfg.NewBatch == nil {
		cfg.NewBatch = func() string { return uuid.NewString() }
	}
	return &galleryService{
		store:       store,
		images:      images,
		pageSize:    cfg.PageSize,
		searchLimit: cfg.SearchLimit,
		height:      cfg.Height,
		newBatch:    cfg.NewBatch,
		logger:      logger,
	}
}

func (s *galleryService) PageSize() int {
	return s.pageSize
}

// FetchInitial fetches the first page.
//
// HasMore is true when the page came back full. A store holding exactly one
// page therefore reports HasMore until the next fetch returns empty.
func (s *galleryService) FetchInitial(ctx context.Context) (*GalleryPage, error) {
	const op = "gallery.fetch_initial"

	artworks, err := s.store.FirstPage(ctx, s.pageSize)
	metrics.GalleryFetched("initial", err)
	if err != nil {
		s.logger.Error("failed to fetch initial gallery page", "error", err, "op", op)
		return nil, domain.Unavailable(err, op, domain.MsgLoadFailed)
	}

	items, batch := s.Layout(artworks)
	return &GalleryPage{
		Artworks: artworks,
		Items:    items,
		HasMore:  len(artworks) == s.pageSize,
		Batch:    batch,
	}, nil
}

// FetchMore fetches the page after loaded.
//
// HasMore is computed on the page size before de-duplication, then forced
// false when the page made no progress: every artwork was already loaded, or
// the page did not advance past the cursor.
func (s *galleryService) FetchMore(ctx context.Context, loaded []domain.Artwork) (*GalleryPage, error) {
	const op = "gallery.fetch_more"

	cursor := domain.CursorOf(loaded)
	if cursor.IsZero() {
		return nil, domain.ErrNoCursor
	}

	raw, err := s.store.NextPage(ctx, cursor, s.pageSize)
	metrics.GalleryFetched("more", err)
	if err != nil {
		s.logger.Error("failed to fetch more gallery data", "error", err, "op", op, "cursor", cursor)
		return nil, domain.Unavailable(err, op, domain.MsgLoadMoreFailed)
	}

	fresh := Dedup(loaded, raw)
	if dropped := len(raw) - len(fresh); dropped > 0 {
		metrics.GalleryDuplicatesDropped.Add(float64(dropped))
		s.logger.Debug("dropped duplicate artworks", "count", dropped, "cursor", cursor)
	}

	hasMore := len(raw) == s.pageSize
	if len(raw) > 0 && len(fresh) == 0 {
		hasMore = false
	}
	if len(raw) > 0 && !domain.Cursor(raw[len(raw)-1].ID).After(cursor) {
		s.logger.Warn("page did not advance past cursor", "cursor", cursor, "last", raw[len(raw)-1].ID)
		hasMore = false
	}

	items, batch := s.Layout(fresh)
	return &GalleryPage{
		Artworks: fresh,
		Items:    items,
		HasMore:  hasMore,
		Batch:    batch,
		Cursor:   cursor,
	}, nil
}

// Count returns the total number of artworks, or 0 on failure.
func (s *galleryService) Count(ctx context.Context) int {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count artworks", "error", err)
		return 0
	}
	return n
}

// Search returns artworks whose title or tags start with term.
func (s *galleryService) Search(ctx context.Context, term string) []domain.Artwork {
	artworks, err := s.store.Search(ctx, term, s.searchLimit)
	if err != nil {
		s.logger.Error("failed to search artworks", "error", err, "term", term)
		return nil
	}
	return artworks
}

// Layout converts artworks into layout items tagged with a fresh batch.
// Artworks without images produce no item.
func (s *galleryService) Layout(artworks []domain.Artwork) ([]domain.LayoutItem, string) {
	batch := s.newBatch()
	items := make([]domain.LayoutItem, 0, len(artworks))

	for i, a := range artworks {
		if !a.HasImages() {
			continue
		}
		img, err := s.images.URL(a.Images[0].AssetRef, content.ImageOptions{
			Width:   domain.LayoutImageWidth,
			Quality: domain.LayoutImageQuality,
		})
		if err != nil {
			s.logger.Warn("skipping artwork with unusable image", "artwork_id", a.ID, "error", err)
			continue
		}
		items = append(items, domain.LayoutItem{
			ID:        domain.LayoutItemID(a.ID, batch, i),
			ArtworkID: a.ID,
			Slug:      a.Slug,
			Title:     a.DisplayTitle(),
			Image:     img,
			URL:       a.Path(),
			Height:    domain.LayoutMinHeight + s.height(domain.LayoutHeightBand),
		})
	}
	return items, batch
}

// Dedup returns the artworks in page whose identity is not in loaded,
// preserving page order. Repeats within page are also dropped.
func Dedup(loaded, page []domain.Artwork) []domain.Artwork {
	seen := make(map[string]struct{}, len(loaded)+len(page))
	for _, a := range loaded {
		seen[a.ID] = struct{}{}
	}

	fresh := make([]domain.Artwork, 0, len(page))
	for _, a := range page {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		fresh = append(fresh, a)
	}
	return fresh
}
