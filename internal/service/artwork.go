package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/youkai/internal/content"
	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/query"
)

// Site-wide metadata defaults.
const (
	SiteName           = "Studio Youkai"
	DefaultDescription = "Original artwork from Studio Youkai"
)

// Related artwork thumbnails.
const (
	relatedImageWidth   = 400
	relatedImageHeight  = 300
	relatedImageQuality = 80
)

// =============================================================================
// Interface Definition
// =============================================================================

// ArtworkService resolves artwork detail pages.
type ArtworkService interface {
	// BySlug returns the detail data for slug. Returns a not_found error
	// when no artwork has that slug.
	BySlug(ctx context.Context, slug string) (*ArtworkDetail, error)

	// Slugs returns every slug that resolves to a detail page.
	// Returns an empty list on failure.
	Slugs(ctx context.Context) []string

	// Exists reports whether slug resolves to an artwork.
	Exists(ctx context.Context, slug string) bool
}

// ArtworkDetail is everything a detail page or overlay renders.
type ArtworkDetail struct {
	Artwork    domain.Artwork
	Images     []domain.ProcessedImage
	Related    []RelatedArtwork
	Navigation domain.Navigation
	Meta       PageMeta
}

// RelatedArtwork is a related artwork with its thumbnail.
type RelatedArtwork struct {
	Title string
	Path  string
	Image string
	Alt   string
}

// PageMeta holds document metadata for an HTML page.
type PageMeta struct {
	Title         string
	Description   string
	Keywords      string
	OGTitle       string
	OGType        string
	Image         *domain.ProcessedImage
	PublishedTime time.Time
	Canonical     string
}

// =============================================================================
// Implementation
// =============================================================================

type artworkService struct {
	store      query.Store
	images     ImageURLBuilder
	navigation NavigationService
	logger     *slog.Logger
}

// NewArtworkService creates a new ArtworkService.
func NewArtworkService(store query.Store, images ImageURLBuilder, navigation NavigationService, logger *slog.Logger) ArtworkService {
	return &artworkService{
		store:      store,
		images:     images,
		navigation: navigation,
		logger:     logger,
	}
}

// BySlug loads the artwork, its processed images, related artworks and
// neighbors. Related and neighbor failures degrade to empty sections.
func (s *artworkService) BySlug(ctx context.Context, slug string) (*ArtworkDetail, error) {
	const op = "artwork.by_slug"

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.NotFound(op, "sketch", slug)
	}

	artwork, err := s.store.BySlug(ctx, slug)
	if err != nil {
		s.logger.Error("failed to fetch artwork", "error", err, "op", op, "slug", slug)
		return nil, domain.Unavailable(err, op, domain.MsgArtworkFailed)
	}
	if artwork == nil {
		return nil, domain.NotFound(op, "sketch", slug)
	}

	images := s.processImages(artwork.Images)

	detail := &ArtworkDetail{
		Artwork:    *artwork,
		Images:     images,
		Related:    s.related(ctx, artwork),
		Navigation: s.navigation.Neighbors(ctx, artwork.ID),
		Meta:       ArtworkMeta(artwork, images),
	}
	return detail, nil
}

// Slugs returns every slug that resolves to a detail page.
func (s *artworkService) Slugs(ctx context.Context) []string {
	slugs, err := s.store.Slugs(ctx)
	if err != nil {
		s.logger.Error("failed to fetch artwork slugs", "error", err)
		return []string{}
	}

	out := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if strings.TrimSpace(slug) != "" {
			out = append(out, slug)
		}
	}
	return out
}

// Exists reports whether slug resolves to an artwork. Failures count as absent.
func (s *artworkService) Exists(ctx context.Context, slug string) bool {
	artwork, err := s.store.BySlug(ctx, slug)
	if err != nil {
		s.logger.Error("failed to check artwork existence", "error", err, "slug", slug)
		return false
	}
	return artwork != nil
}

func (s *artworkService) processImages(refs []domain.ImageRef) []domain.ProcessedImage {
	images := make([]domain.ProcessedImage, 0, len(refs))
	for i, ref := range refs {
		url, err := s.images.URL(ref.AssetRef, content.ImageOptions{
			Width:   domain.DetailImageWidth,
			Quality: domain.DetailImageQuality,
		})
		if err != nil {
			s.logger.Warn("skipping unusable image", "asset_ref", ref.AssetRef, "error", err)
			continue
		}
		alt := ref.Alt
		if alt == "" {
			alt = fmt.Sprintf("Sketch image %d", i+1)
		}
		images = append(images, domain.ProcessedImage{
			URL:     url,
			Alt:     alt,
			Caption: ref.Caption,
			Width:   domain.DetailImageWidth,
			Height:  domain.DetailImageHeight,
		})
	}
	return images
}

func (s *artworkService) related(ctx context.Context, artwork *domain.Artwork) []RelatedArtwork {
	if len(artwork.Tags) == 0 {
		return nil
	}

	artworks, err := s.store.Related(ctx, artwork.Tags, artwork.ID, query.RelatedLimit)
	if err != nil {
		s.logger.Error("failed to fetch related artworks", "error", err, "artwork_id", artwork.ID)
		return nil
	}

	related := make([]RelatedArtwork, 0, len(artworks))
	for _, a := range artworks {
		r := RelatedArtwork{
			Title: a.DisplayTitle(),
			Path:  a.Path(),
		}
		if a.HasImages() {
			url, err := s.images.URL(a.Images[0].AssetRef, content.ImageOptions{
				Width:   relatedImageWidth,
				Height:  relatedImageHeight,
				Quality: relatedImageQuality,
			})
			if err == nil {
				r.Image = url
				r.Alt = a.Images[0].Alt
			}
		}
		if r.Alt == "" {
			r.Alt = r.Title
		}
		related = append(related, r)
	}
	return related
}

// ArtworkMeta builds the page metadata for an artwork detail page.
func ArtworkMeta(a *domain.Artwork, images []domain.ProcessedImage) PageMeta {
	description := strings.TrimSpace(a.Description)
	if description == "" {
		description = DefaultDescription
	}

	meta := PageMeta{
		Title:         a.DisplayTitle() + " | " + SiteName,
		Description:   description,
		Keywords:      strings.Join(a.Tags, ", "),
		OGTitle:       a.DisplayTitle(),
		OGType:        "article",
		PublishedTime: a.CreatedAt,
		Canonical:     a.Path(),
	}
	if len(images) > 0 {
		first := images[0]
		meta.Image = &first
	}
	return meta
}

// NotFoundMeta is the metadata for a missing artwork.
func NotFoundMeta() PageMeta {
	return PageMeta{
		Title:       "Sketch Not Found | " + SiteName,
		Description: "The requested sketch could not be found.",
		OGType:      "website",
	}
}
