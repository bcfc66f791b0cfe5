package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/gallery"
	"github.com/DukeRupert/youkai/internal/middleware"
	"github.com/DukeRupert/youkai/internal/service"
	"github.com/DukeRupert/youkai/internal/site"
	"github.com/DukeRupert/youkai/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testArtwork(i int) domain.Artwork {
	return domain.Artwork{
		ID:     fmt.Sprintf("art-%03d", i),
		Title:  fmt.Sprintf("Sketch %d", i),
		Slug:   fmt.Sprintf("sketch-%d", i),
		Tags:   []string{"ink"},
		Images: []domain.ImageRef{{AssetRef: fmt.Sprintf("image-art%03d-600x900-jpg", i)}},
	}
}

func layoutItems(artworks []domain.Artwork, batch string) []domain.LayoutItem {
	items := make([]domain.LayoutItem, 0, len(artworks))
	for i, a := range artworks {
		items = append(items, domain.LayoutItem{
			ID:        domain.LayoutItemID(a.ID, batch, i),
			ArtworkID: a.ID,
			Slug:      a.Slug,
			Title:     a.DisplayTitle(),
			Image:     "https://cdn.example/" + a.ID + ".jpg",
			URL:       a.Path(),
			Height:    400,
		})
	}
	return items
}

// fakeGallery serves fixed pages from an ordered artwork list.
type fakeGallery struct {
	mu         sync.Mutex
	artworks   []domain.Artwork
	pageSize   int
	initialErr error
	moreErr    error
	count      int
	batches    int
}

func newFakeGallery(n, pageSize int) *fakeGallery {
	artworks := make([]domain.Artwork, n)
	for i := range artworks {
		artworks[i] = testArtwork(i)
	}
	return &fakeGallery{artworks: artworks, pageSize: pageSize, count: n}
}

func (g *fakeGallery) page(from int) *service.GalleryPage {
	g.mu.Lock()
	g.batches++
	batch := fmt.Sprintf("b%d", g.batches)
	g.mu.Unlock()

	end := from + g.pageSize
	if end > len(g.artworks) {
		end = len(g.artworks)
	}
	artworks := append([]domain.Artwork(nil), g.artworks[from:end]...)
	return &service.GalleryPage{
		Artworks: artworks,
		Items:    layoutItems(artworks, batch),
		HasMore:  end < len(g.artworks),
		Batch:    batch,
	}
}

func (g *fakeGallery) FetchInitial(ctx context.Context) (*service.GalleryPage, error) {
	if g.initialErr != nil {
		return nil, g.initialErr
	}
	return g.page(0), nil
}

func (g *fakeGallery) FetchMore(ctx context.Context, loaded []domain.Artwork) (*service.GalleryPage, error) {
	if len(loaded) == 0 {
		return nil, domain.ErrNoCursor
	}
	if g.moreErr != nil {
		return nil, g.moreErr
	}
	return g.page(len(loaded)), nil
}

func (g *fakeGallery) Count(ctx context.Context) int { return g.count }

func (g *fakeGallery) Search(ctx context.Context, term string) []domain.Artwork {
	var out []domain.Artwork
	for _, a := range g.artworks {
		if strings.HasPrefix(strings.ToLower(a.Title), strings.ToLower(term)) {
			out = append(out, a)
		}
	}
	return out
}

func (g *fakeGallery) Layout(artworks []domain.Artwork) ([]domain.LayoutItem, string) {
	return layoutItems(artworks, "layout"), "layout"
}

func (g *fakeGallery) PageSize() int { return g.pageSize }

// fakeArtworks resolves details from a fixed slug map.
type fakeArtworks struct {
	details map[string]*service.ArtworkDetail
	err     error
}

func newFakeArtworks(artworks ...domain.Artwork) *fakeArtworks {
	f := &fakeArtworks{details: map[string]*service.ArtworkDetail{}}
	for i := range artworks {
		a := artworks[i]
		images := []domain.ProcessedImage{{URL: "https://cdn.example/" + a.ID + "-1200.jpg", Alt: "Sketch image 1", Width: 1200, Height: 800}}
		detail := &service.ArtworkDetail{
			Artwork: a,
			Images:  images,
			Meta:    service.ArtworkMeta(&a, images),
		}
		if i > 0 {
			detail.Navigation.Previous = artworks[i-1].Summary()
		}
		if i < len(artworks)-1 {
			detail.Navigation.Next = artworks[i+1].Summary()
		}
		f.details[a.Slug] = detail
	}
	return f
}

func (f *fakeArtworks) BySlug(ctx context.Context, slug string) (*service.ArtworkDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[slug]
	if !ok {
		return nil, domain.NotFound("artwork.by_slug", "sketch", slug)
	}
	return d, nil
}

func (f *fakeArtworks) Slugs(ctx context.Context) []string {
	slugs := make([]string, 0, len(f.details))
	for slug := range f.details {
		slugs = append(slugs, slug)
	}
	return slugs
}

func (f *fakeArtworks) Exists(ctx context.Context, slug string) bool {
	_, ok := f.details[slug]
	return ok
}

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(RendererConfig{FS: web.Templates(), Logger: discardLogger()})
	require.NoError(t, err)
	return r
}

func testLayout(t *testing.T) Layout {
	t.Helper()
	c, err := site.Default()
	require.NoError(t, err)
	return NewLayout(c, "https://youkai.example/")
}

// galleryFixture wires a GalleryHandler onto a mux.
type galleryFixture struct {
	mux      *http.ServeMux
	registry *gallery.Registry
	gallery  *fakeGallery
	artworks *fakeArtworks
}

func noLimit(next http.Handler) http.Handler { return next }

// withLimits mounts the gallery behind the production rate limiters.
func withLimits(t *testing.T) GalleryLimits {
	t.Helper()
	limiter := func(n int) func(http.Handler) http.Handler {
		return middleware.NewRateLimitMiddleware(middleware.NewRateLimiter(n, time.Minute), discardLogger()).Limit
	}
	return GalleryLimits{
		Search: limiter(SearchRequestsPerMinute),
		Scroll: limiter(ScrollRequestsPerMinute),
	}
}

func newGalleryFixture(t *testing.T, g *fakeGallery, limits ...GalleryLimits) *galleryFixture {
	t.Helper()
	artworks := newFakeArtworks(g.artworks...)
	registry := gallery.NewRegistry(g, gallery.Config{Threshold: 1000}, time.Minute, discardLogger())
	t.Cleanup(registry.Close)

	l := GalleryLimits{Search: noLimit, Scroll: noLimit}
	if len(limits) > 0 {
		l = limits[0]
	}

	h := NewGalleryHandler(registry, g, artworks, testRenderer(t), testLayout(t), discardLogger())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, l)

	return &galleryFixture{mux: mux, registry: registry, gallery: g, artworks: artworks}
}
