package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DukeRupert/youkai/internal/content"
	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighbors(t *testing.T) {
	store := newMemStore(3)
	nav := NewNavigationService(store, discardLogger())

	tests := []struct {
		name     string
		id       string
		wantPrev string
		wantNext string
	}{
		{"first item", "art-000", "", "art-001"},
		{"middle item", "art-001", "art-000", "art-002"},
		{"last item", "art-002", "art-001", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nav.Neighbors(context.Background(), tt.id)
			if tt.wantPrev == "" {
				assert.Nil(t, got.Previous)
			} else {
				require.NotNil(t, got.Previous)
				assert.Equal(t, tt.wantPrev, got.Previous.ID)
			}
			if tt.wantNext == "" {
				assert.Nil(t, got.Next)
			} else {
				require.NotNil(t, got.Next)
				assert.Equal(t, tt.wantNext, got.Next.ID)
			}
		})
	}
}

func TestNeighbors_FailureYieldsEmpty(t *testing.T) {
	store := newMemStore(3)
	store.err["Next"] = errors.New("store unavailable")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	nav := NewNavigationService(store, logger)

	got := nav.Neighbors(context.Background(), "art-001")
	assert.Nil(t, got.Previous, "a successful side is discarded when the other fails")
	assert.Nil(t, got.Next)
	assert.Contains(t, buf.String(), "failed to resolve artwork navigation")
}

func newTestArtworkService(store *memStore) ArtworkService {
	return NewArtworkService(store, content.NewImageBuilder("proj", "production"),
		NewNavigationService(store, discardLogger()), discardLogger())
}

func TestArtworkService_BySlug(t *testing.T) {
	store := newMemStoreOf([]domain.Artwork{
		{ID: "a", Title: "Fox", Slug: "fox", Tags: []string{"ink"}, Images: []domain.ImageRef{
			{AssetRef: "image-a1-1200x800-jpg", Alt: "A fox"},
			{AssetRef: "image-a2-1200x800-jpg"},
		}},
		{ID: "b", Slug: "crow", Tags: []string{"ink"}, Images: []domain.ImageRef{{AssetRef: "image-b-800x600-png"}}},
		{ID: "c", Slug: "moth", Tags: []string{"paint"}},
	})
	svc := newTestArtworkService(store)

	detail, err := svc.BySlug(context.Background(), "fox")
	require.NoError(t, err)

	assert.Equal(t, "a", detail.Artwork.ID)
	require.Len(t, detail.Images, 2)
	assert.Equal(t, "A fox", detail.Images[0].Alt)
	assert.Equal(t, "Sketch image 2", detail.Images[1].Alt)
	assert.Contains(t, detail.Images[0].URL, "w=1200")
	assert.Contains(t, detail.Images[0].URL, "q=90")
	assert.Equal(t, domain.DetailImageHeight, detail.Images[0].Height)

	require.Len(t, detail.Related, 1)
	assert.Equal(t, "/sketch/crow", detail.Related[0].Path)
	assert.Equal(t, domain.UntitledArtwork, detail.Related[0].Title)
	assert.Contains(t, detail.Related[0].Image, "w=400")

	assert.Nil(t, detail.Navigation.Previous)
	require.NotNil(t, detail.Navigation.Next)
	assert.Equal(t, "crow", detail.Navigation.Next.Slug)

	assert.Equal(t, "Fox | Studio Youkai", detail.Meta.Title)
	assert.Equal(t, DefaultDescription, detail.Meta.Description)
	assert.Equal(t, "ink", detail.Meta.Keywords)
	require.NotNil(t, detail.Meta.Image)
	assert.Equal(t, detail.Images[0].URL, detail.Meta.Image.URL)
}

func TestArtworkService_BySlug_Errors(t *testing.T) {
	store := newMemStore(2)
	svc := newTestArtworkService(store)

	_, err := svc.BySlug(context.Background(), "missing")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	_, err = svc.BySlug(context.Background(), "  ")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	store.err["BySlug"] = errors.New("down")
	_, err = svc.BySlug(context.Background(), "sketch-0")
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	assert.False(t, svc.Exists(context.Background(), "sketch-0"))
}

func TestArtworkService_Slugs(t *testing.T) {
	store := newMemStoreOf([]domain.Artwork{{ID: "a", Slug: "fox"}, {ID: "b"}, {ID: "c", Slug: "owl"}})
	svc := newTestArtworkService(store)

	assert.Equal(t, []string{"fox", "owl"}, svc.Slugs(context.Background()))
	assert.True(t, svc.Exists(context.Background(), "owl"))
	assert.False(t, svc.Exists(context.Background(), "cat"))

	store.err["Slugs"] = errors.New("down")
	assert.Empty(t, svc.Slugs(context.Background()))
}
