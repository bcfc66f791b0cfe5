package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DukeRupert/youkai/internal/content"
	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGallery(store *memStore) GalleryService {
	batches := 0
	return NewGalleryService(store, content.NewImageBuilder("proj", "production"), GalleryConfig{
		PageSize: 12,
		NewBatch: func() string {
			batches++
			return fmt.Sprintf("batch%d", batches)
		},
	}, discardLogger())
}

func TestFetch_ThirtyItems(t *testing.T) {
	ctx := context.Background()
	svc := newTestGallery(newMemStore(30))

	first, err := svc.FetchInitial(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Items, 12)
	assert.True(t, first.HasMore)
	loaded := first.Artworks

	second, err := svc.FetchMore(ctx, loaded)
	require.NoError(t, err)
	assert.Len(t, second.Items, 12)
	assert.True(t, second.HasMore)
	loaded = append(loaded, second.Artworks...)
	assert.Len(t, loaded, 24)

	third, err := svc.FetchMore(ctx, loaded)
	require.NoError(t, err)
	assert.Len(t, third.Items, 6)
	assert.False(t, third.HasMore)
	loaded = append(loaded, third.Artworks...)
	assert.Len(t, loaded, 30)
}

func TestFetch_ExactlyOnePage(t *testing.T) {
	ctx := context.Background()
	svc := newTestGallery(newMemStore(12))

	first, err := svc.FetchInitial(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Items, 12)
	assert.True(t, first.HasMore, "a full page reports more even when none remain")

	next, err := svc.FetchMore(ctx, first.Artworks)
	require.NoError(t, err)
	assert.Empty(t, next.Items)
	assert.False(t, next.HasMore)
}

func TestFetchMore_NoCursor(t *testing.T) {
	store := newMemStore(5)
	svc := newTestGallery(store)

	_, err := svc.FetchMore(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsNoCursor(err))
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, 0, store.count("NextPage"))
}

func TestFetchInitial_Failure(t *testing.T) {
	store := newMemStore(5)
	store.err["FirstPage"] = errors.New("connection refused")
	svc := newTestGallery(store)

	_, err := svc.FetchInitial(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	assert.Equal(t, domain.MsgLoadFailed, domain.ErrorMessage(err))
	assert.Equal(t, 1, store.count("FirstPage"), "no automatic retry")
}

func TestFetchMore_Failure(t *testing.T) {
	store := newMemStore(30)
	store.err["NextPage"] = errors.New("timeout")
	svc := newTestGallery(store)

	_, err := svc.FetchMore(context.Background(), []domain.Artwork{{ID: "art-000"}})
	require.Error(t, err)
	assert.Equal(t, domain.MsgLoadMoreFailed, domain.ErrorMessage(err))
}

func TestFetchMore_Dedup(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(30)
	svc := newTestGallery(store)

	first, err := svc.FetchInitial(ctx)
	require.NoError(t, err)
	loaded := first.Artworks

	// The store replays the last two loaded artworks ahead of the real page,
	// as happens when content is reordered between fetches.
	store.nextPage = func(cursor domain.Cursor, limit int) []domain.Artwork {
		replay := append([]domain.Artwork(nil), loaded[len(loaded)-2:]...)
		var after []domain.Artwork
		for _, a := range store.artworks {
			if domain.Cursor(a.ID).After(cursor) {
				after = append(after, a)
			}
		}
		return page(append(replay, after...), limit)
	}

	more, err := svc.FetchMore(ctx, loaded)
	require.NoError(t, err)
	assert.Len(t, more.Artworks, 10)
	assert.True(t, more.HasMore, "hasMore counts the page before de-duplication")

	seen := map[string]bool{}
	for _, a := range append(loaded, more.Artworks...) {
		assert.False(t, seen[a.ID], "artwork %s loaded twice", a.ID)
		seen[a.ID] = true
	}

	ids := map[string]bool{}
	for _, item := range append(first.Items, more.Items...) {
		assert.False(t, ids[item.ID], "layout item %s rendered twice", item.ID)
		ids[item.ID] = true
	}
}

func TestFetchMore_AllDuplicatesTerminates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(12)
	svc := newTestGallery(store)

	first, err := svc.FetchInitial(ctx)
	require.NoError(t, err)

	store.nextPage = func(domain.Cursor, int) []domain.Artwork {
		return page(store.artworks, 12)
	}

	more, err := svc.FetchMore(ctx, first.Artworks)
	require.NoError(t, err)
	assert.Empty(t, more.Artworks)
	assert.False(t, more.HasMore)
}

func TestFetchMore_MonotonicCursorAndTermination(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(100)
	svc := newTestGallery(store)

	first, err := svc.FetchInitial(ctx)
	require.NoError(t, err)
	loaded := first.Artworks
	hasMore := first.HasMore

	var prev domain.Cursor
	calls := 0
	for hasMore {
		calls++
		require.Less(t, calls, 100, "pagination did not terminate")

		more, err := svc.FetchMore(ctx, loaded)
		require.NoError(t, err)
		assert.True(t, more.Cursor.After(prev), "cursor %q not past %q", more.Cursor, prev)
		prev = more.Cursor

		loaded = append(loaded, more.Artworks...)
		hasMore = more.HasMore
	}
	assert.Len(t, loaded, 100)
}

func TestFetchMore_StalledPageTerminates(t *testing.T) {
	store := newMemStore(30)
	store.nextPage = func(domain.Cursor, int) []domain.Artwork {
		// A misbehaving store returning items before the cursor.
		return page(store.artworks[:12], 12)
	}
	svc := newTestGallery(store)

	loaded := []domain.Artwork{{ID: "zzz"}}
	more, err := svc.FetchMore(context.Background(), loaded)
	require.NoError(t, err)
	assert.False(t, more.HasMore)
}

func TestLayout(t *testing.T) {
	artworks := []domain.Artwork{
		{ID: "a", Slug: "fox", Images: []domain.ImageRef{{AssetRef: "image-a-600x900-jpg"}}},
		{ID: "b", Slug: "bare"},
		{ID: "c", Images: []domain.ImageRef{{AssetRef: "image-c-600x900-png"}}},
		{ID: "d", Images: []domain.ImageRef{{AssetRef: "broken"}}},
	}

	svc := NewGalleryService(newMemStore(0), content.NewImageBuilder("proj", "production"), GalleryConfig{
		Height:   func(n int) int { return n - 1 },
		NewBatch: func() string { return "b1" },
	}, discardLogger())

	items, batch := svc.Layout(artworks)
	require.Len(t, items, 2)
	assert.Equal(t, "b1", batch)

	assert.Equal(t, "a-b1-0", items[0].ID)
	assert.Equal(t, "/sketch/fox", items[0].URL)
	assert.True(t, strings.HasSuffix(items[0].Image, "a-600x900.jpg?q=80&w=600"), items[0].Image)
	assert.Equal(t, domain.LayoutMinHeight+domain.LayoutHeightBand-1, items[0].Height)

	assert.Equal(t, "c-b1-2", items[1].ID)
	assert.Equal(t, domain.PlaceholderPath, items[1].URL)
	assert.Equal(t, domain.UntitledArtwork, items[1].Title)
}

func TestLayout_HeightWithinBand(t *testing.T) {
	svc := newTestGallery(newMemStore(0))
	store := newMemStore(50)

	items, _ := svc.Layout(store.artworks)
	for _, item := range items {
		assert.GreaterOrEqual(t, item.Height, domain.LayoutMinHeight)
		assert.Less(t, item.Height, domain.LayoutMinHeight+domain.LayoutHeightBand)
	}
}

func TestCountAndSearch_DegradeOnFailure(t *testing.T) {
	store := newMemStore(3)
	svc := newTestGallery(store)

	assert.Equal(t, 3, svc.Count(context.Background()))
	assert.Len(t, svc.Search(context.Background(), "sketch 1"), 1)

	store.err["Count"] = errors.New("down")
	store.err["Search"] = errors.New("down")
	assert.Equal(t, 0, svc.Count(context.Background()))
	assert.Nil(t, svc.Search(context.Background(), "sketch"))
}

func TestDedup(t *testing.T) {
	loaded := []domain.Artwork{{ID: "a"}, {ID: "b"}}
	page := []domain.Artwork{{ID: "b"}, {ID: "c"}, {ID: "c"}, {ID: "d"}}

	got := Dedup(loaded, page)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "d", got[1].ID)

	assert.Empty(t, Dedup(loaded, loaded))
}
