package query

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockStore is a testify mock of Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FirstPage(ctx context.Context, limit int) ([]domain.Artwork, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Artwork), args.Error(1)
}

func (m *mockStore) NextPage(ctx context.Context, cursor domain.Cursor, limit int) ([]domain.Artwork, error) {
	args := m.Called(ctx, cursor, limit)
	return args.Get(0).([]domain.Artwork), args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) Search(ctx context.Context, term string, limit int) ([]domain.Artwork, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]domain.Artwork), args.Error(1)
}

func (m *mockStore) BySlug(ctx context.Context, slug string) (*domain.Artwork, error) {
	args := m.Called(ctx, slug)
	a, _ := args.Get(0).(*domain.Artwork)
	return a, args.Error(1)
}

func (m *mockStore) Slugs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) Related(ctx context.Context, tags []string, excludeID string, limit int) ([]domain.Artwork, error) {
	args := m.Called(ctx, tags, excludeID, limit)
	return args.Get(0).([]domain.Artwork), args.Error(1)
}

func (m *mockStore) Previous(ctx context.Context, id string) (*domain.ArtworkSummary, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.ArtworkSummary)
	return s, args.Error(1)
}

func (m *mockStore) Next(ctx context.Context, id string) (*domain.ArtworkSummary, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.ArtworkSummary)
	return s, args.Error(1)
}

func (m *mockStore) All(ctx context.Context) ([]domain.Artwork, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Artwork), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCached_Memory_CountHitsStoreOnce(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Count", ctx).Return(7, nil).Once()

	cached := NewCached(store, NewMemoryCache(time.Minute, time.Minute), time.Minute, discardLogger())

	for i := 0; i < 3; i++ {
		n, err := cached.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	}
	store.AssertExpectations(t)
}

func TestCached_PagesPassThrough(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	page := []domain.Artwork{{ID: "a"}}
	store.On("FirstPage", ctx, 12).Return(page, nil).Twice()

	cached := NewCached(store, NewMemoryCache(time.Minute, time.Minute), time.Minute, discardLogger())

	for i := 0; i < 2; i++ {
		got, err := cached.FirstPage(ctx, 12)
		require.NoError(t, err)
		assert.Equal(t, page, got)
	}
	store.AssertExpectations(t)
}

func TestCached_BySlug_MissNotCached(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("BySlug", ctx, "ghost").Return(nil, nil).Twice()

	cached := NewCached(store, NewMemoryCache(time.Minute, time.Minute), time.Minute, discardLogger())

	for i := 0; i < 2; i++ {
		got, err := cached.BySlug(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	store.AssertExpectations(t)
}

func TestRedisCache_Count(t *testing.T) {
	ctx := context.Background()
	db, rmock := redismock.NewClientMock()
	store := new(mockStore)
	store.On("Count", ctx).Return(3, nil).Once()

	cached := NewCached(store, NewRedisCache(db), time.Minute, discardLogger())
	key := cacheKey("count")
	encoded, _ := json.Marshal(3)

	t.Run("miss loads and stores", func(t *testing.T) {
		rmock.ExpectGet(key).RedisNil()
		rmock.ExpectSet(key, encoded, time.Minute).SetVal("OK")

		n, err := cached.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("hit skips store", func(t *testing.T) {
		rmock.ExpectGet(key).SetVal(string(encoded))

		n, err := cached.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("read error falls through", func(t *testing.T) {
		store.On("Count", ctx).Return(4, nil).Once()
		rmock.ExpectGet(key).SetErr(redis.ErrClosed)
		rmock.ExpectSet(key, []byte("4"), time.Minute).SetVal("OK")

		n, err := cached.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	assert.NoError(t, rmock.ExpectationsWereMet())
	store.AssertExpectations(t)
}
