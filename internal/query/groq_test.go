package query

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DukeRupert/youkai/internal/content"
	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingQuerier captures the last query and answers with a canned result.
type recordingQuerier struct {
	kind   string
	query  string
	params map[string]any
	result string
	err    error
}

func (q *recordingQuerier) Fetch(_ context.Context, kind, query string, params map[string]any, out any) error {
	q.kind, q.query, q.params = kind, query, params
	if q.err != nil {
		return q.err
	}
	if q.result == "" || q.result == "null" {
		return nil
	}
	return json.Unmarshal([]byte(q.result), out)
}

const twoArtworks = `[
  {"_id":"a","title":"Fox","images":[{"asset":{"_ref":"image-x-10x20-jpg","_type":"reference"},"alt":"fox"}],"tags":["animals"],"createdAt":"2024-03-01T10:00:00Z","featured":true,"slug":"fox"},
  {"_id":"b","images":[{"alt":"no asset"}],"createdAt":"2024-03-02"}
]`

func TestGROQ_FirstPage_DecodesDocuments(t *testing.T) {
	q := &recordingQuerier{result: twoArtworks}
	store := NewGROQ(q)

	got, err := store.FirstPage(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "first_page", q.kind)
	assert.Equal(t, 12, q.params["limit"])
	assert.Equal(t, domain.DocumentType, q.params["type"])

	fox := got[0]
	assert.Equal(t, "fox", fox.Slug)
	assert.True(t, fox.Featured)
	assert.Equal(t, []string{"animals"}, fox.Tags)
	require.Len(t, fox.Images, 1)
	assert.Equal(t, "image-x-10x20-jpg", fox.Images[0].AssetRef)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), fox.CreatedAt)

	assert.Empty(t, got[1].Images, "images without an asset are dropped")
	assert.Equal(t, 2024, got[1].CreatedAt.Year())
	assert.False(t, got[1].Navigable())
}

func TestGROQ_NextPage_BindsCursor(t *testing.T) {
	q := &recordingQuerier{result: `[]`}
	store := NewGROQ(q)

	got, err := store.NextPage(context.Background(), "b", 12)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "b", q.params["cursor"])
	assert.Contains(t, q.query, "_id > $cursor")
	assert.Contains(t, q.query, "order(_id asc)")
}

func TestGROQ_Search(t *testing.T) {
	q := &recordingQuerier{result: `[]`}
	store := NewGROQ(q)

	_, err := store.Search(context.Background(), "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, q.kind, "blank term must not query")

	_, err = store.Search(context.Background(), ` fox" || true `, 10)
	require.NoError(t, err)
	assert.Equal(t, `fox" || true*`, q.params["term"])
	assert.NotContains(t, q.query, "fox")
}

func TestGROQ_BySlug(t *testing.T) {
	q := &recordingQuerier{result: "null"}
	store := NewGROQ(q)

	got, err := store.BySlug(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	q.result = `{"_id":"a","title":"Fox","slug":"fox"}`
	got, err = store.BySlug(context.Background(), "fox")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "fox", q.params["slug"])
}

func TestGROQ_Neighbors(t *testing.T) {
	q := &recordingQuerier{result: `{"_id":"a","title":"Fox","slug":"fox"}`}
	store := NewGROQ(q)

	prev, err := store.Previous(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, &domain.ArtworkSummary{ID: "a", Title: "Fox", Slug: "fox"}, prev)
	assert.Contains(t, q.query, "_id < $id")
	assert.Contains(t, q.query, "order(_id desc)")

	q.result = "null"
	next, err := store.Next(context.Background(), "z")
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Contains(t, q.query, "_id > $id")
}

func TestGROQ_Related_NoTags(t *testing.T) {
	q := &recordingQuerier{}
	store := NewGROQ(q)

	got, err := store.Related(context.Background(), nil, "a", RelatedLimit)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, q.kind)
}

func TestGROQ_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	store := NewGROQ(&recordingQuerier{err: boom})

	_, err := store.Count(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = store.Slugs(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGROQ_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":42}`))
	}))
	defer srv.Close()

	client, err := content.NewClient(content.Config{ProjectID: "p", Dataset: "d", BaseURL: srv.URL},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	n, err := NewGROQ(client).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
