package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/youkai/internal/site"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func newPublicMux(t *testing.T, health Pinger) (*http.ServeMux, *PublicHandler) {
	t.Helper()
	icons := map[int][]byte{
		512: []byte("\x89PNG-512"),
		192: []byte("\x89PNG-192"),
	}
	artworks := newFakeArtworks(testArtwork(0), testArtwork(1))
	h := NewPublicHandler(artworks, testRenderer(t), testLayout(t), icons, health, discardLogger())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	mux.HandleFunc("GET /", h.NotFound)
	return mux, h
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPublicHandler_Pages(t *testing.T) {
	mux, _ := newPublicMux(t, nil)

	tests := []struct {
		name     string
		path     string
		wantCode int
		want     []string
	}{
		{
			name:     "home",
			path:     "/",
			wantCode: http.StatusOK,
			want:     []string{"<title>Studio Youkai - Sketch Portfolio</title>", "Explore Gallery", `href="/gallery"`},
		},
		{
			name:     "about",
			path:     "/about",
			wantCode: http.StatusOK,
			want:     []string{"About | Studio Youkai", "Anshul Kothari"},
		},
		{
			name:     "unknown path",
			path:     "/no/such/page",
			wantCode: http.StatusNotFound,
			want:     []string{"Page Not Found", "Back to Home"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(mux, tt.path)
			require.Equal(t, tt.wantCode, rec.Code)
			for _, s := range tt.want {
				assert.Contains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestPublicHandler_Sitemap(t *testing.T) {
	mux, _ := newPublicMux(t, nil)

	rec := get(mux, "/sitemap.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://youkai.example/</loc>")
	assert.Contains(t, body, "<loc>https://youkai.example/gallery</loc>")
	assert.Contains(t, body, "<loc>https://youkai.example/sketch/sketch-0</loc>")
	assert.Contains(t, body, "<loc>https://youkai.example/sketch/sketch-1</loc>")
}

func TestBuildSitemap(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	body, err := BuildSitemap("https://a.example", []string{"fox"}, now)

	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<lastmod>2024-03-09</lastmod>")
	assert.Contains(t, out, "<loc>https://a.example/sketch/fox</loc>")
	assert.Contains(t, out, "<priority>0.6</priority>")
}

func TestPublicHandler_Manifest(t *testing.T) {
	mux, _ := newPublicMux(t, nil)

	rec := get(mux, "/manifest.webmanifest")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/manifest+json", rec.Header().Get("Content-Type"))

	var m webManifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "Studio Youkai - Art Portfolio", m.Name)
	assert.Equal(t, "standalone", m.Display)
	assert.Equal(t, "/", m.StartURL)
	require.Len(t, m.Icons, 2)
	assert.Equal(t, manifestIcon{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png"}, m.Icons[0])
	assert.Equal(t, "512x512", m.Icons[1].Sizes)
}

func TestBuildManifest_NoIcons(t *testing.T) {
	c, err := site.Default()
	require.NoError(t, err)

	body, err := BuildManifest(c, nil)

	require.NoError(t, err)
	assert.Contains(t, string(body), `"icons": null`)
}

func TestPublicHandler_Icon(t *testing.T) {
	mux, _ := newPublicMux(t, nil)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/icons/icon-192.png", http.StatusOK, "\x89PNG-192"},
		{"/icons/icon-512.png", http.StatusOK, "\x89PNG-512"},
		{"/icons/icon-64.png", http.StatusNotFound, ""},
		{"/icons/favicon.png", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(mux, tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
				assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestPublicHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		health   Pinger
		wantCode int
		wantBody string
	}{
		{"no checker", nil, http.StatusOK, `{"status":"ok"}`},
		{"store reachable", fakePinger{}, http.StatusOK, `{"status":"ok"}`},
		{"store down", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, _ := newPublicMux(t, tt.health)
			rec := get(mux, "/health")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
