package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/youkai/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type slugs []string

func (s slugs) Slugs(ctx context.Context) []string { return s }

func siteMux() *http.ServeMux {
	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, body)
		}
	}
	mux.HandleFunc("GET /{$}", page("<h1>home</h1>"))
	mux.HandleFunc("GET /about", page("<h1>about</h1>"))
	mux.HandleFunc("GET /sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = io.WriteString(w, "<urlset/>")
	})
	mux.HandleFunc("GET /manifest.webmanifest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/manifest+json")
		_, _ = io.WriteString(w, "{}")
	})
	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "User-agent: *\n")
	})
	mux.HandleFunc("GET /icons/{file}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, r.PathValue("file"))
	})
	mux.HandleFunc("GET /sketch/{slug}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("slug") == "broken" {
			http.Error(w, "boom", http.StatusServiceUnavailable)
			return
		}
		page("<h1>" + r.PathValue("slug") + "</h1>")(w, r)
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "<h1>not found</h1>")
	})
	return mux
}

func readFile(t *testing.T, dir, key string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	return string(b)
}

func TestExporter_Run(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: dir}, discardLogger())
	require.NoError(t, err)

	e := New(siteMux(), slugs{"fox", "broken", "owl"}, store, Config{Concurrency: 2}, discardLogger())

	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, summary.Written, 10)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "/sketch/broken", summary.Failures[0].Path)
	assert.True(t, IsStatusError(summary.Failures[0].Err))
	assert.Equal(t, "status", summary.Failures[0].Reason)

	assert.Equal(t, "<h1>home</h1>", readFile(t, dir, "index.html"))
	assert.Equal(t, "<h1>about</h1>", readFile(t, dir, "about/index.html"))
	assert.Equal(t, "<h1>fox</h1>", readFile(t, dir, "sketch/fox/index.html"))
	assert.Equal(t, "<h1>owl</h1>", readFile(t, dir, "sketch/owl/index.html"))
	assert.Equal(t, "<urlset/>", readFile(t, dir, "sitemap.xml"))
	assert.Equal(t, "icon-512.png", readFile(t, dir, "icons/icon-512.png"))
	assert.Equal(t, "<h1>not found</h1>", readFile(t, dir, storage.NotFoundKey))

	_, err = os.Stat(filepath.Join(dir, "sketch", "broken"))
	assert.True(t, os.IsNotExist(err))
}

func TestExporter_Run_StorageFailures(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: dir}, discardLogger())
	require.NoError(t, err)

	// Page and 404 bodies exceed 16 bytes, icon bodies do not.
	e := New(siteMux(), slugs{"a-very-long-slug"}, store, Config{IconSizes: []int{64}, MaxDocumentSize: 16}, discardLogger())

	summary, err := e.Run(context.Background())

	require.NoError(t, err)
	reasons := map[string]string{}
	for _, f := range summary.Failures {
		reasons[f.Path] = f.Reason
	}
	assert.Equal(t, "too_large", reasons["/sketch/a-very-long-slug"])
	assert.Equal(t, "too_large", reasons[NotFoundPath])
	assert.NotContains(t, reasons, "/icons/icon-64.png")

	_, err = os.Stat(filepath.Join(dir, "sketch", "a-very-long-slug", "index.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "", FailureReason(nil))
	assert.Equal(t, "status", FailureReason(&StatusError{Path: "/", Status: 500, Want: 200}))
	assert.Equal(t, "access_denied", FailureReason(&storage.StorageError{Op: "Put", Key: "index.html", Err: storage.ErrAccessDenied}))
}

func TestExporter_Paths(t *testing.T) {
	e := New(siteMux(), slugs{"fox"}, nil, Config{IconSizes: []int{64}, ExtraPaths: []string{"/press"}}, discardLogger())

	assert.Equal(t, []string{
		"/", "/about", "/sitemap.xml", "/manifest.webmanifest", "/robots.txt",
		"/icons/icon-64.png", "/press", "/sketch/fox",
	}, e.Paths(context.Background()))
}

func TestExporter_Canceled(t *testing.T) {
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, discardLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := New(siteMux(), slugs{"fox"}, store, Config{}, discardLogger()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Written)
}

func TestGenerateIcons(t *testing.T) {
	src := imaging.New(400, 200, color.NRGBA{R: 255, A: 255})
	bg := color.NRGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}

	icons, err := GenerateIcons(src, DefaultIconSizes, bg)

	require.NoError(t, err)
	require.Len(t, icons, 2)
	for _, size := range DefaultIconSizes {
		img, err := imaging.Decode(bytes.NewReader(icons[size]))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, size, size), img.Bounds())

		// Wide source: top edge is background, center is the image
		r, g, b, _ := img.At(size/2, 0).RGBA()
		assert.Equal(t, [3]uint32{0xf8, 0xfa, 0xfc}, [3]uint32{r >> 8, g >> 8, b >> 8})
		r, g, b, _ = img.At(size/2, size/2).RGBA()
		assert.Equal(t, [3]uint32{0xff, 0, 0}, [3]uint32{r >> 8, g >> 8, b >> 8})
	}
}

func TestGenerateIcons_Invalid(t *testing.T) {
	_, err := GenerateIcons(nil, DefaultIconSizes, color.Transparent)
	assert.Error(t, err)

	_, err = GenerateIcons(imaging.New(10, 10, color.Black), []int{0}, color.Transparent)
	assert.Error(t, err)
}

func TestDecodeIconSource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(32, 16, color.White), imaging.PNG))

	img, err := DecodeIconSource(&buf)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())

	_, err = DecodeIconSource(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#f8fafc", color.NRGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}, false},
		{"#1f2937", color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}, false},
		{"#fff", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false},
		{"", color.NRGBA{}, false},
		{"f8fafc", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
