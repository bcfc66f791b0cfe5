// Package export writes a static copy of the site to object storage.
//
// Documents are produced by issuing in-process GET requests against the
// site's own http.Handler, so exported pages are byte-identical to what the
// server renders. The interactive gallery is not exported; it needs a live
// session.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DukeRupert/youkai/internal/metrics"
	"github.com/DukeRupert/youkai/internal/storage"
)

// NotFoundPath is requested to produce the exported 404 page.
const NotFoundPath = "/__export_not_found__"

// DefaultMaxDocumentSize caps a single exported document.
const DefaultMaxDocumentSize = 10 << 20

// SlugLister enumerates artwork slugs.
type SlugLister interface {
	Slugs(ctx context.Context) []string
}

// Config controls an export run.
type Config struct {
	// Concurrency bounds in-flight documents. Defaults to 4.
	Concurrency int

	// IconSizes lists the icon sizes to copy. Defaults to DefaultIconSizes.
	IconSizes []int

	// ExtraPaths are exported in addition to the built-in pages.
	ExtraPaths []string

	// MaxDocumentSize rejects larger documents. Defaults to
	// DefaultMaxDocumentSize.
	MaxDocumentSize int64
}

// Failure is a document that could not be exported.
type Failure struct {
	Path   string
	Reason string // "status", or a storage.Reason
	Err    error
}

// FailureReason classifies an export error.
func FailureReason(err error) string {
	if IsStatusError(err) {
		return "status"
	}
	return storage.Reason(err)
}

// Summary reports the outcome of a run.
type Summary struct {
	Written  []string // storage keys, in completion order
	Failures []Failure
	Duration time.Duration
}

// Exporter renders documents through the site handler and stores them.
type Exporter struct {
	site     http.Handler
	artworks SlugLister
	store    storage.Storage
	cfg      Config
	logger   *slog.Logger
}

// New creates an Exporter.
func New(site http.Handler, artworks SlugLister, store storage.Storage, cfg Config, logger *slog.Logger) *Exporter {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if len(cfg.IconSizes) == 0 {
		cfg.IconSizes = DefaultIconSizes
	}
	if cfg.MaxDocumentSize <= 0 {
		cfg.MaxDocumentSize = DefaultMaxDocumentSize
	}
	return &Exporter{
		site:     site,
		artworks: artworks,
		store:    store,
		cfg:      cfg,
		logger:   logger.With("component", "export"),
	}
}

// Paths returns every site path the run will export, in order.
func (e *Exporter) Paths(ctx context.Context) []string {
	paths := []string{"/", "/about", "/sitemap.xml", "/manifest.webmanifest", "/robots.txt"}
	for _, size := range e.cfg.IconSizes {
		paths = append(paths, "/"+storage.IconKey(size))
	}
	paths = append(paths, e.cfg.ExtraPaths...)
	for _, slug := range e.artworks.Slugs(ctx) {
		paths = append(paths, "/sketch/"+slug)
	}
	return paths
}

// Run exports every path plus the 404 page. A failing document is logged
// and recorded in the summary without stopping the run. The returned error
// is non-nil only when ctx ends the run early.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	paths := e.Paths(ctx)
	e.logger.Info("export started", "documents", len(paths)+1, "concurrency", e.cfg.Concurrency)

	var (
		mu      sync.Mutex
		summary Summary
	)
	record := func(path, key string, err error) {
		reason := FailureReason(err)
		metrics.PageExported(reason)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			e.logger.Error("failed to export document", "path", path, "reason", reason, "error", err)
			summary.Failures = append(summary.Failures, Failure{Path: path, Reason: reason, Err: err})
			return
		}
		summary.Written = append(summary.Written, key)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	g.Go(func() error {
		err := e.export(gctx, NotFoundPath, storage.NotFoundKey, http.StatusNotFound)
		record(NotFoundPath, storage.NotFoundKey, err)
		return nil
	})
	for _, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			key := storage.PageKey(p)
			err := e.export(gctx, p, key, http.StatusOK)
			record(p, key, err)
			return nil
		})
	}
	_ = g.Wait()

	summary.Duration = time.Since(start)
	e.logger.Info("export finished",
		"written", len(summary.Written),
		"failed", len(summary.Failures),
		"duration_ms", summary.Duration.Milliseconds(),
	)

	if err := ctx.Err(); err != nil {
		return &summary, fmt.Errorf("export interrupted: %w", err)
	}
	return &summary, nil
}

// export renders path and stores the body under key when the response
// carries the wanted status.
func (e *Exporter) export(ctx context.Context, path, key string, want int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	res := newResponseBuffer()
	e.site.ServeHTTP(res, req)
	if res.status != want {
		return &StatusError{Path: path, Status: res.status, Want: want}
	}

	return e.store.Put(ctx, key, bytes.NewReader(res.body.Bytes()), storage.PutOptions{
		ContentType:  storage.DetectContentType(res.header.Get("Content-Type"), key, nil),
		CacheControl: storage.CacheControlFor(key),
		MaxSize:      e.cfg.MaxDocumentSize,
		Overwrite:    true,
		Public:       true,
	})
}

// StatusError is returned when the site answers a path with an unexpected
// status.
type StatusError struct {
	Path   string
	Status int
	Want   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d, want %d", e.Path, e.Status, e.Want)
}

// IsStatusError reports whether err is a StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// responseBuffer captures a handler response in memory.
type responseBuffer struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header), status: http.StatusOK}
}

func (r *responseBuffer) Header() http.Header { return r.header }

func (r *responseBuffer) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = code
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(b)
}
