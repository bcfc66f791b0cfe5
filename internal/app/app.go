// Package app assembles the site from configuration: the content store and
// its cache, the services, the gallery session registry and the HTTP routes.
// cmd/server serves the result; cmd/export renders it to storage.
package app

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/DukeRupert/youkai/internal"
	"github.com/DukeRupert/youkai/internal/content"
	"github.com/DukeRupert/youkai/internal/export"
	"github.com/DukeRupert/youkai/internal/gallery"
	"github.com/DukeRupert/youkai/internal/handler"
	"github.com/DukeRupert/youkai/internal/middleware"
	"github.com/DukeRupert/youkai/internal/query"
	"github.com/DukeRupert/youkai/internal/service"
	"github.com/DukeRupert/youkai/internal/site"
	"github.com/DukeRupert/youkai/web"
)

// logoPath is the icon source inside the static tree.
const logoPath = "images/logo.png"

// App is an assembled site.
type App struct {
	Mux      *http.ServeMux
	Artworks service.ArtworkService
	Gallery  service.GalleryService
	Sessions *gallery.Registry
	Health   handler.Pinger

	closers []func() error
	logger  *slog.Logger
}

// pingFunc adapts a function to handler.Pinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// New builds the site described by cfg.
func New(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	store, err = a.withCache(ctx, cfg, store)
	if err != nil {
		a.Close()
		return nil, err
	}

	images := content.NewImageBuilder(cfg.SanityProjectID, cfg.SanityDataset)
	navigation := service.NewNavigationService(store, logger)
	a.Artworks = service.NewArtworkService(store, images, navigation, logger)
	a.Gallery = service.NewGalleryService(store, images, service.GalleryConfig{
		PageSize: cfg.GalleryPageSize,
	}, logger)

	a.Sessions = gallery.NewRegistry(a.Gallery, gallery.Config{
		Threshold: cfg.GalleryScrollThreshold,
		Debounce:  cfg.GalleryScrollDebounce,
	}, cfg.GallerySessionTTL, logger)
	a.closers = append(a.closers, func() error {
		a.Sessions.Close()
		return nil
	})

	siteCopy, err := site.Default()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("site copy: %w", err)
	}

	icons, err := Icons(web.Static(), siteCopy)
	if err != nil {
		a.Close()
		return nil, err
	}

	rendererCfg := handler.RendererConfig{FS: web.Templates(), Logger: logger}
	if cfg.Env == "development" {
		rendererCfg.TemplatesDir = "web/templates"
		rendererCfg.IsDev = true
	}
	renderer, err := handler.NewRenderer(rendererCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	layout := handler.NewLayout(siteCopy, cfg.BaseURL)
	limits := handler.GalleryLimits{
		Search: rateLimit(handler.SearchRequestsPerMinute, logger),
		Scroll: rateLimit(handler.ScrollRequestsPerMinute, logger),
	}

	a.Mux = Routes(RouteDeps{
		Public:  handler.NewPublicHandler(a.Artworks, renderer, layout, icons, a.Health, logger),
		Artwork: handler.NewArtworkHandler(a.Artworks, renderer, layout, logger),
		Gallery: handler.NewGalleryHandler(a.Sessions, a.Gallery, a.Artworks, renderer, layout, logger),
		Static:  web.Static(),
		Limits:  limits,
	})

	return a, nil
}

// RouteDeps are the handlers mounted by Routes.
type RouteDeps struct {
	Public  *handler.PublicHandler
	Artwork *handler.ArtworkHandler
	Gallery *handler.GalleryHandler
	Static  fs.FS
	Limits  handler.GalleryLimits
}

// Routes mounts the site on a new mux. Unmatched paths render the 404 page.
func Routes(d RouteDeps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(d.Static)))
	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, d.Static, "robots.txt")
	})

	d.Public.RegisterRoutes(mux)
	d.Artwork.RegisterRoutes(mux)
	d.Gallery.RegisterRoutes(mux, d.Limits)

	mux.HandleFunc("GET /", d.Public.NotFound)
	return mux
}

// rateLimit allows n requests per client per minute.
func rateLimit(n int, logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.NewRateLimitMiddleware(middleware.NewRateLimiter(n, time.Minute), logger).Limit
}

// Icons renders the manifest icons from the logo in static.
func Icons(static fs.FS, c *site.Copy) (map[int][]byte, error) {
	logo, err := fs.ReadFile(static, logoPath)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	src, err := export.DecodeIconSource(bytes.NewReader(logo))
	if err != nil {
		return nil, err
	}
	background, err := export.ParseHexColor(c.Manifest.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("manifest background: %w", err)
	}
	return export.GenerateIcons(src, export.DefaultIconSizes, background)
}

// openStore connects the configured content source.
func (a *App) openStore(ctx context.Context, cfg *internal.Config) (query.Store, error) {
	switch cfg.ContentProvider {
	case internal.ContentProviderPostgres:
		db, err := OpenDatabase(ctx, cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.Health = pingFunc(db.PingContext)
		a.logger.Info("Content source ready", "provider", cfg.ContentProvider)
		return query.NewPostgres(db), nil

	default:
		client, err := NewContentClient(cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.Health = client
		a.logger.Info("Content source ready",
			"provider", cfg.ContentProvider,
			"project", cfg.SanityProjectID,
			"dataset", cfg.SanityDataset,
			"cdn", cfg.SanityUseCDN,
		)
		return query.NewGROQ(client), nil
	}
}

// withCache wraps store in the configured query cache.
func (a *App) withCache(ctx context.Context, cfg *internal.Config, store query.Store) (query.Store, error) {
	switch cfg.CacheProvider {
	case internal.CacheProviderMemory:
		a.logger.Info("Query cache enabled", "provider", cfg.CacheProvider, "ttl", cfg.CacheTTL)
		return query.NewCached(store, query.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL), cfg.CacheTTL, a.logger), nil

	case internal.CacheProviderRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.logger.Info("Query cache enabled", "provider", cfg.CacheProvider, "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return query.NewCached(store, query.NewRedisCache(client), cfg.CacheTTL, a.logger), nil

	default:
		return store, nil
	}
}

// Close releases the registry, database and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewContentClient builds the hosted content API client from cfg.
func NewContentClient(cfg *internal.Config, logger *slog.Logger) (*content.Client, error) {
	client, err := content.NewClient(content.Config{
		ProjectID:   cfg.SanityProjectID,
		Dataset:     cfg.SanityDataset,
		APIVersion:  cfg.SanityAPIVersion,
		UseCDN:      cfg.SanityUseCDN,
		Token:       cfg.SanityToken,
		Perspective: cfg.SanityPerspective,
		Timeout:     cfg.ContentRequestTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("content client initialization failed: %w", err)
	}
	return client, nil
}

// OpenDatabase connects to the mirror database and applies migrations.
func OpenDatabase(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*sql.DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}
