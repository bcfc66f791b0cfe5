package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Content providers.
const (
	ContentProviderGROQ     = "groq"
	ContentProviderPostgres = "postgres"
)

// Cache providers.
const (
	CacheProviderNone   = "none"
	CacheProviderMemory = "memory"
	CacheProviderRedis  = "redis"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Public site URL, used for canonical links and the sitemap
	BaseURL string

	// Content source: "groq" queries the hosted content API directly,
	// "postgres" reads the mirror populated by cmd/sync
	ContentProvider string

	// Hosted content API
	SanityProjectID       string
	SanityDataset         string
	SanityAPIVersion      string
	SanityUseCDN          bool
	SanityToken           string
	SanityPerspective     string
	ContentRequestTimeout time.Duration // 0 means no timeout

	// Required when ContentProvider is "postgres" and for cmd/sync
	DatabaseUrl string

	// Gallery behaviour
	GalleryPageSize        int
	GalleryScrollThreshold int // pixels from the document bottom
	GalleryScrollDebounce  time.Duration
	GallerySessionTTL      time.Duration

	// Query cache
	CacheProvider string // "none", "memory" or "redis"
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Storage Configuration (static export)
	StorageProvider string // "local" or "r2"

	// Local Storage (development)
	LocalStoragePath string // Base directory for exported files
	LocalStorageURL  string // Base URL the exported files are served from

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string // Optional custom domain URL
	R2Endpoint        string // Optional S3-compatible endpoint override

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Base URL defaults to localhost for development
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		ContentProvider: getEnv("CONTENT_PROVIDER", ContentProviderGROQ),

		SanityProjectID:       getEnv("SANITY_PROJECT_ID", "4ggmuz20"),
		SanityDataset:         getEnv("SANITY_DATASET", "production"),
		SanityAPIVersion:      getEnv("SANITY_API_VERSION", "2023-05-03"),
		SanityUseCDN:          getEnvBool("SANITY_USE_CDN", false),
		SanityToken:           getEnv("SANITY_TOKEN", ""),
		SanityPerspective:     getEnv("SANITY_PERSPECTIVE", "published"),
		ContentRequestTimeout: getEnvDuration("CONTENT_REQUEST_TIMEOUT", 0),

		DatabaseUrl: getEnv("DATABASE_URL", ""),

		GalleryPageSize:        getEnvInt("GALLERY_PAGE_SIZE", 12),
		GalleryScrollThreshold: getEnvInt("GALLERY_SCROLL_THRESHOLD", 1000),
		GalleryScrollDebounce:  getEnvDuration("GALLERY_SCROLL_DEBOUNCE", 150*time.Millisecond),
		GallerySessionTTL:      getEnvDuration("GALLERY_SESSION_TTL", 30*time.Minute),

		CacheProvider: getEnv("CACHE_PROVIDER", CacheProviderNone),
		CacheTTL:      getEnvDuration("CACHE_TTL", 60*time.Second),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./dist"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8081"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Validate content configuration
	switch cfg.ContentProvider {
	case ContentProviderGROQ:
		if cfg.SanityProjectID == "" {
			return nil, fmt.Errorf("SANITY_PROJECT_ID is required when CONTENT_PROVIDER is 'groq'")
		}
		if cfg.SanityDataset == "" {
			return nil, fmt.Errorf("SANITY_DATASET is required when CONTENT_PROVIDER is 'groq'")
		}
	case ContentProviderPostgres:
		if cfg.DatabaseUrl == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when CONTENT_PROVIDER is 'postgres'")
		}
	default:
		return nil, fmt.Errorf("CONTENT_PROVIDER must be either 'groq' or 'postgres', got: %s", cfg.ContentProvider)
	}
	if cfg.ContentRequestTimeout < 0 {
		return nil, fmt.Errorf("CONTENT_REQUEST_TIMEOUT must not be negative, got: %s", cfg.ContentRequestTimeout)
	}

	// Validate gallery configuration
	if cfg.GalleryPageSize <= 0 {
		return nil, fmt.Errorf("GALLERY_PAGE_SIZE must be positive, got: %d", cfg.GalleryPageSize)
	}
	if cfg.GalleryScrollThreshold < 0 {
		return nil, fmt.Errorf("GALLERY_SCROLL_THRESHOLD must not be negative, got: %d", cfg.GalleryScrollThreshold)
	}
	if cfg.GalleryScrollDebounce < 0 {
		return nil, fmt.Errorf("GALLERY_SCROLL_DEBOUNCE must not be negative, got: %s", cfg.GalleryScrollDebounce)
	}
	if cfg.GallerySessionTTL <= 0 {
		return nil, fmt.Errorf("GALLERY_SESSION_TTL must be positive, got: %s", cfg.GallerySessionTTL)
	}

	// Validate cache configuration
	switch cfg.CacheProvider {
	case CacheProviderNone, CacheProviderMemory:
	case CacheProviderRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when CACHE_PROVIDER is 'redis'")
		}
	default:
		return nil, fmt.Errorf("CACHE_PROVIDER must be one of 'none', 'memory' or 'redis', got: %s", cfg.CacheProvider)
	}

	// Validate storage configuration
	if cfg.StorageProvider == "r2" {
		if cfg.R2AccountID == "" && cfg.R2Endpoint == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID or R2_ENDPOINT is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	} else if cfg.StorageProvider != "local" {
		return nil, fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 'r2', got: %s", cfg.StorageProvider)
	}

	return cfg, nil
}

// IsSecure reports whether the site is served over HTTPS.
func (c *Config) IsSecure() bool {
	return c.Env != "development"
}

// RequireDatabase returns an error when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseUrl == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
