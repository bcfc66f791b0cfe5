// Package storage provides object storage for the static site export.
//
// This package defines a Storage interface with implementations for:
// - LocalStorage: File system storage, for previews and self-hosting
// - R2Storage: Cloudflare R2 (S3-compatible) storage for production
//
// Exported pages, the sitemap, the manifest and icons are written through
// it with explicit content types and cache headers.
package storage

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for file storage operations.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the specified key with the given options.
	// Returns an error if the operation fails or if the key already exists
	// (unless overwrite is enabled in opts).
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key.
	// Returns the data as an io.ReadCloser (caller must close), object metadata,
	// and an error. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key.
	// This operation is idempotent - no error is returned if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// URL returns a URL for accessing the object at the specified key.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	// If empty, it will be auto-detected from the file extension.
	ContentType string

	// CacheControl is sent with the object when served. Ignored by
	// LocalStorage.
	CacheControl string

	// MaxSize specifies the maximum allowed size in bytes.
	// If the data exceeds this size, ErrTooLarge is returned.
	// A value of 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	// If false and the key exists, ErrKeyExists is returned.
	Overwrite bool

	// Public determines if the object should be publicly accessible.
	// For R2, this sets the ACL to public-read.
	Public bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
	ETag         string    // Entity tag (if available)
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where files are stored.
	// Example: "./dist"
	BasePath string

	// BaseURL is the public URL prefix for accessing files.
	// Example: "http://localhost:8080"
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the public URL for the bucket (if using a custom domain).
	// Example: "https://studioyoukai.com"
	// If empty, presigned URLs are returned.
	PublicURL string

	// Region is required by the AWS SDK. R2 accepts "auto".
	Region string

	// Endpoint overrides the account endpoint. Used for S3-compatible
	// stores other than R2.
	Endpoint string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// =============================================================================
// Key Generation Helpers
// =============================================================================

// PageKey maps a site path to the key of its exported HTML document.
//
// Examples:
//   - "/"              -> "index.html"
//   - "/gallery"       -> "gallery/index.html"
//   - "/sketch/fox/"   -> "sketch/fox/index.html"
//   - "/sitemap.xml"   -> "sitemap.xml"
func PageKey(sitePath string) string {
	clean := strings.Trim(path.Clean("/"+sitePath), "/")
	if clean == "" {
		return "index.html"
	}
	if path.Ext(clean) != "" {
		return clean
	}
	return clean + "/index.html"
}

// IconKey returns the key of the square PNG icon with the given size.
// Format: icons/icon-{size}.png
func IconKey(size int) string {
	return "icons/icon-" + strconv.Itoa(size) + ".png"
}

// NotFoundKey is the key of the exported 404 page.
const NotFoundKey = "404.html"
