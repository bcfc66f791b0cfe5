package content

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultImageHost serves transformed image assets.
const DefaultImageHost = "https://cdn.sanity.io"

// ErrInvalidAssetRef is returned for asset references that are not image refs.
var ErrInvalidAssetRef = errors.New("invalid image asset reference")

// ImageOptions selects the transformation applied by the image CDN.
// Zero fields are omitted from the URL.
type ImageOptions struct {
	Width   int
	Height  int
	Quality int
}

// ImageBuilder turns image asset references into sized CDN URLs.
// It never fetches image bytes.
type ImageBuilder struct {
	host      string
	projectID string
	dataset   string
}

// NewImageBuilder creates an image URL builder for the given project and dataset.
func NewImageBuilder(projectID, dataset string) *ImageBuilder {
	return &ImageBuilder{
		host:      DefaultImageHost,
		projectID: projectID,
		dataset:   dataset,
	}
}

// URL builds the CDN URL for ref, e.g. "image-abc-1200x800-jpg" becomes
// ".../images/{project}/{dataset}/abc-1200x800.jpg?w=600&q=80".
func (b *ImageBuilder) URL(ref string, opts ImageOptions) (string, error) {
	asset, err := ParseAssetRef(ref)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/images/%s/%s/%s-%dx%d.%s",
		b.host, b.projectID, b.dataset,
		asset.ID, asset.Width, asset.Height, asset.Format,
	)

	values := url.Values{}
	if opts.Width > 0 {
		values.Set("w", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		values.Set("h", strconv.Itoa(opts.Height))
	}
	if opts.Quality > 0 {
		values.Set("q", strconv.Itoa(opts.Quality))
	}
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	return u, nil
}

// Asset is a parsed image asset reference.
type Asset struct {
	ID     string
	Width  int
	Height int
	Format string
}

// ParseAssetRef parses "image-<id>-<w>x<h>-<format>".
func ParseAssetRef(ref string) (Asset, error) {
	parts := strings.Split(ref, "-")
	if len(parts) < 4 || parts[0] != "image" {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAssetRef, ref)
	}

	format := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	id := strings.Join(parts[1:len(parts)-2], "-")

	w, h, ok := strings.Cut(dims, "x")
	if !ok || id == "" || format == "" {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAssetRef, ref)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAssetRef, ref)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAssetRef, ref)
	}

	return Asset{ID: id, Width: width, Height: height, Format: format}, nil
}
