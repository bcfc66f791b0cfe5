package gallery

import (
	"fmt"
	"net/url"
)

const (
	// GalleryPath is the bare gallery location.
	GalleryPath = "/gallery"

	// SelectionParam is the query parameter holding the selected slug.
	SelectionParam = "sketch"
)

// Router tracks the URL a gallery page is showing. The selected artwork is
// always derived from the current URL, never stored on its own.
//
// A Router is owned by one Session and is not safe for concurrent use.
type Router struct {
	current *url.URL
	history []string
}

// NewRouter creates a router positioned at rawURL, or at the bare gallery
// path when rawURL is empty or unparseable.
func NewRouter(rawURL string) *Router {
	u, err := url.Parse(rawURL)
	if err != nil || rawURL == "" {
		u = &url.URL{Path: GalleryPath}
	}
	return &Router{current: u, history: []string{u.String()}}
}

// Current returns a copy of the current URL.
func (r *Router) Current() url.URL {
	return *r.current
}

// String returns the current URL as a path plus query.
func (r *Router) String() string {
	return r.current.String()
}

// Selected returns the selected slug, or "" when the overlay is closed.
func (r *Router) Selected() string {
	return r.current.Query().Get(SelectionParam)
}

// Push navigates to rawURL without a reload and records it in history.
func (r *Router) Push(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	r.current = u
	r.history = append(r.history, u.String())
	return nil
}

// Replace moves to rawURL without adding a history entry. Used when the
// browser reports back/forward navigation.
func (r *Router) Replace(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	r.current = u
	return nil
}

// History returns the pushed URLs, oldest first.
func (r *Router) History() []string {
	return append([]string(nil), r.history...)
}

// SelectionURL returns the gallery URL selecting slug.
func SelectionURL(slug string) string {
	if slug == "" {
		return GalleryPath
	}
	return GalleryPath + "?" + url.Values{SelectionParam: {slug}}.Encode()
}

// IsGalleryURL reports whether rawURL is a same-origin gallery location:
// the gallery path itself, with or without a query.
func IsGalleryURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.Path == GalleryPath
}
