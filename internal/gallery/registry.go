package gallery

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Registry holds the mounted gallery sessions. Sessions idle for longer than
// the TTL are evicted and closed.
type Registry struct {
	sessions *cache.Cache
	fetcher  Fetcher
	cfg      Config
	ttl      time.Duration
	logger   *slog.Logger
}

// NewRegistry creates a session registry.
func NewRegistry(fetcher Fetcher, cfg Config, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	sessions := cache.New(ttl, ttl/2)
	sessions.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
		}
	})

	return &Registry{
		sessions: sessions,
		fetcher:  fetcher,
		cfg:      cfg,
		ttl:      ttl,
		logger:   logger,
	}
}

// Create starts a session positioned at rawURL and registers it.
func (r *Registry) Create(rawURL string) *Session {
	id := uuid.NewString()
	s := NewSession(id, rawURL, r.fetcher, r.cfg, r.logger)
	r.sessions.Set(id, s, r.ttl)
	r.logger.Debug("gallery session created", "session_id", id)
	return s
}

// Get returns the session with id and extends its lifetime.
func (r *Registry) Get(id string) (*Session, bool) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	if !ok || s.Closed() {
		return nil, false
	}
	r.sessions.Set(id, s, r.ttl)
	return s, true
}

// Remove closes and forgets the session with id.
func (r *Registry) Remove(id string) {
	r.sessions.Delete(id)
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

// Close closes every session.
func (r *Registry) Close() {
	for id, item := range r.sessions.Items() {
		if s, ok := item.Object.(*Session); ok {
			s.Close()
		}
		r.sessions.Delete(id)
	}
}
