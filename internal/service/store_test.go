package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/DukeRupert/youkai/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory query.Store ordered by identity.
type memStore struct {
	mu       sync.Mutex
	artworks []domain.Artwork
	calls    map[string]int
	err      map[string]error

	// nextPage overrides NextPage when set.
	nextPage func(cursor domain.Cursor, limit int) []domain.Artwork
}

func newMemStore(n int) *memStore {
	artworks := make([]domain.Artwork, n)
	for i := range artworks {
		id := fmt.Sprintf("art-%03d", i)
		artworks[i] = domain.Artwork{
			ID:     id,
			Title:  fmt.Sprintf("Sketch %d", i),
			Slug:   fmt.Sprintf("sketch-%d", i),
			Images: []domain.ImageRef{{AssetRef: "image-" + id + "-600x900-jpg"}},
		}
	}
	return newMemStoreOf(artworks)
}

func newMemStoreOf(artworks []domain.Artwork) *memStore {
	sorted := append([]domain.Artwork(nil), artworks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &memStore{
		artworks: sorted,
		calls:    map[string]int{},
		err:      map[string]error{},
	}
}

func (s *memStore) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	return s.err[name]
}

func (s *memStore) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *memStore) FirstPage(_ context.Context, limit int) ([]domain.Artwork, error) {
	if err := s.record("FirstPage"); err != nil {
		return nil, err
	}
	return page(s.artworks, limit), nil
}

func (s *memStore) NextPage(_ context.Context, cursor domain.Cursor, limit int) ([]domain.Artwork, error) {
	if err := s.record("NextPage"); err != nil {
		return nil, err
	}
	if s.nextPage != nil {
		return s.nextPage(cursor, limit), nil
	}
	var after []domain.Artwork
	for _, a := range s.artworks {
		if domain.Cursor(a.ID).After(cursor) {
			after = append(after, a)
		}
	}
	return page(after, limit), nil
}

func (s *memStore) Count(context.Context) (int, error) {
	if err := s.record("Count"); err != nil {
		return 0, err
	}
	return len(s.artworks), nil
}

func (s *memStore) Search(_ context.Context, term string, limit int) ([]domain.Artwork, error) {
	if err := s.record("Search"); err != nil {
		return nil, err
	}
	var out []domain.Artwork
	for _, a := range s.artworks {
		if strings.HasPrefix(strings.ToLower(a.Title), strings.ToLower(term)) {
			out = append(out, a)
		}
	}
	return page(out, limit), nil
}

func (s *memStore) BySlug(_ context.Context, slug string) (*domain.Artwork, error) {
	if err := s.record("BySlug"); err != nil {
		return nil, err
	}
	for _, a := range s.artworks {
		if a.Slug == slug {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memStore) Slugs(context.Context) ([]string, error) {
	if err := s.record("Slugs"); err != nil {
		return nil, err
	}
	var slugs []string
	for _, a := range s.artworks {
		slugs = append(slugs, a.Slug)
	}
	return slugs, nil
}

func (s *memStore) Related(_ context.Context, tags []string, excludeID string, limit int) ([]domain.Artwork, error) {
	if err := s.record("Related"); err != nil {
		return nil, err
	}
	var out []domain.Artwork
	for _, a := range s.artworks {
		if a.ID == excludeID {
			continue
		}
		if sharesTag(a.Tags, tags) {
			out = append(out, a)
		}
	}
	return page(out, limit), nil
}

func (s *memStore) Previous(_ context.Context, id string) (*domain.ArtworkSummary, error) {
	if err := s.record("Previous"); err != nil {
		return nil, err
	}
	for i := len(s.artworks) - 1; i >= 0; i-- {
		if s.artworks[i].ID < id {
			return s.artworks[i].Summary(), nil
		}
	}
	return nil, nil
}

func (s *memStore) Next(_ context.Context, id string) (*domain.ArtworkSummary, error) {
	if err := s.record("Next"); err != nil {
		return nil, err
	}
	for i := range s.artworks {
		if s.artworks[i].ID > id {
			return s.artworks[i].Summary(), nil
		}
	}
	return nil, nil
}

func (s *memStore) All(context.Context) ([]domain.Artwork, error) {
	if err := s.record("All"); err != nil {
		return nil, err
	}
	return append([]domain.Artwork(nil), s.artworks...), nil
}

func page(artworks []domain.Artwork, limit int) []domain.Artwork {
	if len(artworks) > limit {
		artworks = artworks[:limit]
	}
	return append([]domain.Artwork(nil), artworks...)
}

func sharesTag(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
