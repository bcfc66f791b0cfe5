package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/query"
	"golang.org/x/sync/errgroup"
)

// NavigationService resolves the neighbors of an artwork for previous/next
// browsing on detail pages.
type NavigationService interface {
	// Neighbors returns the artworks immediately before and after id in the
	// gallery ordering. Either side is nil at a boundary. Lookup failures are
	// logged and yield an empty Navigation rather than an error.
	Neighbors(ctx context.Context, id string) domain.Navigation
}

type navigationService struct {
	store  query.Store
	logger *slog.Logger
}

// NewNavigationService creates a new NavigationService.
func NewNavigationService(store query.Store, logger *slog.Logger) NavigationService {
	return &navigationService{
		store:  store,
		logger: logger,
	}
}

// Neighbors runs both lookups concurrently.
func (s *navigationService) Neighbors(ctx context.Context, id string) domain.Navigation {
	const op = "navigation.neighbors"

	var nav domain.Navigation
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		prev, err := s.store.Previous(gctx, id)
		if err != nil {
			return err
		}
		nav.Previous = prev
		return nil
	})

	g.Go(func() error {
		next, err := s.store.Next(gctx, id)
		if err != nil {
			return err
		}
		nav.Next = next
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to resolve artwork navigation", "error", err, "op", op, "artwork_id", id)
		return domain.Navigation{}
	}
	return nav
}
