package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/feralmap/catwatch/internal/core/domain"
	"github.com/feralmap/catwatch/internal/core/ports"
)

type CatalogUseCase struct {
	repo     ports.CatRepository
	activity ports.ActivityRepository
}

func NewCatalogUseCase(repo ports.CatRepository, activity ports.ActivityRepository) *CatalogUseCase {
	return &CatalogUseCase{
		repo:     repo,
		activity: activity,
	}
}

// ListCats returns the catalog most-recent-first together with whatever
// activity summaries the worker has materialized so far. A missing summary
// only means the worker has not caught up; the catalog itself is complete.
func (uc *CatalogUseCase) ListCats(ctx context.Context) ([]domain.Cat, map[string]domain.CatActivity, error) {
	cats, err := uc.repo.ListCats(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list cats: %w", err)
	}
	if uc.activity == nil || len(cats) == 0 {
		return cats, nil, nil
	}

	ids := make([]string, 0, len(cats))
	for _, cat := range cats {
		ids = append(ids, cat.ID)
	}
	summaries, err := uc.activity.ListByCatIDs(ctx, ids)
	if err != nil {
		slog.Warn("load activity summaries", "error", err)
		return cats, nil, nil
	}
	return cats, summaries, nil
}

func (uc *CatalogUseCase) GetCat(ctx context.Context, id string) (*domain.Cat, []domain.Sighting, error) {
	if id == "" {
		return nil, nil, domain.WrapError(domain.ErrValidation, "get cat", errors.New("cat id is required"))
	}

	cat, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sightings, err := uc.repo.ListSightings(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list sightings: %w", err)
	}
	return cat, sightings, nil
}
