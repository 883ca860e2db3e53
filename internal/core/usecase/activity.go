package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/feralmap/catwatch/internal/core/domain"
	"github.com/feralmap/catwatch/internal/core/ports"
)

type ApplyActivityUseCase struct {
	activity ports.ActivityRepository
}

func NewApplyActivityUseCase(activity ports.ActivityRepository) *ApplyActivityUseCase {
	return &ApplyActivityUseCase{activity: activity}
}

// Apply folds one sighting-recorded event into the per-cat activity
// summary. Events may be redelivered; the repository recomputes the
// summary from stored sightings, so replays converge on the same state.
func (uc *ApplyActivityUseCase) Apply(ctx context.Context, event domain.SightingEvent) error {
	if event.CatID == "" || event.SightingID == "" {
		return domain.WrapError(domain.ErrValidation, "apply sighting event", errors.New("cat id and sighting id are required"))
	}
	if event.SpottedAt.IsZero() {
		return domain.WrapError(domain.ErrValidation, "apply sighting event", errors.New("spotted_at is required"))
	}

	if err := uc.activity.ApplySighting(ctx, event); err != nil {
		return fmt.Errorf("apply sighting to activity: %w", err)
	}
	return nil
}
