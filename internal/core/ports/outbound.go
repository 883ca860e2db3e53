package ports

import (
	"context"

	"github.com/feralmap/catwatch/internal/core/domain"
)

// CatRepository is the only gateway to persisted cat and sighting state.
// ListCats returns the catalog ordered most-recent-first, matching the
// resolver's tie-breaking expectation.
type CatRepository interface {
	ListCats(ctx context.Context) ([]domain.Cat, error)
	GetByID(ctx context.Context, id string) (*domain.Cat, error)
	CreateCatWithFirstSighting(ctx context.Context, cat *domain.Cat, sighting *domain.Sighting) error
	AddSighting(ctx context.Context, sighting *domain.Sighting) error
	ListSightings(ctx context.Context, catID string) ([]domain.Sighting, error)
}

// FeatureExtractor turns raw image bytes into a best-effort feature record.
// It never fabricates a record on failure.
type FeatureExtractor interface {
	Extract(ctx context.Context, image []byte) (*domain.FeatureRecord, error)
}

// EventPublisher announces committed sightings to downstream consumers.
type EventPublisher interface {
	PublishSightingRecorded(ctx context.Context, event domain.SightingEvent) error
}

// EventSubscriber delivers sighting-recorded events to a handler until the
// context is canceled.
type EventSubscriber interface {
	SubscribeSightingRecorded(ctx context.Context, handler func(context.Context, domain.SightingEvent) error) error
}

// ActivityRepository maintains the denormalized per-cat activity summary.
type ActivityRepository interface {
	ApplySighting(ctx context.Context, event domain.SightingEvent) error
	GetByCatID(ctx context.Context, catID string) (*domain.CatActivity, error)
	ListByCatIDs(ctx context.Context, catIDs []string) (map[string]domain.CatActivity, error)
}
