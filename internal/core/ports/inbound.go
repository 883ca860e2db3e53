package ports

import (
	"context"

	"github.com/feralmap/catwatch/internal/core/domain"
)

// IdentityProposer is the inbound contract for the read-only half of the
// propose/commit flow.
type IdentityProposer interface {
	ProposeIdentity(ctx context.Context, photo []byte, latitude, longitude float64) (*domain.MatchOutcome, error)
}

// SightingRecorder is the inbound contract for reconciling one confirmed
// submission against the catalog.
type SightingRecorder interface {
	Commit(ctx context.Context, req domain.CommitRequest) (*domain.Cat, error)
}

// CatalogReader is the inbound read model for catalog views.
type CatalogReader interface {
	ListCats(ctx context.Context) ([]domain.Cat, map[string]domain.CatActivity, error)
	GetCat(ctx context.Context, id string) (*domain.Cat, []domain.Sighting, error)
}

// ActivityApplier is the inbound contract for the activity worker.
type ActivityApplier interface {
	Apply(ctx context.Context, event domain.SightingEvent) error
}
