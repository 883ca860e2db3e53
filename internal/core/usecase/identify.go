package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/feralmap/catwatch/internal/core/domain"
	"github.com/feralmap/catwatch/internal/core/ports"
)

type IdentifyCatUseCase struct {
	repo      ports.CatRepository
	extractor ports.FeatureExtractor
}

func NewIdentifyCatUseCase(repo ports.CatRepository, extractor ports.FeatureExtractor) *IdentifyCatUseCase {
	return &IdentifyCatUseCase{
		repo:      repo,
		extractor: extractor,
	}
}

// ProposeIdentity extracts features from the photo and ranks them against
// every cat in the catalog. It performs no writes; the caller confirms or
// overrides the outcome and commits separately. The outcome is advisory as
// of proposal time and is not re-validated at commit.
func (uc *IdentifyCatUseCase) ProposeIdentity(ctx context.Context, photo []byte, latitude, longitude float64) (*domain.MatchOutcome, error) {
	if len(photo) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "propose identity", errors.New("photo is required"))
	}
	if err := validateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	features, err := uc.extractor.Extract(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	catalog, err := uc.repo.ListCats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	outcome := resolveMatch(*features, catalog)
	return &outcome, nil
}

func validateCoordinates(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) || latitude < -90 || latitude > 90 {
		return domain.WrapError(domain.ErrValidation, "validate location", fmt.Errorf("latitude %v out of range", latitude))
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) || longitude < -180 || longitude > 180 {
		return domain.WrapError(domain.ErrValidation, "validate location", fmt.Errorf("longitude %v out of range", longitude))
	}
	return nil
}
