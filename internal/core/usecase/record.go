package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feralmap/catwatch/internal/core/domain"
	"github.com/feralmap/catwatch/internal/core/ports"
)

type RecordSightingUseCase struct {
	repo      ports.CatRepository
	extractor ports.FeatureExtractor
	events    ports.EventPublisher
	now       func() time.Time
}

func NewRecordSightingUseCase(
	repo ports.CatRepository,
	extractor ports.FeatureExtractor,
	events ports.EventPublisher,
) *RecordSightingUseCase {
	return &RecordSightingUseCase{
		repo:      repo,
		extractor: extractor,
		events:    events,
		now:       time.Now,
	}
}

// Commit reconciles one confirmed submission. The identity decision was
// made by the caller on a prior proposal; this method never re-scores, so
// a better candidate created between proposal and commit is accepted as a
// duplicate rather than silently patched here.
func (uc *RecordSightingUseCase) Commit(ctx context.Context, req domain.CommitRequest) (*domain.Cat, error) {
	if strings.TrimSpace(req.SubmitterID) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "commit sighting", errors.New("submitter id is required"))
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	switch req.Decision {
	case domain.DecisionAppendToExisting:
		return uc.appendToExisting(ctx, req)
	case domain.DecisionCreateNew:
		return uc.createNew(ctx, req)
	default:
		return nil, domain.WrapError(domain.ErrValidation, "commit sighting", fmt.Errorf("unknown decision %q", req.Decision))
	}
}

func (uc *RecordSightingUseCase) appendToExisting(ctx context.Context, req domain.CommitRequest) (*domain.Cat, error) {
	if strings.TrimSpace(req.CatID) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "append sighting", errors.New("cat id is required"))
	}

	// The cat is loaded before the insert: once the sighting is durable,
	// the commit must not fail on a read-back, or a caller retry would
	// record the sighting twice.
	cat, err := uc.repo.GetByID(ctx, req.CatID)
	if err != nil {
		if domain.IsKind(err, domain.ErrCatNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load cat for append: %w", err)
	}

	sighting := uc.newSighting(cat.ID, req)
	if err := uc.repo.AddSighting(ctx, sighting); err != nil {
		if domain.IsKind(err, domain.ErrCatNotFound) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCommitFailed, "append sighting", err)
	}

	uc.publish(ctx, cat.ID, sighting, false)
	return cat, nil
}

func (uc *RecordSightingUseCase) createNew(ctx context.Context, req domain.CommitRequest) (*domain.Cat, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrValidation, "create cat", errors.New("name is required"))
	}
	if len(req.Photo) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "create cat", errors.New("photo is required"))
	}

	features, err := uc.extractor.Extract(ctx, req.Photo)
	if err != nil {
		if !domain.IsKind(err, domain.ErrExtractionFailed) {
			return nil, fmt.Errorf("extract features: %w", err)
		}
		// Forced create without extraction: the cat is stored without a
		// reference record and stays unmatchable until one exists.
		slog.Warn("creating cat without feature record", "name", name, "error", err)
		features = nil
	}

	now := uc.now().UTC()
	cat := &domain.Cat{
		ID:        uuid.NewString(),
		Name:      name,
		Features:  features,
		CreatedBy: req.SubmitterID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sighting := uc.newSighting(cat.ID, req)

	if err := uc.repo.CreateCatWithFirstSighting(ctx, cat, sighting); err != nil {
		return nil, domain.WrapError(domain.ErrCommitFailed, "create cat with first sighting", err)
	}

	uc.publish(ctx, cat.ID, sighting, true)
	return cat, nil
}

func (uc *RecordSightingUseCase) newSighting(catID string, req domain.CommitRequest) *domain.Sighting {
	return &domain.Sighting{
		ID:        uuid.NewString(),
		CatID:     catID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		SpottedBy: req.SubmitterID,
		SpottedAt: uc.now().UTC(),
		Notes:     strings.TrimSpace(req.Notes),
	}
}

// publish is best-effort: the sighting is already committed, so a failed
// notification must not surface as a commit failure.
func (uc *RecordSightingUseCase) publish(ctx context.Context, catID string, sighting *domain.Sighting, newCat bool) {
	if uc.events == nil {
		return
	}
	event := domain.SightingEvent{
		CatID:      catID,
		SightingID: sighting.ID,
		Latitude:   sighting.Latitude,
		Longitude:  sighting.Longitude,
		SpottedAt:  sighting.SpottedAt,
		NewCat:     newCat,
	}
	if err := uc.events.PublishSightingRecorded(ctx, event); err != nil {
		slog.Warn("publish sighting event", "cat_id", catID, "sighting_id", sighting.ID, "error", err)
	}
}
