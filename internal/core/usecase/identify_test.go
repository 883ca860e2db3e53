package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/feralmap/catwatch/internal/core/domain"
)

type identifyRepoFake struct {
	cats    []domain.Cat
	listErr error
}

func (f *identifyRepoFake) ListCats(context.Context) ([]domain.Cat, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.cats, nil
}

func (f *identifyRepoFake) GetByID(context.Context, string) (*domain.Cat, error) {
	return nil, domain.ErrCatNotFound
}

func (f *identifyRepoFake) CreateCatWithFirstSighting(context.Context, *domain.Cat, *domain.Sighting) error {
	return nil
}

func (f *identifyRepoFake) AddSighting(context.Context, *domain.Sighting) error { return nil }

func (f *identifyRepoFake) ListSightings(context.Context, string) ([]domain.Sighting, error) {
	return nil, nil
}

type extractorFake struct {
	features *domain.FeatureRecord
	err      error
	calls    int
}

func (f *extractorFake) Extract(context.Context, []byte) (*domain.FeatureRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.features, nil
}

func TestProposeIdentityFindsMatch(t *testing.T) {
	stored := whiskersFeatures()
	repo := &identifyRepoFake{cats: []domain.Cat{{ID: "cat-1", Name: "Whiskers", Features: &stored}}}
	query := whiskersFeatures()
	uc := NewIdentifyCatUseCase(repo, &extractorFake{features: &query})

	outcome, err := uc.ProposeIdentity(context.Background(), []byte("jpeg"), 40.4, -3.7)
	if err != nil {
		t.Fatalf("ProposeIdentity() error = %v", err)
	}
	if outcome.Candidate == nil || outcome.Candidate.ID != "cat-1" {
		t.Fatalf("expected cat-1 candidate, got %+v", outcome.Candidate)
	}
	if !outcome.IsLikelySameCat || outcome.Score != 100 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestProposeIdentityEmptyCatalog(t *testing.T) {
	query := whiskersFeatures()
	uc := NewIdentifyCatUseCase(&identifyRepoFake{}, &extractorFake{features: &query})

	outcome, err := uc.ProposeIdentity(context.Background(), []byte("jpeg"), 0, 0)
	if err != nil {
		t.Fatalf("ProposeIdentity() error = %v", err)
	}
	if outcome.Candidate != nil || outcome.Score != 0 || outcome.IsLikelySameCat {
		t.Fatalf("expected zero outcome on empty catalog, got %+v", outcome)
	}
}

func TestProposeIdentityRequiresPhoto(t *testing.T) {
	uc := NewIdentifyCatUseCase(&identifyRepoFake{}, &extractorFake{})

	_, err := uc.ProposeIdentity(context.Background(), nil, 0, 0)
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProposeIdentityRejectsOutOfRangeCoordinates(t *testing.T) {
	uc := NewIdentifyCatUseCase(&identifyRepoFake{}, &extractorFake{})

	if _, err := uc.ProposeIdentity(context.Background(), []byte("jpeg"), 91, 0); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for latitude 91, got %v", err)
	}
	if _, err := uc.ProposeIdentity(context.Background(), []byte("jpeg"), 0, -181); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for longitude -181, got %v", err)
	}
}

func TestProposeIdentityPropagatesExtractionFailure(t *testing.T) {
	extractErr := domain.WrapError(domain.ErrExtractionFailed, "vision extract", errors.New("503"))
	repo := &identifyRepoFake{cats: []domain.Cat{{ID: "cat-1"}}}
	uc := NewIdentifyCatUseCase(repo, &extractorFake{err: extractErr})

	_, err := uc.ProposeIdentity(context.Background(), []byte("jpeg"), 0, 0)
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestProposeIdentityPropagatesCatalogError(t *testing.T) {
	query := whiskersFeatures()
	repo := &identifyRepoFake{listErr: errors.New("db down")}
	uc := NewIdentifyCatUseCase(repo, &extractorFake{features: &query})

	if _, err := uc.ProposeIdentity(context.Background(), []byte("jpeg"), 0, 0); err == nil {
		t.Fatalf("expected error when catalog listing fails")
	}
}
