package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/feralmap/catwatch/internal/config"
	"github.com/feralmap/catwatch/internal/core/domain"
)

func identifyRequest(t *testing.T, photo []byte, latitude, longitude string) *http.Request {
	t.Helper()
	body := newMultipartBody(t)
	if photo != nil {
		body.file(t, "photo", "sighting.jpg", photo)
	}
	return body.
		field(t, "latitude", latitude).
		field(t, "longitude", longitude).
		request(t, http.MethodPost, "/v1/identifications")
}

func TestProposeIdentityReturnsMatch(t *testing.T) {
	cat := tabbyCat()
	handler := newTestHandler(config.Config{}, testDeps{
		repo:      &fakeCatRepo{cats: []domain.Cat{cat}},
		extractor: fakeExtractor{features: cat.Features},
	})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, identifyRequest(t, []byte("jpeg-bytes"), "55.75", "37.61"))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", res.Code, res.Body.String())
	}

	var outcome domain.MatchOutcome
	if err := json.NewDecoder(res.Body).Decode(&outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !outcome.IsLikelySameCat {
		t.Fatalf("expected a likely match, got %+v", outcome)
	}
	if outcome.Candidate == nil || outcome.Candidate.ID != cat.ID {
		t.Fatalf("expected candidate %s, got %+v", cat.ID, outcome.Candidate)
	}
	if outcome.Score != 100 {
		t.Fatalf("expected perfect score, got %v", outcome.Score)
	}
}

func TestProposeIdentityNoMatchOnEmptyCatalog(t *testing.T) {
	handler := newTestHandler(config.Config{}, testDeps{
		extractor: fakeExtractor{features: tabbyCat().Features},
	})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, identifyRequest(t, []byte("jpeg-bytes"), "55.75", "37.61"))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var outcome domain.MatchOutcome
	if err := json.NewDecoder(res.Body).Decode(&outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if outcome.IsLikelySameCat || outcome.Candidate != nil || outcome.Score != 0 {
		t.Fatalf("expected empty no-match outcome, got %+v", outcome)
	}
}

func TestProposeIdentityRequiresPhoto(t *testing.T) {
	handler := newTestHandler(config.Config{}, testDeps{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, identifyRequest(t, nil, "55.75", "37.61"))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing photo, got %d", res.Code)
	}
}

func TestProposeIdentityRejectsMalformedCoordinates(t *testing.T) {
	handler := newTestHandler(config.Config{}, testDeps{})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, identifyRequest(t, []byte("jpeg-bytes"), "north-ish", "37.61"))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed latitude, got %d", res.Code)
	}
}

func TestProposeIdentityRejectsOutOfRangeCoordinates(t *testing.T) {
	handler := newTestHandler(config.Config{}, testDeps{
		extractor: fakeExtractor{features: tabbyCat().Features},
	})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, identifyRequest(t, []byte("jpeg-bytes"), "91", "37.61"))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range latitude, got %d", res.Code)
	}
}

func TestProposeIdentityMapsExtractionFailureTo503(t *testing.T) {
	handler := newTestHandler(config.Config{}, testDeps{
		extractor: fakeExtractor{
			err: domain.WrapError(domain.ErrExtractionFailed, "vision.extract", errors.New("model unavailable")),
		},
	})

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, identifyRequest(t, []byte("jpeg-bytes"), "55.75", "37.61"))

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for extraction failure, got %d", res.Code)
	}
}
