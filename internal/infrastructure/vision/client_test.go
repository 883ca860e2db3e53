package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/feralmap/catwatch/internal/core/domain"
)

func TestExtractParsesAndNormalizesReply(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"{\"breed\":\"DSH\",\"colors\":[\"Ginger\",\"white\"],\"patterns\":[\"striped\"],\"distinctive_features\":[\"white paws\"],\"estimated_age\":\"adult\",\"size\":\"medium\"}"}`))
	}))
	defer server.Close()

	client := New(server.URL, "llava")
	record, err := client.Extract(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := domain.FeatureRecord{
		Breed:               "domestic_shorthair",
		Colors:              []string{"orange", "white"},
		Patterns:            []string{"tabby"},
		DistinctiveFeatures: []string{"white paws"},
		EstimatedAge:        domain.AgeAdult,
		Size:                domain.SizeMedium,
	}
	if !reflect.DeepEqual(*record, want) {
		t.Fatalf("unexpected record:\n got %+v\nwant %+v", *record, want)
	}

	images, _ := captured["images"].([]any)
	if len(images) != 1 {
		t.Fatalf("expected one encoded image, got %v", captured["images"])
	}
	if images[0] != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
		t.Fatalf("image was not base64-encoded as expected")
	}
	if captured["format"] != "json" {
		t.Fatalf("expected json format request, got %v", captured["format"])
	}
}

func TestExtractToleratesProseAroundJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"Sure! Here you go: {\"colors\":[\"black\"]} Hope that helps."}`))
	}))
	defer server.Close()

	client := New(server.URL, "llava")
	record, err := client.Extract(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !reflect.DeepEqual(record.Colors, []string{"black"}) {
		t.Fatalf("unexpected colors: %v", record.Colors)
	}
	if record.Breed != "" {
		t.Fatalf("expected absent breed, got %q", record.Breed)
	}
}

func TestExtractFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "llava")
	_, err := client.Extract(context.Background(), []byte("img"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestExtractFailsOnMalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"the cat is orange"}`))
	}))
	defer server.Close()

	client := New(server.URL, "llava")
	_, err := client.Extract(context.Background(), []byte("img"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed for unparseable reply, got %v", err)
	}
}

func TestExtractFailsOnUnreachableEndpoint(t *testing.T) {
	client := NewWithOptions("http://127.0.0.1:1", "llava", Options{HTTPTimeout: 200 * time.Millisecond})

	_, err := client.Extract(context.Background(), []byte("img"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractRejectsEmptyImage(t *testing.T) {
	client := New("http://localhost:11434", "llava")

	_, err := client.Extract(context.Background(), nil)
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestExtractHonorsContextTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"response":"{}"}`))
	}))
	defer server.Close()
	defer close(release)

	client := New(server.URL, "llava")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Extract(ctx, []byte("img"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed on timeout, got %v", err)
	}
}
