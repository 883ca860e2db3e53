// Package vision adapts an ollama-style vision model endpoint into the
// core's feature extractor port.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/feralmap/catwatch/internal/core/domain"
	"github.com/feralmap/catwatch/internal/infrastructure/resilience"
	"github.com/feralmap/catwatch/internal/infrastructure/vocabulary"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	runner     *resilience.Runner
	normalizer *vocabulary.Normalizer
}

type Options struct {
	HTTPTimeout time.Duration
	Runner      *resilience.Runner
	Normalizer  *vocabulary.Normalizer
}

func New(baseURL, model string) *Client {
	return NewWithOptions(baseURL, model, Options{})
}

func NewWithOptions(baseURL, model string, options Options) *Client {
	timeout := options.HTTPTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	normalizer := options.Normalizer
	if normalizer == nil {
		normalizer = vocabulary.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		runner:     options.Runner,
		normalizer: normalizer,
	}
}

// featureReply is the wire shape the model is prompted to return. Every
// field is optional.
type featureReply struct {
	Breed               string   `json:"breed"`
	Colors              []string `json:"colors"`
	Patterns            []string `json:"patterns"`
	DistinctiveFeatures []string `json:"distinctive_features"`
	EstimatedAge        string   `json:"estimated_age"`
	Size                string   `json:"size"`
}

// Extract sends the photo to the vision model and parses its JSON reply
// into a normalized feature record. Transport, status, timeout, and parse
// failures all surface as ErrExtractionFailed; no placeholder record is
// ever fabricated.
func (c *Client) Extract(ctx context.Context, image []byte) (*domain.FeatureRecord, error) {
	if len(image) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "vision extract", fmt.Errorf("image is empty"))
	}

	request := map[string]any{
		"model":  c.model,
		"prompt": buildExtractionPrompt(),
		"images": []string{base64.StdEncoding.EncodeToString(image)},
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", request, &response)
	}

	var err error
	if c.runner != nil {
		err = c.runner.Run(ctx, "vision.extract", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "vision extract", err)
	}

	var reply featureReply
	if err := json.Unmarshal([]byte(extractJSONObject(response.Response)), &reply); err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "parse vision reply", err)
	}

	record := c.normalizer.NormalizeRecord(domain.FeatureRecord{
		Breed:               reply.Breed,
		Colors:              reply.Colors,
		Patterns:            reply.Patterns,
		DistinctiveFeatures: reply.DistinctiveFeatures,
		EstimatedAge:        domain.AgeClass(reply.EstimatedAge),
		Size:                domain.SizeClass(reply.Size),
	})
	return &record, nil
}

// extractJSONObject trims any prose the model wraps around its JSON body.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
