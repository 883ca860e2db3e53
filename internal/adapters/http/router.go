package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/feralmap/catwatch/internal/config"
	"github.com/feralmap/catwatch/internal/core/domain"
	"github.com/feralmap/catwatch/internal/core/ports"
	"github.com/feralmap/catwatch/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg      config.Config
	identify ports.IdentityProposer
	record   ports.SightingRecorder
	catalog  ports.CatalogReader
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	identify ports.IdentityProposer,
	record ports.SightingRecorder,
	catalog ports.CatalogReader,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		identify: identify,
		record:   record,
		catalog:  catalog,
		metrics:  serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/identifications", rt.proposeIdentity)
	mux.HandleFunc("/v1/sightings", rt.commitSighting)
	mux.HandleFunc("/v1/cats", rt.listCats)
	mux.HandleFunc("/v1/cats/", rt.getCatByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureQueueWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) proposeIdentity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.capUploadSize(w, r)

	photo, err := readPhotoField(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if photo == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'photo' is required"})
		return
	}

	latitude, longitude, err := parseCoordinates(r.FormValue("latitude"), r.FormValue("longitude"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	outcome, err := rt.identify.ProposeIdentity(r.Context(), photo, latitude, longitude)
	if err != nil {
		if rt.metrics != nil && domain.IsKind(err, domain.ErrExtractionFailed) {
			rt.metrics.RecordExtractionFailure(serviceName)
		}
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordIdentification(serviceName, outcome.IsLikelySameCat, outcome.Score)
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (rt *Router) commitSighting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.capUploadSize(w, r)

	photo, err := readPhotoField(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	latitude, longitude, err := parseCoordinates(r.FormValue("latitude"), r.FormValue("longitude"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	req := domain.CommitRequest{
		Decision:    domain.Decision(strings.TrimSpace(r.FormValue("decision"))),
		CatID:       strings.TrimSpace(r.FormValue("cat_id")),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Photo:       photo,
		Latitude:    latitude,
		Longitude:   longitude,
		SubmitterID: strings.TrimSpace(r.Header.Get("X-User-Id")),
		Notes:       r.FormValue("notes"),
	}

	cat, err := rt.record.Commit(r.Context(), req)
	if rt.metrics != nil {
		rt.metrics.RecordCommit(serviceName, string(req.Decision), err)
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, cat)
}

type catSummary struct {
	domain.Cat
	Activity *domain.CatActivity `json:"activity,omitempty"`
}

func (rt *Router) listCats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	cats, activity, err := rt.catalog.ListCats(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	summaries := make([]catSummary, 0, len(cats))
	for i := range cats {
		summary := catSummary{Cat: cats[i]}
		if entry, ok := activity[cats[i].ID]; ok {
			summary.Activity = &entry
		}
		summaries = append(summaries, summary)
	}
	writeJSON(w, http.StatusOK, map[string]any{"cats": summaries})
}

func (rt *Router) getCatByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/cats/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cat id is required"})
		return
	}

	cat, sightings, err := rt.catalog.GetCat(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cat": cat, "sightings": sightings})
}

func (rt *Router) capUploadSize(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}
}

// readPhotoField returns nil without error when the part is absent; the
// commit path decides per decision whether a photo is mandatory.
func readPhotoField(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("invalid multipart form")
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read 'photo' part")
	}
	return photo, nil
}

func parseCoordinates(latRaw, lngRaw string) (float64, float64, error) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return 0, 0, errors.New("field 'latitude' must be a decimal degree value")
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return 0, 0, errors.New("field 'longitude' must be a decimal degree value")
	}
	return latitude, longitude, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

const backpressureQueueWait = 100 * time.Millisecond
