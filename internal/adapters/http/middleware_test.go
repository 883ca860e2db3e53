package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if seen == "" {
		t.Fatalf("expected a generated request id in context")
	}
	if res.Header().Get(requestIDHeader) != seen {
		t.Fatalf("response header %q does not match context id %q", res.Header().Get(requestIDHeader), seen)
	}
}

func TestRequestIDMiddlewareReusesCallerID(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "propose-commit-7")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if seen != "propose-commit-7" {
		t.Fatalf("expected caller id to be reused, got %q", seen)
	}
	if res.Header().Get(requestIDHeader) != "propose-commit-7" {
		t.Fatalf("expected caller id echoed in response, got %q", res.Header().Get(requestIDHeader))
	}
}

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	recorder := &statusRecorder{
		ResponseWriter: httptest.NewRecorder(),
		statusCode:     http.StatusOK,
	}

	recorder.WriteHeader(http.StatusNotFound)
	n, err := recorder.Write([]byte(`{"error":"cat not found"}`))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if recorder.statusCode != http.StatusNotFound {
		t.Fatalf("expected captured status 404, got %d", recorder.statusCode)
	}
	if recorder.bytesWritten != n {
		t.Fatalf("expected %d bytes recorded, got %d", n, recorder.bytesWritten)
	}
}

func TestAccessLogMiddlewarePassesResponseThrough(t *testing.T) {
	handler := accessLogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/cats", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusTeapot {
		t.Fatalf("expected wrapped status to pass through, got %d", res.Code)
	}
	if res.Body.String() != "short" {
		t.Fatalf("expected body to pass through, got %q", res.Body.String())
	}
}
