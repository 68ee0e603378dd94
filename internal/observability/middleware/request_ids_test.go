package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestAndTraceGeneratesIDs(t *testing.T) {
	var reqID, traceID string
	h := WithRequestAndTrace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = RequestIDFromContext(r.Context())
		traceID = TraceIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(reqID) != 16 || len(traceID) != 16 {
		t.Fatalf("expected 16 hex char ids, got %q and %q", reqID, traceID)
	}
	if w.Header().Get("X-Request-ID") != reqID || w.Header().Get("X-Trace-ID") != traceID {
		t.Fatalf("ids not echoed on the response")
	}
}

func TestWithRequestAndTraceKeepsIncomingIDs(t *testing.T) {
	var reqID string
	h := WithRequestAndTrace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if reqID != "abc" || w.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("expected incoming request id to be kept, got %q", reqID)
	}
}
