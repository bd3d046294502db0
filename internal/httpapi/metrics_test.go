package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestStatusRecorderCapturesCode(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.WriteHeader(http.StatusTeapot)
	if rec.status != http.StatusTeapot {
		t.Fatalf("status=%d", rec.status)
	}
}

func TestStatusRecorderImplicitOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	if _, err := rec.Write([]byte("hi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.status != http.StatusOK {
		t.Fatalf("status=%d", rec.status)
	}
}

func TestRoutePatternOrPath(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/widgets/{id}", func(w http.ResponseWriter, req *http.Request) {
		got = routePatternOrPath(req)
	})
	req := httptest.NewRequest(http.MethodGet, "/widgets/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if got != "/widgets/{id}" {
		t.Fatalf("pattern=%q", got)
	}

	// No chi context: falls back to the raw path.
	plain := httptest.NewRequest(http.MethodGet, "/raw/path", nil)
	if p := routePatternOrPath(plain); p != "/raw/path" {
		t.Fatalf("path=%q", p)
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("ok"))
	})
	w := httptest.NewRecorder()
	MetricsMiddleware(inner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	h := NewMux(&mockService{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
