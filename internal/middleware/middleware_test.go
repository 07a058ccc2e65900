package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/splitcheck/internal/metrics"
)

func testRouter(mws ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	for _, mw := range mws {
		r.Use(mw)
	}
	r.HandleFunc("/api/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["sessionId"] == "missing" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

// captureLogs swaps the default logger for a JSON logger writing to a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogging(t *testing.T) {
	tests := []struct {
		path      string
		wantLevel string
		wantCode  float64
	}{
		{"/api/sessions/abc", "INFO", 200},
		{"/api/sessions/missing", "WARN", 404},
		{"/boom", "ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf := captureLogs(t)
			router := testRouter(Logging)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["status"] != tt.wantCode {
				t.Errorf("status = %v, want %v", entry["status"], tt.wantCode)
			}
			if tt.path != "/boom" && entry["route"] != "/api/sessions/{sessionId}" {
				t.Errorf("route = %v, want template", entry["route"])
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	router := testRouter(Metrics(m))

	for _, path := range []string{"/api/sessions/a", "/api/sessions/b", "/api/sessions/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	const tmpl = "/api/sessions/{sessionId}"
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", tmpl, "200")); got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", tmpl, "404")); got != 1 {
		t.Errorf("404 count = %v, want 1", got)
	}
}

func TestMetricsNil(t *testing.T) {
	router := testRouter(Metrics(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/a", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("wildcard", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anything.test")
		CORS([]string{"*"})(ok).ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d, handler not reached", rec.Code)
		}
	})

	t.Run("allow list", func(t *testing.T) {
		handler := CORS([]string{"https://app.test"})(ok)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.test")
		handler.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.test" {
			t.Errorf("Allow-Origin = %q", got)
		}

		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.test")
		handler.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want none", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/sessions/x/friends/y/payment", nil)
		CORS(nil)(ok).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
			t.Errorf("Allow-Methods missing PATCH: %q", rec.Header().Get("Access-Control-Allow-Methods"))
		}
	})
}
