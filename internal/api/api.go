// Package api exposes the bill sessions over a JSON REST interface.
package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mmynk/splitcheck/internal/metrics"
	"github.com/mmynk/splitcheck/internal/service"
	"github.com/mmynk/splitcheck/internal/storage"
)

// defaultMaxUpload applies when no image uploader is configured.
const defaultMaxUpload = 5 << 20

// formOverhead is allowed on top of the image limit for the other form fields.
const formOverhead = 1 << 20

// Handler serves the REST routes.
type Handler struct {
	sessions *service.SessionService
	friends  *service.FriendService
	store    storage.Store

	// baseURL is the web client's origin for session links. Empty means
	// "use the request's Origin header".
	baseURL   string
	maxUpload int64
}

// Options configure NewHandler.
type Options struct {
	PublicBaseURL string
	MaxImageBytes int64
}

// NewHandler creates a Handler over the two services. store is only used by
// the health check.
func NewHandler(sessions *service.SessionService, friends *service.FriendService, store storage.Store, opts Options) *Handler {
	maxUpload := opts.MaxImageBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{
		sessions:  sessions,
		friends:   friends,
		store:     store,
		baseURL:   strings.TrimRight(opts.PublicBaseURL, "/"),
		maxUpload: maxUpload,
	}
}

// RouterOptions select the optional routes.
type RouterOptions struct {
	// Metrics enables GET /metrics when non-nil.
	Metrics *metrics.Metrics
	// UploadDir serves locally stored bill images under /uploads/ when set.
	UploadDir string
	// Middleware runs on every matched route, outermost first.
	Middleware []mux.MiddlewareFunc
}

// NewRouter registers every route on a fresh gorilla/mux router.
func NewRouter(h *Handler, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(h.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)
	for _, mw := range opts.Middleware {
		router.Use(mw)
	}

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}
	if opts.UploadDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir)))
		router.PathPrefix("/uploads/").Handler(noDirListing(files)).Methods(http.MethodGet, http.MethodHead)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionId}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}", h.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{sessionId}/summary", h.GetSummary).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}/friends", h.JoinSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionId}/friends/{friendId}/payment", h.UpdatePayment).Methods(http.MethodPatch)

	return router
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "Route not found", nil)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// clientBaseURL is the web client's origin for join links: the configured
// public URL, else the browser's Origin header, else "" so the client builds
// the link itself.
func (h *Handler) clientBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "null" {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// serverOrigin is the origin the client used to reach this server, honoring
// proxy forwarding headers. Locally stored images are served from it.
func serverOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
