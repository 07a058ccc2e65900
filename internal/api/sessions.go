package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mmynk/splitcheck/internal/images"
	"github.com/mmynk/splitcheck/internal/models"
	"github.com/mmynk/splitcheck/internal/service"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

type sessionResponse struct {
	Session *models.Session `json:"session"`
}

type createSessionResponse struct {
	Message string          `json:"message"`
	Session *models.Session `json:"session"`
}

type summaryResponse struct {
	Summary *models.Summary `json:"summary"`
}

// CreateSession handles POST /api/sessions. The body is a multipart form
// (needed for the bill image) or a urlencoded form.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)

	params, closeImage, err := parseSessionForm(r)
	if err != nil {
		respondWithServiceError(w, "Invalid session form", err)
		return
	}
	defer closeImage()

	ctx := images.WithBaseURL(r.Context(), serverOrigin(r))
	session, err := h.sessions.CreateSession(ctx, params, h.clientBaseURL(r))
	if err != nil {
		respondWithServiceError(w, "Failed to create session", err)
		return
	}

	respondJSON(w, http.StatusCreated, createSessionResponse{
		Message: "Session created successfully",
		Session: session,
	})
}

// GetSession handles GET /api/sessions/{sessionId}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.sessions.GetSession(r.Context(), sessionID, h.clientBaseURL(r))
	if err != nil {
		respondWithServiceError(w, "Session not available", err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Session: session})
}

// GetSummary handles GET /api/sessions/{sessionId}/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	summary, err := h.sessions.Summary(r.Context(), sessionID)
	if err != nil {
		respondWithServiceError(w, "Summary not available", err)
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

// DeleteSession handles DELETE /api/sessions/{sessionId}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.sessions.DeleteSession(r.Context(), sessionID); err != nil {
		respondWithServiceError(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseSessionForm reads the creation form. The returned func closes the
// uploaded image, if any, and is always safe to call.
func parseSessionForm(r *http.Request) (service.CreateSessionParams, func(), error) {
	var params service.CreateSessionParams
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return params, noop, formError(err)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return params, noop, formError(err)
		}
	default:
		return params, noop, fmt.Errorf("%w: expected multipart/form-data or application/x-www-form-urlencoded", errBadRequest)
	}

	total, err := formFloat(r, "totalOrderAmount")
	if err != nil {
		return params, noop, err
	}
	if total == nil {
		return params, noop, fmt.Errorf("%w: totalOrderAmount is required", service.ErrInvalidSession)
	}
	params.TotalOrderAmount = *total

	if params.TaxPercentage, err = formFloat(r, "taxPercentage"); err != nil {
		return params, noop, err
	}
	if params.ServicePercentage, err = formFloat(r, "servicePercentage"); err != nil {
		return params, noop, err
	}
	if params.DeliveryFee, err = formFloat(r, "deliveryFee"); err != nil {
		return params, noop, err
	}
	if params.NumberOfFriends, err = formInt(r, "numberOfFriends"); err != nil {
		return params, noop, err
	}
	params.InstaPayURL = r.PostFormValue("instaPayURL")

	if r.MultipartForm == nil {
		return params, noop, nil
	}
	file, _, err := r.FormFile("billImage")
	if errors.Is(err, http.ErrMissingFile) {
		return params, noop, nil
	}
	if err != nil {
		return params, noop, formError(err)
	}
	params.BillImage = file
	return params, func() { file.Close() }, nil
}

// formError keeps body size overflows distinguishable from other parse errors.
func formError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated form", errBadRequest)
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func formFloat(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s must be a number", service.ErrInvalidSession, key)
	}
	return &v, nil
}

func formInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.PostFormValue(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a whole number", service.ErrInvalidSession, key)
	}
	return &v, nil
}
