package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitcheck/internal/calculator"
	"github.com/mmynk/splitcheck/internal/images"
	"github.com/mmynk/splitcheck/internal/service"
	"github.com/mmynk/splitcheck/internal/storage"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// respondJSON encodes before writing the status so that an unencodable body
// becomes a 500 instead of a success status with an empty body.
func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Failed to encode response","error":"internal server error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func respondWithError(w http.ResponseWriter, status int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	respondJSON(w, status, errorResponse{Message: message, Error: errMsg})
}

// respondWithServiceError maps domain errors to HTTP statuses. Anything not
// recognized is a 500 and its detail is kept out of the response.
func respondWithServiceError(w http.ResponseWriter, message string, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondWithError(w, http.StatusNotFound, message, err)
	case errors.Is(err, calculator.ErrMissingName),
		errors.Is(err, calculator.ErrNoValidProducts),
		errors.Is(err, calculator.ErrInvalidSharers),
		errors.Is(err, calculator.ErrAmountOutOfRange),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrInvalidFriend),
		errors.Is(err, errBadRequest):
		respondWithError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, images.ErrTooLarge), errors.As(err, &maxBytes):
		respondWithError(w, http.StatusRequestEntityTooLarge, message, err)
	case errors.Is(err, images.ErrUnsupportedType):
		respondWithError(w, http.StatusUnsupportedMediaType, message, err)
	default:
		slog.Error(message, "error", err)
		respondWithError(w, http.StatusInternalServerError, message, errors.New("internal server error"))
	}
}
