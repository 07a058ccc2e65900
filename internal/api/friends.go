package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/splitcheck/internal/models"
	"github.com/mmynk/splitcheck/internal/service"
)

// maxJSONBody bounds join and payment request bodies.
const maxJSONBody = 1 << 20

type joinResponse struct {
	Message string         `json:"message"`
	Friend  *models.Friend `json:"friend"`
}

type updatePaymentRequest struct {
	HasPaid *bool `json:"hasPaid"`
}

// JoinSession handles POST /api/sessions/{sessionId}/friends.
func (h *Handler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req service.JoinParams
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "Invalid request body", err)
		return
	}

	friend, err := h.friends.Join(r.Context(), sessionID, req)
	if err != nil {
		respondWithServiceError(w, "Failed to join session", err)
		return
	}

	respondJSON(w, http.StatusCreated, joinResponse{
		Message: "Joined session successfully",
		Friend:  friend,
	})
}

// UpdatePayment handles PATCH /api/sessions/{sessionId}/friends/{friendId}/payment.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req updatePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "Invalid request body", err)
		return
	}
	if req.HasPaid == nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", errors.New("hasPaid is required"))
		return
	}

	if err := h.friends.UpdatePayment(r.Context(), vars["sessionId"], vars["friendId"], *req.HasPaid); err != nil {
		respondWithServiceError(w, "Failed to update payment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
