package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nexusapp/nexus/internal/services"
)

// ShopPets returns the current hourly rotation.
func (h *Handlers) ShopPets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rotation := h.shopService.CurrentRotation()

	h.writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":      true,
		"pets":         rotation.Pets,
		"nextRotation": rotation.NextRotation.Format(time.RFC3339),
	})
}

type buyPetRequest struct {
	PetID string `json:"petId"`
}

type insufficientFundsPayload struct {
	Error    string `json:"error"`
	Required int    `json:"required"`
	Current  int    `json:"current"`
}

// BuyPet purchases a pet from the current rotation for the logged-in user.
func (h *Handlers) BuyPet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	sess := h.sessionFromRequest(ctx, r)
	if sess == nil {
		h.writeError(ctx, w, http.StatusUnauthorized, "Not logged in")
		return
	}

	var req buyPetRequest
	body := io.LimitReader(r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.PetID) == "" {
		h.writeError(ctx, w, http.StatusBadRequest, "Missing petId")
		return
	}

	result, err := h.shopService.Purchase(ctx, sess.UserID, req.PetID)
	if err != nil {
		var insufficient *services.InsufficientFundsError
		switch {
		case errors.Is(err, services.ErrPetNotInRotation):
			h.writeError(ctx, w, http.StatusNotFound, "Pet not in current shop rotation")
		case errors.As(err, &insufficient):
			h.writeJSON(ctx, w, http.StatusBadRequest, insufficientFundsPayload{
				Error:    "Insufficient NEX",
				Required: insufficient.Required,
				Current:  insufficient.Current,
			})
		default:
			logger.Error("purchase failed", "user_id", sess.UserID, "pet_id", req.PetID, "error", err)
			h.writeError(ctx, w, http.StatusInternalServerError, "Purchase failed")
		}
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    result.Pet.Name + " added to your inventory!",
		"newBalance": result.NewBalance,
		"pet":        result.Pet,
	})
}
