package stats

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/smishing-defense/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	var req models.SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.SaveProgressResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	userStats, err := h.service.RecordAttempt(req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, models.SaveProgressResponse{
				Success: false,
				Error:   verr.Error(),
			})
			return
		}
		log.Printf("[stats] failed to record attempt for user %s: %v", req.UserID, err)
		writeJSON(w, http.StatusInternalServerError, models.SaveProgressResponse{
			Success: false,
			Error:   "Failed to save progress",
		})
		return
	}

	writeJSON(w, http.StatusOK, models.SaveProgressResponse{
		Success:   true,
		Message:   "Progress saved successfully",
		UserStats: userStats,
	})
}

func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	user, err := h.service.GetUserStats(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// An unknown user is a normal lookup outcome, reported in the
			// envelope rather than the status code.
			writeJSON(w, http.StatusOK, models.UserStatsResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		log.Printf("[stats] failed to load stats for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.UserStatsResponse{
			Success: false,
			Error:   "Failed to retrieve stats",
		})
		return
	}

	writeJSON(w, http.StatusOK, models.UserStatsResponse{
		Success: true,
		User:    user,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
