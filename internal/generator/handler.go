package generator

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/smishing-defense/backend/internal/models"
)

// GenerateRequest is the body of POST /api/admin/generate-messages.
type GenerateRequest struct {
	Count           int `json:"count"`
	SuspiciousCount int `json:"suspiciousCount"`
}

// GenerateResponse returns the generated messages for review. Messages
// are not assigned ids or added to the served catalog automatically.
type GenerateResponse struct {
	Success      bool               `json:"success"`
	Model        string             `json:"model"`
	Messages     []GeneratedMessage `json:"messages"`
	PromptTokens int                `json:"promptTokens"`
	OutputTokens int                `json:"outputTokens"`
}

type Handler struct {
	generator *Generator
}

func NewHandler(generator *Generator) *Handler {
	return &Handler{generator: generator}
}

func (h *Handler) GenerateMessages(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Count <= 0 {
		req.Count = 6
	}
	if req.Count > 20 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "count must be at most 20"})
		return
	}
	if req.SuspiciousCount <= 0 {
		req.SuspiciousCount = (req.Count + 1) / 2
	}
	if req.SuspiciousCount > req.Count {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "suspiciousCount cannot exceed count"})
		return
	}

	batch, usage, err := h.generator.GenerateMessages(r.Context(), req.Count, req.SuspiciousCount)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Model returned an invalid batch: " + verr.Error()})
			return
		}
		log.Printf("[generator] batch generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Generation failed"})
		return
	}

	resp := GenerateResponse{
		Success:  true,
		Model:    h.generator.ModelName(),
		Messages: batch.Messages,
	}
	if usage != nil {
		resp.PromptTokens = usage.PromptTokens
		resp.OutputTokens = usage.OutputTokens
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
