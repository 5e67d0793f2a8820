package handler

import (
	"context"
	"net/http"
	"strings"

	"addrcore/internal/model"

	"github.com/gin-gonic/gin"
)

// humanConfidence is stored with operator-entered corrections
const humanConfidence = 1.0

// CorrectionStore persists learned corrections
type CorrectionStore interface {
	SaveLearned(ctx context.Context, original, corrected string, class model.BuildingClass, correctionType string, confidence float64) error
}

// CorrectionHandler handles correction-related HTTP requests
type CorrectionHandler struct {
	store CorrectionStore
}

// NewCorrectionHandler creates a new correction handler
func NewCorrectionHandler(store CorrectionStore) *CorrectionHandler {
	return &CorrectionHandler{
		store: store,
	}
}

// Submit handles POST /api/v1/corrections
func (h *CorrectionHandler) Submit(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Correction store is not configured"})
		return
	}

	var req model.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Validate building class
	validClasses := map[model.BuildingClass]bool{
		model.BuildingStrictApartment:  true,
		model.BuildingRelaxedApartment: true,
		model.BuildingGeneral:          true,
	}
	if !validClasses[req.BuildingClass] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid building_class. Must be one of: strict_apartment, relaxed_apartment, general"})
		return
	}

	original := strings.TrimSpace(req.Original)
	corrected := strings.TrimSpace(req.Corrected)
	if original == "" || corrected == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "original and corrected must not be blank"})
		return
	}

	err := h.store.SaveLearned(c.Request.Context(), original, corrected, req.BuildingClass, model.CorrectionTypeHuman, humanConfidence)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save correction: " + err.Error()})
		return
	}

	response := model.CorrectionResponse{
		Success: true,
		Message: "Correction saved successfully",
	}

	c.JSON(http.StatusOK, response)
}
