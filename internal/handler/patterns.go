package handler

import (
	"context"
	"net/http"

	"addrcore/internal/model"

	"github.com/gin-gonic/gin"
)

// PatternRegistrar stores detail patterns
type PatternRegistrar interface {
	BatchUpsertPatterns(ctx context.Context, patterns []model.DetailPattern) (int, []string)
}

// PatternHandler handles pattern-related HTTP requests
type PatternHandler struct {
	store PatternRegistrar
}

// NewPatternHandler creates a new pattern handler
func NewPatternHandler(store PatternRegistrar) *PatternHandler {
	return &PatternHandler{
		store: store,
	}
}

// BatchUpsert handles POST /api/v1/patterns/batch
func (h *PatternHandler) BatchUpsert(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Pattern store is not configured"})
		return
	}

	var req model.PatternBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Patterns) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No patterns provided"})
		return
	}

	success, errs := h.store.BatchUpsertPatterns(c.Request.Context(), req.Patterns)

	response := model.PatternBatchResponse{
		Success: success,
		Failed:  len(req.Patterns) - success,
		Errors:  errs,
	}

	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
