package handler

import (
	"context"
	"fmt"
	"net/http"

	"addrcore/internal/model"

	"github.com/gin-gonic/gin"
)

// AddressResolver resolves single and bulk addresses
type AddressResolver interface {
	Resolve(ctx context.Context, raw string) model.AddressResolutionResult
	ResolveBulk(ctx context.Context, items []model.BulkItem) *model.BulkResponse
}

// AddressHandler handles address resolution HTTP requests
type AddressHandler struct {
	resolver     AddressResolver
	maxBulkItems int
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(resolver AddressResolver, maxBulkItems int) *AddressHandler {
	return &AddressHandler{
		resolver:     resolver,
		maxBulkItems: maxBulkItems,
	}
}

// Resolve handles POST /api/v1/address/resolve
func (h *AddressHandler) Resolve(c *gin.Context) {
	var req model.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Invalid and warning outcomes are regular results, not HTTP errors
	result := h.resolver.Resolve(c.Request.Context(), req.Address)
	c.JSON(http.StatusOK, result)
}

// ResolveBulk handles POST /api/v1/address/bulk
func (h *AddressHandler) ResolveBulk(c *gin.Context) {
	var req model.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items provided"})
		return
	}
	if h.maxBulkItems > 0 && len(req.Items) > h.maxBulkItems {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Too many items: %d (max %d)", len(req.Items), h.maxBulkItems)})
		return
	}

	response := h.resolver.ResolveBulk(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, response)
}
