package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/services"
)

type SetProductHandler struct {
	log               *logger.Logger
	setProductService services.SetProductService
}

func NewSetProductHandler(log *logger.Logger, setProductService services.SetProductService) *SetProductHandler {
	return &SetProductHandler{
		log:                log.With("handler", "SetProductHandler"),
		setProductService: setProductService,
	}
}

type attachProductsRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required"`
}

// POST /api/catalog-sets/:id/products
//
// Replaces the set's membership with the given product list.
func (h *SetProductHandler) AttachProducts(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req attachProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.setProductService.SyncProducts(c.Request.Context(), nil, setID, req.ProductIDs); err != nil {
		h.log.Warn("AttachProducts failed", "error", err, "set_id", setID)
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/catalog-sets/:id/products
func (h *SetProductHandler) ListSetProducts(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rows, err := h.setProductService.ListProducts(c.Request.Context(), nil, setID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"products": rows})
}

type reorderProductsRequest struct {
	Products []struct {
		ID    uuid.UUID `json:"id" binding:"required"`
		Order int       `json:"order"`
	} `json:"products" binding:"required"`
}

// POST /api/catalog-sets/:id/products/reorder
func (h *SetProductHandler) ReorderSetProducts(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req reorderProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	moves := make([]services.ProductMove, 0, len(req.Products))
	for _, p := range req.Products {
		moves = append(moves, services.ProductMove{ProductID: p.ID, Order: p.Order})
	}
	if err := h.setProductService.ReorderProducts(c.Request.Context(), nil, setID, moves); err != nil {
		h.log.Warn("ReorderSetProducts failed", "error", err, "set_id", setID)
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type fixOrderRequest struct {
	SetIDs    []uuid.UUID `json:"set_ids" binding:"required"`
	ProductID uuid.UUID   `json:"product_id" binding:"required"`
}

// POST /api/catalog-sets/fix-order
//
// Maintenance endpoint that appends a product to the end of each listed
// set's ordering, used after bulk imports leave memberships unordered.
func (h *SetProductHandler) FixOrder(c *gin.Context) {
	var req fixOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.setProductService.FixOrderForSets(c.Request.Context(), nil, req.SetIDs, req.ProductID); err != nil {
		h.log.Warn("FixOrder failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
