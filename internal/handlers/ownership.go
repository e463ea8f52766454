// internal/handlers/ownership.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/i18n"
	"github.com/javajoker/dpp-backend/internal/services"
	"github.com/javajoker/dpp-backend/internal/utils"
)

type OwnershipHandler struct {
	store               *fixtures.Store
	ownershipService    *services.OwnershipService
	verificationService *services.VerificationService
}

func NewOwnershipHandler(store *fixtures.Store, ownershipService *services.OwnershipService, verificationService *services.VerificationService) *OwnershipHandler {
	return &OwnershipHandler{
		store:               store,
		ownershipService:    ownershipService,
		verificationService: verificationService,
	}
}

// GET /products/:id/ownership
func (h *OwnershipHandler) GetOwnership(c *gin.Context) {
	productID := c.Param("id")
	if !h.store.HasProduct(productID) {
		utils.NotFoundResponse(c, "product")
		return
	}

	record, err := h.ownershipService.Get(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"ownership": record,
		"anchored":  h.verificationService.IsCertificateAnchored(productID),
		"network":   h.verificationService.Network(productID),
	})
}

// POST /products/:id/ownership/activate
func (h *OwnershipHandler) Activate(c *gin.Context) {
	var req services.ActivateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ProductID = c.Param("id")

	record, err := h.ownershipService.Activate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, record, i18n.KeyOwnershipActivated)
}

// GET /products/:id/ownership/verify
func (h *OwnershipHandler) VerifyOwnership(c *gin.Context) {
	result, err := h.verificationService.VerifyOwnership(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondVerification(c, result)
}

// POST /ownership/update
func (h *OwnershipHandler) UpdateOwnership(c *gin.Context) {
	var req services.OwnershipUpdate
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.ownershipService.ApplyUpdate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, record, i18n.KeyOwnershipUpdated)
}
