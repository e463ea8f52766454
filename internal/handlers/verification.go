// internal/handlers/verification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/i18n"
	"github.com/javajoker/dpp-backend/internal/services"
	"github.com/javajoker/dpp-backend/internal/utils"
)

type VerificationHandler struct {
	store               *fixtures.Store
	verificationService *services.VerificationService
}

func NewVerificationHandler(store *fixtures.Store, verificationService *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{
		store:               store,
		verificationService: verificationService,
	}
}

// GET /verify?hash=&owner_id=&product_id=
func (h *VerificationHandler) VerifyCertificate(c *gin.Context) {
	hash := c.Query("hash")
	if hash == "" {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyVerificationMissing), nil)
		return
	}

	productID := c.Query("product_id")
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		// Default to the manufacturer's record of the first owner.
		if ownership, ok := h.store.Ownership(productID); ok {
			ownerID = ownership.Ownership.CurrentOwner.ClientID
		}
	}

	respondVerification(c, h.verificationService.Verify(productID, hash, ownerID))
}

// respondVerification always answers 200; validity is part of the result.
func respondVerification(c *gin.Context, result *services.VerificationResult) {
	key := i18n.KeyVerificationInvalid
	if result.IsValid {
		key = i18n.KeyVerificationValid
	}

	utils.MessageResponse(c, result, key)
}
