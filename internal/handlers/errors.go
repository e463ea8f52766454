// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/dpp-backend/internal/i18n"
	"github.com/javajoker/dpp-backend/internal/services"
	"github.com/javajoker/dpp-backend/internal/utils"
)

// respondError writes the API error for a service failure. Typed workflow
// errors carry their kind to the response table; anything else is an
// internal error.
func respondError(c *gin.Context, err error) {
	var te *services.TransferError
	if !errors.As(err, &te) {
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	resource := "transfer"
	if te.TransferID == "" && te.ProductID != "" {
		resource = "product"
	}
	utils.WorkflowErrorResponse(c, string(te.Kind), resource, te.Error(), gin.H{
		"kind":       te.Kind,
		"transferId": te.TransferID,
		"productId":  te.ProductID,
	})
}

// bindJSON decodes and validates a request body, writing the error response
// itself. It reports whether the handler should continue.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}

	return true
}
