// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/dpp-backend/internal/i18n"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// outcome is the HTTP rendering of a workflow error kind. An empty key means
// the error's own message is shown.
type outcome struct {
	status int
	code   string
	key    string
}

// workflowOutcomes maps transfer and ownership error kinds to responses.
// not_found is resolved per resource.
var workflowOutcomes = map[string]outcome{
	"already_completed":     {http.StatusConflict, "ALREADY_COMPLETED", i18n.KeyTransferAlreadyCompleted},
	"rejected":              {http.StatusConflict, "REJECTED", i18n.KeyTransferAlreadyRejected},
	"expired":               {http.StatusGone, "EXPIRED", i18n.KeyTransferExpired},
	"token_mismatch":        {http.StatusForbidden, "TOKEN_MISMATCH", i18n.KeyTransferTokenMismatch},
	"invalid_transition":    {http.StatusConflict, "INVALID_TRANSITION", i18n.KeyTransferInvalidTransition},
	"already_active":        {http.StatusConflict, "ALREADY_ACTIVE", i18n.KeyOwnershipAlreadyActive},
	"not_activated":         {http.StatusConflict, "NOT_ACTIVATED", i18n.KeyOwnershipNotActivated},
	"hash_mismatch":         {http.StatusUnprocessableEntity, "VERIFICATION_FAILED", i18n.KeyVerificationInvalid},
	"fixture_inconsistency": {http.StatusUnprocessableEntity, "VERIFICATION_FAILED", i18n.KeyVerificationInvalid},
	"invalid_input":         {http.StatusUnprocessableEntity, "INVALID_INPUT", ""},
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// MessageResponse answers 200 with data and a translated message in meta.
func MessageResponse(c *gin.Context, data interface{}, messageKey string) {
	SuccessResponseWithMeta(c, data, gin.H{
		"message": i18n.T(GetLangFromContext(c), messageKey),
	})
}

func CreatedResponse(c *gin.Context, data interface{}, messageKey string) {
	resp := APIResponse{
		Success: true,
		Data:    data,
	}
	if messageKey != "" {
		resp.Meta = gin.H{"message": i18n.T(GetLangFromContext(c), messageKey)}
	}
	c.JSON(http.StatusCreated, resp)
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WorkflowErrorResponse renders a typed workflow failure. resource picks the
// not-found message ("product" or "transfer"); message is shown for kinds
// without a translation. Unknown kinds are internal errors.
func WorkflowErrorResponse(c *gin.Context, kind, resource, message string, details interface{}) {
	lang := GetLangFromContext(c)

	if kind == "not_found" {
		ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", i18n.T(lang, resource+".not_found"), details)
		return
	}

	out, ok := workflowOutcomes[kind]
	if !ok {
		InternalErrorResponse(c, "")
		return
	}
	if out.key != "" {
		message = i18n.T(lang, out.key)
	}
	ErrorResponse(c, out.status, out.code, message, details)
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func NotFoundResponse(c *gin.Context, resource string) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, resource+".not_found")
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyInternalError)
	}
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, errors)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// GetLangFromContext returns the locale chosen by the i18n middleware.
func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok && langStr != "" {
			return langStr
		}
	}
	return "en"
}
