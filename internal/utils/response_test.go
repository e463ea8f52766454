// internal/utils/response_test.go
package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/dpp-backend/internal/i18n"
)

func renderWorkflowError(t *testing.T, kind, resource, message string) (int, APIResponse) {
	t.Helper()
	require.NoError(t, i18n.Initialize("", "en"))
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("lang", "en")
	WorkflowErrorResponse(c, kind, resource, message, nil)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return w.Code, resp
}

func TestWorkflowErrorResponse(t *testing.T) {
	cases := []struct {
		kind   string
		status int
		code   string
	}{
		{"already_completed", http.StatusConflict, "ALREADY_COMPLETED"},
		{"rejected", http.StatusConflict, "REJECTED"},
		{"expired", http.StatusGone, "EXPIRED"},
		{"token_mismatch", http.StatusForbidden, "TOKEN_MISMATCH"},
		{"invalid_transition", http.StatusConflict, "INVALID_TRANSITION"},
		{"already_active", http.StatusConflict, "ALREADY_ACTIVE"},
		{"not_activated", http.StatusConflict, "NOT_ACTIVATED"},
		{"hash_mismatch", http.StatusUnprocessableEntity, "VERIFICATION_FAILED"},
		{"fixture_inconsistency", http.StatusUnprocessableEntity, "VERIFICATION_FAILED"},
		{"invalid_input", http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"something_else", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			status, resp := renderWorkflowError(t, tc.kind, "transfer", "raw detail")
			assert.Equal(t, tc.status, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

func TestWorkflowErrorResponseMessages(t *testing.T) {
	_, resp := renderWorkflowError(t, "not_found", "product", "")
	assert.Equal(t, i18n.T("en", i18n.KeyProductNotFound), resp.Error.Message)

	_, resp = renderWorkflowError(t, "not_found", "transfer", "")
	assert.Equal(t, i18n.T("en", i18n.KeyTransferNotFound), resp.Error.Message)

	_, resp = renderWorkflowError(t, "expired", "transfer", "raw detail")
	assert.Equal(t, i18n.T("en", i18n.KeyTransferExpired), resp.Error.Message)

	// Kinds without a translation keep the caller's message.
	_, resp = renderWorkflowError(t, "invalid_input", "transfer", "clientId is malformed")
	assert.Equal(t, "clientId is malformed", resp.Error.Message)
}

func TestCreatedResponseCarriesMessage(t *testing.T) {
	require.NoError(t, i18n.Initialize("", "en"))
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	CreatedResponse(c, gin.H{"id": "x"}, i18n.KeyTransferCreated)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool              `json:"success"`
		Meta    map[string]string `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, i18n.T("en", i18n.KeyTransferCreated), resp.Meta["message"])
}
