// internal/handlers/transfer.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/dpp-backend/internal/i18n"
	"github.com/javajoker/dpp-backend/internal/models"
	"github.com/javajoker/dpp-backend/internal/services"
	"github.com/javajoker/dpp-backend/internal/utils"
)

type TransferHandler struct {
	transferService *services.TransferService
}

func NewTransferHandler(transferService *services.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

type ApproveTransferRequest struct {
	ApprovalToken string `json:"approvalToken" validate:"required"`
}

type UpdateTransferStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected completed"`
}

// POST /transfers
// The response carries the approval token; it is only ever returned to the
// owner who created the request.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req services.CreateTransferInput
	if !bindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, transfer, i18n.KeyTransferCreated)
}

// GET /transfers
func (h *TransferHandler) GetTransfers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	status := models.TransferStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "status"), nil)
		return
	}

	transfers, err := h.transferService.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	// List is newest first.
	if params.Order == "asc" {
		for i, j := 0, len(transfers)-1; i < j; i, j = i+1, j-1 {
			transfers[i], transfers[j] = transfers[j], transfers[i]
		}
	}

	start, end := utils.PageBounds(len(transfers), params)
	page := make([]models.TransferRequest, 0, end-start)
	for _, t := range transfers[start:end] {
		page = append(page, t.Public())
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(page, int64(len(transfers)), params))
}

// GET /transfers/:id
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	transfer, err := h.transferService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, transfer.Public())
}

// GET /transfers/code/:code
func (h *TransferHandler) LookupByCode(c *gin.Context) {
	code := c.Param("code")
	if !utils.IsTransferCode(code) {
		utils.BadRequestResponse(c, h.message(c, i18n.KeyTransferInvalidCode), nil)
		return
	}

	transfer, err := h.transferService.LookupByCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, transfer.Public())
}

// GET /transfers/:id/claim-link
func (h *TransferHandler) GetClaimLink(c *gin.Context) {
	link, err := h.transferService.ClaimLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, link)
}

// GET /transfers/claim-link/:token
func (h *TransferHandler) ResolveClaimLink(c *gin.Context) {
	transfer, err := h.transferService.ResolveClaimToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if services.KindOf(err) == services.KindInvalidInput {
			utils.BadRequestResponse(c, h.message(c, i18n.KeyTransferInvalidClaimLink), nil)
			return
		}
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, transfer.Public())
}

// POST /transfers/claim
func (h *TransferHandler) ClaimTransfer(c *gin.Context) {
	var req services.ClaimInput
	if !bindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.Claim(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, transfer.Public(), i18n.KeyTransferClaimed)
}

// POST /transfers/:id/approve
func (h *TransferHandler) ApproveTransfer(c *gin.Context) {
	var req ApproveTransferRequest
	if !bindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.Approve(c.Request.Context(), c.Param("id"), req.ApprovalToken)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, transfer.Public(), i18n.KeyTransferApproved)
}

// POST /transfers/:id/reject
func (h *TransferHandler) RejectTransfer(c *gin.Context) {
	transfer, err := h.transferService.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, transfer.Public(), i18n.KeyTransferRejected)
}

// PUT /transfers/:id/status
// Only rejection is reachable here. Approval needs the owner's token and
// completion writes the ownership record, so both keep their own routes.
func (h *TransferHandler) UpdateStatus(c *gin.Context) {
	var req UpdateTransferStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if models.TransferStatus(req.Status) != models.TransferStatusRejected {
		utils.WorkflowErrorResponse(c, string(services.KindInvalidTransition), "transfer", "", gin.H{
			"kind":       services.KindInvalidTransition,
			"transferId": c.Param("id"),
			"status":     req.Status,
		})
		return
	}

	transfer, err := h.transferService.UpdateStatus(c.Request.Context(), c.Param("id"), models.TransferStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, transfer.Public())
}

// POST /transfers/:id/complete
func (h *TransferHandler) CompleteTransfer(c *gin.Context) {
	var req services.CompleteInput
	// An empty body means a generated owner id.
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	result, err := h.transferService.Complete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	public := result.Transfer.Public()
	utils.MessageResponse(c, services.CompletionResult{
		Transfer:  &public,
		Ownership: result.Ownership,
	}, i18n.KeyTransferCompleted)
}

func (h *TransferHandler) message(c *gin.Context, key string) string {
	return i18n.T(utils.GetLangFromContext(c), key)
}
