// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess           = "success"
	KeyError             = "error"
	KeyInternalError     = "error.internal"
	KeyRateLimited       = "error.rate_limited"
	KeyValidationInvalid = "validation.invalid"

	// Products
	KeyProductNotFound = "product.not_found"

	// Ownership
	KeyOwnershipNotFound      = "ownership.not_found"
	KeyOwnershipActivated     = "ownership.activated"
	KeyOwnershipAlreadyActive = "ownership.already_active"
	KeyOwnershipNotActivated  = "ownership.not_activated"
	KeyOwnershipUpdated       = "ownership.updated"

	// Transfers
	KeyTransferNotFound          = "transfer.not_found"
	KeyTransferCreated           = "transfer.created"
	KeyTransferClaimed           = "transfer.claimed"
	KeyTransferApproved          = "transfer.approved"
	KeyTransferRejected          = "transfer.rejected"
	KeyTransferCompleted         = "transfer.completed"
	KeyTransferAlreadyCompleted  = "transfer.already_completed"
	KeyTransferAlreadyRejected   = "transfer.already_rejected"
	KeyTransferExpired           = "transfer.expired"
	KeyTransferTokenMismatch     = "transfer.token_mismatch"
	KeyTransferInvalidTransition = "transfer.invalid_transition"
	KeyTransferInvalidCode       = "transfer.invalid_code"
	KeyTransferInvalidClaimLink  = "transfer.invalid_claim_link"

	// Verification
	KeyVerificationValid   = "verification.valid"
	KeyVerificationInvalid = "verification.invalid"
	KeyVerificationMissing = "verification.missing_hash"
)
