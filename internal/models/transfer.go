// internal/models/transfer.go
package models

import "time"

type TransferRequest struct {
	TransferID     string         `json:"transferId"`
	TransferCode   string         `json:"transferCode"`
	ProductID      string         `json:"productId"`
	CertificateID  string         `json:"certificateId"`
	CurrentOwnerID string         `json:"currentOwnerId"`
	NewOwnerEmail  string         `json:"newOwnerEmail,omitempty"`
	NewOwnerName   string         `json:"newOwnerName,omitempty"`
	Status         TransferStatus `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	ExpiresAt      time.Time      `json:"expiresAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	ApprovalToken  string         `json:"approvalToken,omitempty"`
}

// IsExpired reports whether now is past the request's expiry.
func (t *TransferRequest) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Public strips the approval secret before the request leaves the owner's hands.
func (t TransferRequest) Public() TransferRequest {
	t.ApprovalToken = ""
	return t
}

// TransferQRData is the payload encoded into a claim QR code.
type TransferQRData struct {
	Type          string    `json:"type"`
	TransferID    string    `json:"transferId"`
	ProductID     string    `json:"productId"`
	CertificateID string    `json:"certificateId"`
	Timestamp     time.Time `json:"timestamp"`
	ClaimURL      string    `json:"claimUrl"`
}
