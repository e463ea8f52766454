// internal/models/ownership.go
package models

import "time"

// OwnershipRecord is the mutable current-ownership state of one product.
type OwnershipRecord struct {
	ProductID         string                 `json:"productId"`
	Status            OwnershipStatus        `json:"status"`
	CurrentOwnerID    *string                `json:"currentOwnerId"`
	CurrentOwnerName  *string                `json:"currentOwnerName,omitempty"`
	CurrentOwnerEmail *string                `json:"currentOwnerEmail,omitempty"`
	ActivatedAt       *time.Time             `json:"activatedAt"`
	BlockchainHash    *string                `json:"blockchainHash"`
	TransactionID     *string                `json:"transactionId"`
	TransferHistory   []TransferHistoryEntry `json:"transferHistory"`
}

type TransferHistoryEntry struct {
	FromClientID  string    `json:"fromClientId"`
	ToClientID    string    `json:"toClientId"`
	TransferDate  time.Time `json:"transferDate"`
	TransactionID string    `json:"transactionId"`
}

// NewPendingOwnership is the record of a product nobody has activated yet.
func NewPendingOwnership(productID string) *OwnershipRecord {
	return &OwnershipRecord{
		ProductID:       productID,
		Status:          OwnershipStatusPending,
		TransferHistory: []TransferHistoryEntry{},
	}
}

func (o *OwnershipRecord) IsActive() bool {
	return o != nil && o.Status == OwnershipStatusActive
}

// OwnerID returns the current owner or "" when unowned.
func (o *OwnershipRecord) OwnerID() string {
	if o == nil || o.CurrentOwnerID == nil {
		return ""
	}
	return *o.CurrentOwnerID
}

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}
