// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB is stored as jsonb on PostgreSQL and as text on SQLite.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type OwnershipStatus string

const (
	OwnershipStatusPending OwnershipStatus = "pending"
	OwnershipStatusActive  OwnershipStatus = "active"
)

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusRejected  TransferStatus = "rejected"
	TransferStatusCompleted TransferStatus = "completed"
)

// IsTerminal reports whether no further transition leaves the status.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusRejected || s == TransferStatusCompleted
}

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusRejected, TransferStatusCompleted:
		return true
	}
	return false
}

// transferTransitions lists the statuses reachable from each status.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusPending:  {TransferStatusApproved, TransferStatusRejected},
	TransferStatusApproved: {TransferStatusCompleted},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TimestampLayout is the ISO-8601 millisecond form hashed into certificates.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t the way certificate payloads expect it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
