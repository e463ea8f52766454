// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow and verification outcomes.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindAlreadyCompleted     ErrorKind = "already_completed"
	KindRejected             ErrorKind = "rejected"
	KindExpired              ErrorKind = "expired"
	KindTokenMismatch        ErrorKind = "token_mismatch"
	KindInvalidTransition    ErrorKind = "invalid_transition"
	KindAlreadyActive        ErrorKind = "already_active"
	KindNotActivated         ErrorKind = "not_activated"
	KindHashMismatch         ErrorKind = "hash_mismatch"
	KindFixtureInconsistency ErrorKind = "fixture_inconsistency"
	KindInvalidInput         ErrorKind = "invalid_input"
)

// Sentinels for errors.Is. ErrAlreadyTerminal matches both terminal kinds.
var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyTerminal      = errors.New("transfer already terminal")
	ErrAlreadyCompleted     = errors.New("transfer already completed")
	ErrRejected             = errors.New("transfer rejected")
	ErrExpired              = errors.New("transfer expired")
	ErrTokenMismatch        = errors.New("approval token mismatch")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrAlreadyActive        = errors.New("ownership already active")
	ErrNotActivated         = errors.New("ownership not activated")
	ErrHashMismatch         = errors.New("blockchain hash mismatch")
	ErrFixtureInconsistency = errors.New("fixture inconsistency")
	ErrInvalidInput         = errors.New("invalid input")
)

var kindSentinels = map[ErrorKind][]error{
	KindNotFound:             {ErrNotFound},
	KindAlreadyCompleted:     {ErrAlreadyCompleted, ErrAlreadyTerminal},
	KindRejected:             {ErrRejected, ErrAlreadyTerminal},
	KindExpired:              {ErrExpired},
	KindTokenMismatch:        {ErrTokenMismatch},
	KindInvalidTransition:    {ErrInvalidTransition},
	KindAlreadyActive:        {ErrAlreadyActive},
	KindNotActivated:         {ErrNotActivated},
	KindHashMismatch:         {ErrHashMismatch},
	KindFixtureInconsistency: {ErrFixtureInconsistency},
	KindInvalidInput:         {ErrInvalidInput},
}

// TransferError is the typed failure of a transfer or ownership operation.
type TransferError struct {
	Kind       ErrorKind
	TransferID string
	ProductID  string
	Message    string
}

func (e *TransferError) Error() string {
	switch {
	case e.TransferID != "":
		return fmt.Sprintf("transfer %s: %s", e.TransferID, e.Message)
	case e.ProductID != "":
		return fmt.Sprintf("product %s: %s", e.ProductID, e.Message)
	}
	return e.Message
}

func (e *TransferError) Is(target error) bool {
	for _, sentinel := range kindSentinels[e.Kind] {
		if target == sentinel {
			return true
		}
	}
	return false
}

func newTransferError(kind ErrorKind, transferID, format string, args ...interface{}) *TransferError {
	return &TransferError{Kind: kind, TransferID: transferID, Message: fmt.Sprintf(format, args...)}
}

func newOwnershipError(kind ErrorKind, productID, format string, args ...interface{}) *TransferError {
	return &TransferError{Kind: kind, ProductID: productID, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of a typed error, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// outcomeLabel is the metrics label of an operation result.
func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
