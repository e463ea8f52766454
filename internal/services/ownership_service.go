// internal/services/ownership_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/metrics"
	"github.com/javajoker/dpp-backend/internal/models"
	"github.com/javajoker/dpp-backend/internal/storage"
)

const ownershipKeyPrefix = "dpp-ownership"

// OwnershipStore holds the current ownership record of each product.
// Get returns a pending record when nothing has been stored for the product.
type OwnershipStore interface {
	Get(ctx context.Context, productID string) (*models.OwnershipRecord, error)
	Set(ctx context.Context, record *models.OwnershipRecord) error
}

type OwnershipService struct {
	kv       storage.KV
	prefix   string
	chain    *BlockchainService
	archive  storage.Archive
	fixtures *fixtures.Store
	metrics  *metrics.Metrics
	now      func() time.Time
}

type ActivateRequest struct {
	ProductID  string `json:"productId"`
	OwnerID    string `json:"ownerId" validate:"omitempty,client_id"`
	OwnerName  string `json:"ownerName" validate:"omitempty,max=100"`
	OwnerEmail string `json:"ownerEmail" validate:"omitempty,email"`
}

// OwnershipUpdate is the body of the server-side ownership update endpoint.
type OwnershipUpdate struct {
	ProductID       string `json:"productId" validate:"required"`
	NewOwnerID      string `json:"newOwnerId" validate:"required"`
	NewOwnerName    string `json:"newOwnerName"`
	NewOwnerEmail   string `json:"newOwnerEmail" validate:"omitempty,email"`
	PreviousOwnerID string `json:"previousOwnerId"`
	TransactionID   string `json:"transactionId" validate:"required"`
	BlockchainHash  string `json:"blockchainHash"`
}

func NewOwnershipService(kv storage.KV, prefix string, chain *BlockchainService, archive storage.Archive, store *fixtures.Store, m *metrics.Metrics) *OwnershipService {
	if archive == nil {
		archive = storage.LogArchive{}
	}
	return &OwnershipService{
		kv:       kv,
		prefix:   prefix,
		chain:    chain,
		archive:  archive,
		fixtures: store,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *OwnershipService) WithClock(now func() time.Time) *OwnershipService {
	s.now = now
	return s
}

func (s *OwnershipService) key(productID string) string {
	return storage.Key(s.prefix, ownershipKeyPrefix, productID)
}

func (s *OwnershipService) Get(ctx context.Context, productID string) (*models.OwnershipRecord, error) {
	var record models.OwnershipRecord
	err := s.kv.Get(ctx, s.key(productID), &record)
	if errors.Is(err, storage.ErrNotFound) {
		return models.NewPendingOwnership(productID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ownership: %w", err)
	}
	if record.TransferHistory == nil {
		record.TransferHistory = []models.TransferHistoryEntry{}
	}
	return &record, nil
}

func (s *OwnershipService) Set(ctx context.Context, record *models.OwnershipRecord) error {
	if record == nil || record.ProductID == "" {
		return newOwnershipError(KindInvalidInput, "", "ownership record requires a product id")
	}
	if err := s.kv.Set(ctx, s.key(record.ProductID), record); err != nil {
		return fmt.Errorf("failed to save ownership: %w", err)
	}
	return nil
}

// Activate moves a pending record to active for ownerID, anchoring a fresh
// transaction id and certificate hash.
func (s *OwnershipService) Activate(ctx context.Context, req ActivateRequest) (*models.OwnershipRecord, error) {
	if !s.fixtures.HasProduct(req.ProductID) {
		return nil, newOwnershipError(KindNotFound, req.ProductID, "unknown product")
	}

	current, err := s.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if current.IsActive() {
		return nil, newOwnershipError(KindAlreadyActive, req.ProductID, "ownership already activated by %s", current.OwnerID())
	}

	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		if ownerID, err = s.chain.GenerateClientID(); err != nil {
			return nil, err
		}
	}

	txID, err := s.chain.GenerateTransactionID()
	if err != nil {
		return nil, err
	}
	if err := s.chain.SimulateWrite(ctx); err != nil {
		return nil, fmt.Errorf("blockchain confirmation interrupted: %w", err)
	}

	activatedAt := s.now().UTC().Truncate(time.Millisecond)
	record := &models.OwnershipRecord{
		ProductID:       req.ProductID,
		Status:          models.OwnershipStatusActive,
		CurrentOwnerID:  models.StringPtr(ownerID),
		ActivatedAt:     models.TimePtr(activatedAt),
		BlockchainHash:  models.StringPtr(GenerateHash(req.ProductID, txID, ownerID, activatedAt)),
		TransactionID:   models.StringPtr(txID),
		TransferHistory: current.TransferHistory,
	}
	if req.OwnerName != "" {
		record.CurrentOwnerName = models.StringPtr(req.OwnerName)
	}
	if req.OwnerEmail != "" {
		record.CurrentOwnerEmail = models.StringPtr(req.OwnerEmail)
	}

	if err := s.Set(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.Activation()
	archiveSnapshot(ctx, s.archive, s.fixtures, s.chain.Network(), "activation", record, "")

	logrus.WithFields(logrus.Fields{
		"product_id":     record.ProductID,
		"owner_id":       ownerID,
		"transaction_id": txID,
	}).Info("Ownership activated")

	return record, nil
}

// ApplyUpdate records an externally confirmed hand-off. A product without a
// stored record gets a new active record.
func (s *OwnershipService) ApplyUpdate(ctx context.Context, update OwnershipUpdate) (*models.OwnershipRecord, error) {
	if update.ProductID == "" || update.NewOwnerID == "" || update.TransactionID == "" {
		return nil, newOwnershipError(KindInvalidInput, update.ProductID, "productId, newOwnerId and transactionId are required")
	}

	record, err := s.Get(ctx, update.ProductID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	previous := update.PreviousOwnerID
	if previous == "" {
		previous = record.OwnerID()
	}

	if !record.IsActive() {
		record.Status = models.OwnershipStatusActive
		record.ActivatedAt = models.TimePtr(now)
	}
	record.CurrentOwnerID = models.StringPtr(update.NewOwnerID)
	record.CurrentOwnerName = optionalString(update.NewOwnerName)
	record.CurrentOwnerEmail = optionalString(update.NewOwnerEmail)
	record.TransactionID = models.StringPtr(update.TransactionID)
	if update.BlockchainHash != "" {
		record.BlockchainHash = models.StringPtr(update.BlockchainHash)
	}
	record.TransferHistory = append(record.TransferHistory, models.TransferHistoryEntry{
		FromClientID:  previous,
		ToClientID:    update.NewOwnerID,
		TransferDate:  now,
		TransactionID: update.TransactionID,
	})

	if err := s.Set(ctx, record); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id":     record.ProductID,
		"from_owner":     previous,
		"to_owner":       update.NewOwnerID,
		"transaction_id": update.TransactionID,
	}).Info("Ownership updated")

	return record, nil
}

// archiveSnapshot writes the certificate state of record to archive. Failures are
// logged; the ownership change stands.
func archiveSnapshot(ctx context.Context, archive storage.Archive, store *fixtures.Store, network, event string, record *models.OwnershipRecord, previousOwner string) {
	snapshot := storage.CertificateSnapshot{
		Event:          event,
		ProductID:      record.ProductID,
		OwnerID:        record.OwnerID(),
		PreviousOwner:  previousOwner,
		TransactionID:  derefString(record.TransactionID),
		BlockchainHash: derefString(record.BlockchainHash),
		Network:        network,
	}
	if record.ActivatedAt != nil {
		snapshot.Timestamp = models.FormatTimestamp(*record.ActivatedAt)
	}
	if cert, ok := store.Certificate(record.ProductID); ok {
		snapshot.CertificateID = cert.Certificate.CertificateID
	}

	location, err := archive.Put(ctx, snapshot)
	if err != nil {
		logrus.WithError(err).WithField("product_id", record.ProductID).Warn("Failed to archive certificate snapshot")
		return
	}
	if location != "" {
		logrus.WithField("location", location).Debug("Certificate snapshot archived")
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return models.StringPtr(s)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
