// internal/services/verification_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/metrics"
)

const (
	authenticStatus = "AUTHENTIC"
	defaultNetwork  = "Aura Blockchain"
)

// Fixture consistency checks reported under KindFixtureInconsistency.
const (
	CheckProductMismatch     = "product_mismatch"
	CheckTransactionMismatch = "transaction_mismatch"
	CheckCertificateMissing  = "certificate_missing"
	CheckActivationMissing   = "activation_missing"
)

type VerificationIssue struct {
	Kind    ErrorKind `json:"kind"`
	Check   string    `json:"check,omitempty"`
	Message string    `json:"message"`
}

type VerificationResult struct {
	IsValid        bool                `json:"isValid"`
	CertificateID  string              `json:"certificateId"`
	ProductID      string              `json:"productId"`
	TransactionID  string              `json:"transactionId"`
	BlockchainHash string              `json:"blockchainHash"`
	VerifiedAt     time.Time           `json:"verifiedAt"`
	Errors         []VerificationIssue `json:"errors"`
}

type VerificationService struct {
	fixtures  *fixtures.Store
	ownership OwnershipStore
	network   string
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewVerificationService(store *fixtures.Store, ownership OwnershipStore, network string, m *metrics.Metrics) *VerificationService {
	if network == "" {
		network = defaultNetwork
	}
	return &VerificationService{
		fixtures:  store,
		ownership: ownership,
		network:   network,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *VerificationService) WithClock(now func() time.Time) *VerificationService {
	s.now = now
	return s
}

// Verify checks that the product, ownership, transaction and certificate fixtures
// agree with each other and that blockchainHash is the hash recomputed from them
// for ownerID. An empty productID selects the default fixtures.
func (s *VerificationService) Verify(productID, blockchainHash, ownerID string) *VerificationResult {
	result := &VerificationResult{
		BlockchainHash: blockchainHash,
		VerifiedAt:     s.now().UTC(),
		Errors:         []VerificationIssue{},
	}

	product, _, ok := s.fixtures.Product(productID)
	if !ok {
		result.addFixtureIssue(CheckProductMismatch, "no product fixture available")
		return s.finish(result)
	}
	result.ProductID = product.ProductID

	ownership, hasOwnership := s.fixtures.Ownership(productID)
	transaction, hasTransaction := s.fixtures.Transaction(productID)
	certificate, hasCertificate := s.fixtures.Certificate(productID)

	if !hasOwnership || ownership.ProductID != product.ProductID {
		result.addFixtureIssue(CheckProductMismatch, "ownership record does not belong to product %s", product.ProductID)
	}
	if hasTransaction {
		result.TransactionID = transaction.Transaction.TransactionID
	}
	if !hasOwnership || !hasTransaction ||
		ownership.Ownership.FirstActivation.TransactionID != transaction.Transaction.TransactionID {
		result.addFixtureIssue(CheckTransactionMismatch, "activation transaction does not match the ledger transaction")
	}
	if !hasCertificate || certificate.Certificate.CertificateID == "" {
		result.addFixtureIssue(CheckCertificateMissing, "certificate id is missing")
	} else {
		result.CertificateID = certificate.Certificate.CertificateID
	}

	if !hasOwnership {
		return s.finish(result)
	}

	activatedAt, err := time.Parse(time.RFC3339Nano, ownership.Ownership.FirstActivation.ActivatedAt)
	if err != nil {
		result.addFixtureIssue(CheckActivationMissing, "activation timestamp %q is not a valid time", ownership.Ownership.FirstActivation.ActivatedAt)
		return s.finish(result)
	}

	expected := GenerateHash(product.ProductID, result.TransactionID, ownerID, activatedAt)
	if blockchainHash != expected {
		result.Errors = append(result.Errors, VerificationIssue{
			Kind:    KindHashMismatch,
			Message: "blockchain hash does not match the certificate record",
		})
	}

	return s.finish(result)
}

// VerifyOwnership recomputes the hash of the stored ownership record from its own
// fields and compares it with the stored hash.
func (s *VerificationService) VerifyOwnership(ctx context.Context, productID string) (*VerificationResult, error) {
	record, err := s.ownership.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !record.IsActive() || record.ActivatedAt == nil {
		return nil, newOwnershipError(KindNotActivated, productID, "ownership has not been activated")
	}

	result := &VerificationResult{
		ProductID:      record.ProductID,
		TransactionID:  derefString(record.TransactionID),
		BlockchainHash: derefString(record.BlockchainHash),
		VerifiedAt:     s.now().UTC(),
		Errors:         []VerificationIssue{},
	}
	if cert, ok := s.fixtures.Certificate(productID); ok {
		result.CertificateID = cert.Certificate.CertificateID
	}

	expected := GenerateHash(record.ProductID, result.TransactionID, record.OwnerID(), *record.ActivatedAt)
	if result.BlockchainHash != expected {
		result.Errors = append(result.Errors, VerificationIssue{
			Kind:    KindHashMismatch,
			Message: "stored hash does not match the ownership record",
		})
	}

	return s.finish(result), nil
}

// IsCertificateAnchored reports whether the product's certificate is anchored and
// authenticated.
func (s *VerificationService) IsCertificateAnchored(productID string) bool {
	cert, ok := s.fixtures.Certificate(productID)
	if !ok {
		return false
	}
	return cert.Certificate.OwnershipEventsAnchored && cert.Certificate.AuthenticationStatus == authenticStatus
}

// Network describes the ledger the certificate is anchored on.
func (s *VerificationService) Network(productID string) string {
	if cert, ok := s.fixtures.Certificate(productID); ok && cert.Certificate.BlockchainNetwork != "" {
		return cert.Certificate.BlockchainNetwork
	}
	return s.network
}

func (s *VerificationService) finish(result *VerificationResult) *VerificationResult {
	result.IsValid = len(result.Errors) == 0
	s.metrics.Verification(result.IsValid)

	if !result.IsValid {
		logrus.WithFields(logrus.Fields{
			"product_id": result.ProductID,
			"issues":     len(result.Errors),
		}).Debug("Certificate verification failed")
	}
	return result
}

func (r *VerificationResult) addFixtureIssue(check, format string, args ...interface{}) {
	r.Errors = append(r.Errors, VerificationIssue{
		Kind:    KindFixtureInconsistency,
		Check:   check,
		Message: fmt.Sprintf(format, args...),
	})
}
