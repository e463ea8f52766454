// internal/services/transfer_service.go
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/dpp-backend/internal/config"
	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/metrics"
	"github.com/javajoker/dpp-backend/internal/models"
	"github.com/javajoker/dpp-backend/internal/storage"
	"github.com/javajoker/dpp-backend/internal/utils"
)

const (
	transfersKey        = "dpp-transfers"
	transferIDPrefix    = "LV-TRANSFER"
	transferCodeMin     = 100000
	transferCodeMax     = 999999
	approvalTokenLength = 26
	claimLinkType       = "ownership_transfer"
)

type CreateTransferInput struct {
	ProductID      string `json:"productId" validate:"required"`
	CertificateID  string `json:"certificateId"`
	CurrentOwnerID string `json:"currentOwnerId"`
	NewOwnerEmail  string `json:"newOwnerEmail" validate:"omitempty,email"`
	NewOwnerName   string `json:"newOwnerName" validate:"omitempty,max=100"`
}

type ClaimInput struct {
	TransferCode string `json:"transferCode" validate:"required,transfer_code"`
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
}

type CompleteInput struct {
	NewOwnerID   string `json:"newOwnerId" validate:"omitempty,client_id"`
	NewOwnerName string `json:"newOwnerName" validate:"omitempty,max=100"`
}

type CompletionResult struct {
	Transfer  *models.TransferRequest `json:"transfer"`
	Ownership *models.OwnershipRecord `json:"ownership"`
}

// TransferService runs the ownership transfer workflow: create, claim by code,
// approve with the owner's token, complete. Requests live as one JSON list in
// the key->JSON store; concurrent writers are last-writer-wins.
type TransferService struct {
	kv           storage.KV
	key          string
	ownership    OwnershipStore
	chain        *BlockchainService
	fixtures     *fixtures.Store
	notifier     Notifier
	archive      storage.Archive
	claims       *utils.ClaimTokenIssuer
	metrics      *metrics.Metrics
	ttl          time.Duration
	codeAttempts int
	claimBaseURL string
	now          func() time.Time
}

func NewTransferService(cfg *config.Config, kv storage.KV, ownership OwnershipStore, chain *BlockchainService, store *fixtures.Store, notifier Notifier, archive storage.Archive, m *metrics.Metrics) *TransferService {
	if archive == nil {
		archive = storage.LogArchive{}
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	attempts := cfg.Transfer.CodeAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &TransferService{
		kv:           kv,
		key:          storage.Key(cfg.Store.Prefix, transfersKey),
		ownership:    ownership,
		chain:        chain,
		fixtures:     store,
		notifier:     notifier,
		archive:      archive,
		claims:       utils.NewClaimTokenIssuer(cfg.Transfer.ClaimTokenSecret),
		metrics:      m,
		ttl:          cfg.TransferTTL(),
		codeAttempts: attempts,
		claimBaseURL: strings.TrimRight(cfg.Frontend.BaseURL, "/") + cfg.Transfer.ClaimPath,
		now:          time.Now,
	}
}

func (s *TransferService) WithClock(now func() time.Time) *TransferService {
	s.now = now
	return s
}

func (s *TransferService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// NewTransferRequest builds a pending request with a fresh id, transfer code and
// approval token. It does not persist anything.
func (s *TransferService) NewTransferRequest(productID, certificateID, currentOwnerID, newOwnerEmail, newOwnerName string) (*models.TransferRequest, error) {
	now := s.clock()

	suffix, err := randomBase36(6)
	if err != nil {
		return nil, fmt.Errorf("failed to generate transfer id: %w", err)
	}
	code, err := utils.GenerateNumericCode(transferCodeMin, transferCodeMax)
	if err != nil {
		return nil, fmt.Errorf("failed to generate transfer code: %w", err)
	}
	token, err := utils.GenerateRandomString(approvalTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate approval token: %w", err)
	}

	return &models.TransferRequest{
		TransferID:     fmt.Sprintf("%s-%d-%s", transferIDPrefix, now.UnixMilli(), suffix),
		TransferCode:   code,
		ProductID:      productID,
		CertificateID:  certificateID,
		CurrentOwnerID: currentOwnerID,
		NewOwnerEmail:  newOwnerEmail,
		NewOwnerName:   newOwnerName,
		Status:         models.TransferStatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
		UpdatedAt:      now,
		ApprovalToken:  token,
	}, nil
}

// Create starts a transfer of an actively owned product and invites the new
// owner when an email is given.
func (s *TransferService) Create(ctx context.Context, in CreateTransferInput) (req *models.TransferRequest, err error) {
	defer func() { s.metrics.TransferOutcome("create", outcomeLabel(err)) }()

	record, err := s.ownership.Get(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !record.IsActive() {
		return nil, newOwnershipError(KindNotActivated, in.ProductID, "ownership must be active before a transfer")
	}
	ownerID := in.CurrentOwnerID
	if ownerID == "" {
		ownerID = record.OwnerID()
	} else if ownerID != record.OwnerID() {
		return nil, newOwnershipError(KindInvalidInput, in.ProductID, "%s is not the current owner", ownerID)
	}

	certificateID := in.CertificateID
	if certificateID == "" {
		if cert, ok := s.fixtures.Certificate(in.ProductID); ok {
			certificateID = cert.Certificate.CertificateID
		}
	}

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		candidate, err := s.NewTransferRequest(in.ProductID, certificateID, ownerID, in.NewOwnerEmail, in.NewOwnerName)
		if err != nil {
			return nil, err
		}
		if !codeInUse(list, candidate.TransferCode, now) {
			req = candidate
			break
		}
	}
	if req == nil {
		return nil, fmt.Errorf("no free transfer code after %d attempts", s.codeAttempts)
	}

	list = append(list, *req)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	if req.NewOwnerEmail != "" {
		s.notify("invitation", s.notifier.SendTransferInvitation, TransferNotification{
			RecipientEmail: req.NewOwnerEmail,
			RecipientName:  req.NewOwnerName,
			ProductName:    s.productName(req.ProductID),
			ProductID:      req.ProductID,
			TransferID:     req.TransferID,
			TransferCode:   req.TransferCode,
			ExpiresAt:      req.ExpiresAt,
		})
	}

	logrus.WithFields(logrus.Fields{
		"transfer_id": req.TransferID,
		"product_id":  req.ProductID,
		"owner_id":    ownerID,
		"expires_at":  req.ExpiresAt,
	}).Info("Transfer request created")

	return req, nil
}

// LookupByCode resolves a transfer code to a claimable request. When several
// requests share the code the newest non-terminal one wins, else the newest.
func (s *TransferService) LookupByCode(ctx context.Context, code string) (req *models.TransferRequest, err error) {
	defer func() { s.metrics.TransferOutcome("lookup", outcomeLabel(err)) }()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var best *models.TransferRequest
	for i := range list {
		candidate := &list[i]
		if candidate.TransferCode != code {
			continue
		}
		if best == nil || preferForLookup(candidate, best) {
			best = candidate
		}
	}
	if best == nil {
		return nil, newTransferError(KindNotFound, "", "no transfer matches the code")
	}

	if err := s.checkOpen(best, s.clock()); err != nil {
		return nil, err
	}
	return best, nil
}

// Claim records the claimant on the pending request behind code and asks the
// current owner for approval.
func (s *TransferService) Claim(ctx context.Context, in ClaimInput) (req *models.TransferRequest, err error) {
	defer func() { s.metrics.TransferOutcome("claim", outcomeLabel(err)) }()

	found, err := s.LookupByCode(ctx, in.TransferCode)
	if err != nil {
		return nil, err
	}
	if found.Status != models.TransferStatusPending {
		return nil, newTransferError(KindInvalidTransition, found.TransferID, "transfer is already %s", found.Status)
	}

	req, err = s.mutate(ctx, found.TransferID, func(t *models.TransferRequest, now time.Time) error {
		t.NewOwnerName = in.Name
		t.NewOwnerEmail = in.Email
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	owner, err := s.ownership.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	s.notify("approval_request", s.notifier.SendApprovalRequest, TransferNotification{
		RecipientEmail: derefString(owner.CurrentOwnerEmail),
		RecipientName:  derefString(owner.CurrentOwnerName),
		ProductName:    s.productName(req.ProductID),
		ProductID:      req.ProductID,
		TransferID:     req.TransferID,
		ApprovalToken:  req.ApprovalToken,
		ClaimantName:   req.NewOwnerName,
		ClaimantEmail:  req.NewOwnerEmail,
		ExpiresAt:      req.ExpiresAt,
	})

	logrus.WithField("transfer_id", req.TransferID).Info("Transfer claimed")
	return req, nil
}

// Approve moves a pending request to approved when token matches its approval
// token. An expired request is rejected instead.
func (s *TransferService) Approve(ctx context.Context, transferID, token string) (req *models.TransferRequest, err error) {
	defer func() { s.metrics.TransferOutcome("approve", outcomeLabel(err)) }()

	expired := false
	req, err = s.mutate(ctx, transferID, func(t *models.TransferRequest, now time.Time) error {
		if subtle.ConstantTimeCompare([]byte(t.ApprovalToken), []byte(token)) != 1 {
			return newTransferError(KindTokenMismatch, t.TransferID, "approval token does not match")
		}
		if err := terminalError(t); err != nil {
			return err
		}
		if t.Status != models.TransferStatusPending {
			return newTransferError(KindInvalidTransition, t.TransferID, "cannot approve a %s transfer", t.Status)
		}
		if t.IsExpired(now) {
			expired = true
			t.Status = models.TransferStatusRejected
			t.UpdatedAt = now
			return nil
		}
		t.Status = models.TransferStatusApproved
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		logrus.WithField("transfer_id", transferID).Info("Expired transfer rejected on approval")
		return nil, newTransferError(KindExpired, transferID, "transfer expired at %s", req.ExpiresAt.Format(time.RFC3339))
	}

	logrus.WithField("transfer_id", transferID).Info("Transfer approved")
	return req, nil
}

func (s *TransferService) Reject(ctx context.Context, transferID string) (*models.TransferRequest, error) {
	return s.UpdateStatus(ctx, transferID, models.TransferStatusRejected)
}

// Complete hands the product to the new owner: it anchors a new transaction and
// hash, replaces the ownership record and marks the request completed.
func (s *TransferService) Complete(ctx context.Context, transferID string, in CompleteInput) (result *CompletionResult, err error) {
	defer func() { s.metrics.TransferOutcome("complete", outcomeLabel(err)) }()

	req, err := s.Get(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if err := terminalError(req); err != nil {
		return nil, err
	}
	if req.Status != models.TransferStatusApproved {
		return nil, newTransferError(KindInvalidTransition, transferID, "transfer must be approved before completion")
	}
	// Expiry is decided once, at entry; the confirmation delay must not expire
	// a request whose ownership record has already been replaced.
	startedAt := s.clock()
	if req.IsExpired(startedAt) {
		return nil, newTransferError(KindExpired, transferID, "transfer expired at %s", req.ExpiresAt.Format(time.RFC3339))
	}

	ownerID := strings.TrimSpace(in.NewOwnerID)
	if ownerID == "" {
		if ownerID, err = s.chain.GenerateClientID(); err != nil {
			return nil, err
		}
	}
	ownerName := in.NewOwnerName
	if ownerName == "" {
		ownerName = req.NewOwnerName
	}

	previous, err := s.ownership.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	txID, err := s.chain.GenerateTransactionID()
	if err != nil {
		return nil, err
	}
	if err := s.chain.SimulateWrite(ctx); err != nil {
		return nil, fmt.Errorf("blockchain confirmation interrupted: %w", err)
	}

	now := s.clock()
	history := append([]models.TransferHistoryEntry{}, previous.TransferHistory...)
	history = append(history, models.TransferHistoryEntry{
		FromClientID:  req.CurrentOwnerID,
		ToClientID:    ownerID,
		TransferDate:  now,
		TransactionID: txID,
	})
	record := &models.OwnershipRecord{
		ProductID:         req.ProductID,
		Status:            models.OwnershipStatusActive,
		CurrentOwnerID:    models.StringPtr(ownerID),
		CurrentOwnerName:  optionalString(ownerName),
		CurrentOwnerEmail: optionalString(req.NewOwnerEmail),
		ActivatedAt:       models.TimePtr(now),
		BlockchainHash:    models.StringPtr(GenerateHash(req.ProductID, txID, ownerID, now)),
		TransactionID:     models.StringPtr(txID),
		TransferHistory:   history,
	}
	if err := s.ownership.Set(ctx, record); err != nil {
		return nil, err
	}
	archiveSnapshot(ctx, s.archive, s.fixtures, s.chain.Network(), "transfer", record, req.CurrentOwnerID)

	req, err = s.transition(ctx, transferID, models.TransferStatusCompleted, startedAt)
	if err != nil {
		return nil, err
	}

	s.notify("completion", s.notifier.SendTransferCompleted, TransferNotification{
		RecipientEmail: req.NewOwnerEmail,
		RecipientName:  ownerName,
		ProductName:    s.productName(req.ProductID),
		ProductID:      req.ProductID,
		TransferID:     req.TransferID,
		NewOwnerID:     ownerID,
		TransactionID:  txID,
	})

	logrus.WithFields(logrus.Fields{
		"transfer_id":    transferID,
		"product_id":     req.ProductID,
		"from_owner":     req.CurrentOwnerID,
		"to_owner":       ownerID,
		"transaction_id": txID,
	}).Info("Transfer completed")

	return &CompletionResult{Transfer: req, Ownership: record}, nil
}

// UpdateStatus is the status entry point. It enforces the transition table
// pending -> approved|rejected, approved -> completed.
func (s *TransferService) UpdateStatus(ctx context.Context, transferID string, status models.TransferStatus) (req *models.TransferRequest, err error) {
	defer func() { s.metrics.TransferOutcome("status", outcomeLabel(err)) }()

	if !status.Valid() {
		return nil, newTransferError(KindInvalidInput, transferID, "unknown status %q", status)
	}

	return s.transition(ctx, transferID, status, time.Time{})
}

// transition applies one edge of the transition table. Expiry is judged at
// asOf, or at the time of the write when asOf is zero.
func (s *TransferService) transition(ctx context.Context, transferID string, status models.TransferStatus, asOf time.Time) (*models.TransferRequest, error) {
	return s.mutate(ctx, transferID, func(t *models.TransferRequest, now time.Time) error {
		if !t.Status.CanTransitionTo(status) {
			return newTransferError(KindInvalidTransition, t.TransferID, "cannot move from %s to %s", t.Status, status)
		}
		expiryAt := now
		if !asOf.IsZero() {
			expiryAt = asOf
		}
		if status != models.TransferStatusRejected && t.IsExpired(expiryAt) {
			return newTransferError(KindExpired, t.TransferID, "transfer expired at %s", t.ExpiresAt.Format(time.RFC3339))
		}
		t.Status = status
		t.UpdatedAt = now
		return nil
	})
}

// List returns requests newest first, optionally filtered by stored status.
func (s *TransferService) List(ctx context.Context, status models.TransferStatus) ([]models.TransferRequest, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	// Walk backwards so requests created in the same millisecond stay newest first.
	out := make([]models.TransferRequest, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if status == "" || list[i].Status == status {
			out = append(out, list[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *TransferService) Get(ctx context.Context, transferID string) (*models.TransferRequest, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].TransferID == transferID {
			return &list[i], nil
		}
	}
	return nil, newTransferError(KindNotFound, transferID, "transfer not found")
}

// ClaimLink returns the QR payload for an open request. The claim URL carries a
// signed token that expires with the request.
func (s *TransferService) ClaimLink(ctx context.Context, transferID string) (*models.TransferQRData, error) {
	req, err := s.Get(ctx, transferID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if err := s.checkOpen(req, now); err != nil {
		return nil, err
	}

	token, err := s.claims.Issue(req.TransferID, req.TransferCode, now, req.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign claim link: %w", err)
	}

	return &models.TransferQRData{
		Type:          claimLinkType,
		TransferID:    req.TransferID,
		ProductID:     req.ProductID,
		CertificateID: req.CertificateID,
		Timestamp:     now,
		ClaimURL:      s.claimBaseURL + "?token=" + url.QueryEscape(token),
	}, nil
}

// ResolveClaimToken validates a claim link token and looks up its request.
func (s *TransferService) ResolveClaimToken(ctx context.Context, token string) (*models.TransferRequest, error) {
	claims, err := s.claims.Parse(token, s.clock())
	if errors.Is(err, utils.ErrClaimTokenExpired) {
		return nil, newTransferError(KindExpired, "", "claim link expired")
	}
	if err != nil {
		return nil, newTransferError(KindInvalidInput, "", "invalid claim link")
	}

	req, err := s.LookupByCode(ctx, claims.TransferCode)
	if err != nil {
		return nil, err
	}
	if req.TransferID != claims.TransferID {
		return nil, newTransferError(KindNotFound, claims.TransferID, "claim link does not match an open transfer")
	}
	return req, nil
}

// checkOpen reports why req can no longer be claimed or approved, if it cannot.
func (s *TransferService) checkOpen(req *models.TransferRequest, now time.Time) error {
	if err := terminalError(req); err != nil {
		return err
	}
	if req.IsExpired(now) {
		return newTransferError(KindExpired, req.TransferID, "transfer expired at %s", req.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func terminalError(req *models.TransferRequest) error {
	switch req.Status {
	case models.TransferStatusCompleted:
		return newTransferError(KindAlreadyCompleted, req.TransferID, "transfer already completed")
	case models.TransferStatusRejected:
		return newTransferError(KindRejected, req.TransferID, "transfer was rejected")
	}
	return nil
}

// mutate applies fn to the stored request and persists the list. When fn fails
// nothing is written.
func (s *TransferService) mutate(ctx context.Context, transferID string, fn func(*models.TransferRequest, time.Time) error) (*models.TransferRequest, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range list {
		if list[i].TransferID == transferID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, newTransferError(KindNotFound, transferID, "transfer not found")
	}

	if err := fn(&list[index], s.clock()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	updated := list[index]
	return &updated, nil
}

func (s *TransferService) load(ctx context.Context) ([]models.TransferRequest, error) {
	var list []models.TransferRequest
	err := s.kv.Get(ctx, s.key, &list)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.TransferRequest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transfers: %w", err)
	}
	return list, nil
}

func (s *TransferService) save(ctx context.Context, list []models.TransferRequest) error {
	if err := s.kv.Set(ctx, s.key, list); err != nil {
		return fmt.Errorf("failed to save transfers: %w", err)
	}
	return nil
}

func (s *TransferService) notify(kind string, send func(TransferNotification) error, n TransferNotification) {
	if err := send(n); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"notification": kind,
			"transfer_id":  n.TransferID,
		}).Warn("Failed to send transfer notification")
	}
}

func (s *TransferService) productName(productID string) string {
	product, _, ok := s.fixtures.Product(productID)
	if !ok {
		return productID
	}
	return product.Name
}

func codeInUse(list []models.TransferRequest, code string, now time.Time) bool {
	for i := range list {
		t := &list[i]
		if t.TransferCode == code && !t.Status.IsTerminal() && !t.IsExpired(now) {
			return true
		}
	}
	return false
}

// preferForLookup reports whether a should be chosen over b for the same code.
func preferForLookup(a, b *models.TransferRequest) bool {
	aOpen, bOpen := !a.Status.IsTerminal(), !b.Status.IsTerminal()
	if aOpen != bOpen {
		return aOpen
	}
	return a.CreatedAt.After(b.CreatedAt)
}
