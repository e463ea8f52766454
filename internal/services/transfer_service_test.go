// internal/services/transfer_service_test.go
package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/dpp-backend/internal/models"
	"github.com/javajoker/dpp-backend/internal/storage"
)

const ownerEmail = "camille@example.com"

type TransferServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *testClock
	kv        *memKV
	notifier  *recordingNotifier
	archive   *recordingArchive
	ownership *OwnershipService
	service   *TransferService
}

func (s *TransferServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = newTestClock()
	s.kv = newMemKV()
	s.notifier = &recordingNotifier{}
	s.archive = &recordingArchive{}

	cfg := testConfig()
	store := loadFixtures(s.T())
	chain := NewBlockchainService(cfg).WithClock(s.clock.Now)
	s.ownership = NewOwnershipService(s.kv, cfg.Store.Prefix, chain, s.archive, store, nil).WithClock(s.clock.Now)
	s.service = NewTransferService(cfg, s.kv, s.ownership, chain, store, s.notifier, s.archive, nil).WithClock(s.clock.Now)

	_, err := s.ownership.Activate(s.ctx, ActivateRequest{
		ProductID:  jacketID,
		OwnerID:    jacketOwner,
		OwnerName:  "Camille Laurent",
		OwnerEmail: ownerEmail,
	})
	s.Require().NoError(err)
}

func (s *TransferServiceTestSuite) create() *models.TransferRequest {
	req, err := s.service.Create(s.ctx, CreateTransferInput{
		ProductID:     jacketID,
		NewOwnerEmail: "jane@example.com",
		NewOwnerName:  "Jane Smith",
	})
	s.Require().NoError(err)
	return req
}

func (s *TransferServiceTestSuite) TestNewTransferRequestShape() {
	req, err := s.service.NewTransferRequest(jacketID, "LV-CERT-998234", jacketOwner, "", "")
	s.Require().NoError(err)

	s.Regexp(`^LV-TRANSFER-\d+-[0-9A-Z]{6}$`, req.TransferID)
	s.Regexp(`^[1-9]\d{5}$`, req.TransferCode)
	s.Len(req.ApprovalToken, 26)
	s.NotEqual(req.TransferCode, req.ApprovalToken)
	s.Equal(models.TransferStatusPending, req.Status)
	s.Equal(req.CreatedAt.Add(7*24*time.Hour), req.ExpiresAt)
}

func (s *TransferServiceTestSuite) TestCreateThenLookupByCode() {
	created := s.create()

	s.Equal(jacketOwner, created.CurrentOwnerID)
	s.Equal("LV-CERT-998234", created.CertificateID)

	found, err := s.service.LookupByCode(s.ctx, created.TransferCode)
	s.Require().NoError(err)
	s.Equal(*created, *found)
	s.Equal(models.TransferStatusPending, found.Status)
	s.Equal(found.CreatedAt.Add(7*24*time.Hour), found.ExpiresAt)

	s.Require().Len(s.notifier.invitations, 1)
	s.Equal("jane@example.com", s.notifier.invitations[0].RecipientEmail)
	s.Equal(created.TransferCode, s.notifier.invitations[0].TransferCode)
	s.Empty(s.notifier.invitations[0].ApprovalToken)
}

func (s *TransferServiceTestSuite) TestCreateRequiresActiveOwnership() {
	_, err := s.service.Create(s.ctx, CreateTransferInput{ProductID: bagID})
	s.ErrorIs(err, ErrNotActivated)
}

func (s *TransferServiceTestSuite) TestCreateRejectsOtherOwner() {
	_, err := s.service.Create(s.ctx, CreateTransferInput{ProductID: jacketID, CurrentOwnerID: "CL-SOMEONE"})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *TransferServiceTestSuite) TestLookupUnknownCode() {
	_, err := s.service.LookupByCode(s.ctx, "123456")
	s.ErrorIs(err, ErrNotFound)
}

func (s *TransferServiceTestSuite) TestLookupExpiredLeavesStatus() {
	created := s.create()
	s.clock.Advance(7*24*time.Hour + time.Second)

	_, err := s.service.LookupByCode(s.ctx, created.TransferCode)
	s.ErrorIs(err, ErrExpired)

	stored, err := s.service.Get(s.ctx, created.TransferID)
	s.Require().NoError(err)
	s.Equal(models.TransferStatusPending, stored.Status)
}

func (s *TransferServiceTestSuite) TestLookupAtExactExpiryStillOpen() {
	created := s.create()
	s.clock.Advance(7 * 24 * time.Hour)

	_, err := s.service.LookupByCode(s.ctx, created.TransferCode)
	s.NoError(err)
}

func (s *TransferServiceTestSuite) TestApproveWithWrongToken() {
	created := s.create()

	_, err := s.service.Approve(s.ctx, created.TransferID, "not-the-token")
	s.ErrorIs(err, ErrTokenMismatch)

	stored, err := s.service.Get(s.ctx, created.TransferID)
	s.Require().NoError(err)
	s.Equal(models.TransferStatusPending, stored.Status)
}

func (s *TransferServiceTestSuite) TestApproveUnknownTransfer() {
	_, err := s.service.Approve(s.ctx, "LV-TRANSFER-0-NOPE00", "token")
	s.ErrorIs(err, ErrNotFound)
}

func (s *TransferServiceTestSuite) TestApproveExpiredRejects() {
	created := s.create()
	s.clock.Advance(8 * 24 * time.Hour)

	_, err := s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.ErrorIs(err, ErrExpired)

	stored, err := s.service.Get(s.ctx, created.TransferID)
	s.Require().NoError(err)
	s.Equal(models.TransferStatusRejected, stored.Status)
}

func (s *TransferServiceTestSuite) TestApproveTwice() {
	created := s.create()

	approved, err := s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.Require().NoError(err)
	s.Equal(models.TransferStatusApproved, approved.Status)

	_, err = s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *TransferServiceTestSuite) TestClaimRecordsClaimantAndNotifiesOwner() {
	created, err := s.service.Create(s.ctx, CreateTransferInput{ProductID: jacketID})
	s.Require().NoError(err)
	s.Empty(s.notifier.invitations)

	claimed, err := s.service.Claim(s.ctx, ClaimInput{
		TransferCode: created.TransferCode,
		Name:         "Jane Smith",
		Email:        "jane@example.com",
	})
	s.Require().NoError(err)
	s.Equal("Jane Smith", claimed.NewOwnerName)
	s.Equal(models.TransferStatusPending, claimed.Status)

	s.Require().Len(s.notifier.approvals, 1)
	s.Equal(ownerEmail, s.notifier.approvals[0].RecipientEmail)
	s.Equal(created.ApprovalToken, s.notifier.approvals[0].ApprovalToken)
	s.Equal("jane@example.com", s.notifier.approvals[0].ClaimantEmail)
}

func (s *TransferServiceTestSuite) TestEndToEndTransfer() {
	before, err := s.ownership.Get(s.ctx, jacketID)
	s.Require().NoError(err)

	created := s.create()
	_, err = s.service.Claim(s.ctx, ClaimInput{TransferCode: created.TransferCode, Name: "Jane Smith", Email: "jane@example.com"})
	s.Require().NoError(err)
	_, err = s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	result, err := s.service.Complete(s.ctx, created.TransferID, CompleteInput{NewOwnerID: "CL-JANE01"})
	s.Require().NoError(err)
	s.Equal(models.TransferStatusCompleted, result.Transfer.Status)

	after, err := s.ownership.Get(s.ctx, jacketID)
	s.Require().NoError(err)
	s.True(after.IsActive())
	s.Equal("CL-JANE01", after.OwnerID())
	s.Equal("Jane Smith", *after.CurrentOwnerName)
	s.Equal("jane@example.com", *after.CurrentOwnerEmail)
	s.NotEqual(*before.BlockchainHash, *after.BlockchainHash)
	s.NotEqual(*before.TransactionID, *after.TransactionID)
	s.Equal(fixedNow.Add(time.Hour), *after.ActivatedAt)
	s.Equal(GenerateHash(jacketID, *after.TransactionID, "CL-JANE01", *after.ActivatedAt), *after.BlockchainHash)

	s.Require().Len(after.TransferHistory, 1)
	s.Equal(jacketOwner, after.TransferHistory[0].FromClientID)
	s.Equal("CL-JANE01", after.TransferHistory[0].ToClientID)
	s.Equal(*after.TransactionID, after.TransferHistory[0].TransactionID)

	_, err = s.service.LookupByCode(s.ctx, created.TransferCode)
	s.ErrorIs(err, ErrAlreadyCompleted)
	s.ErrorIs(err, ErrAlreadyTerminal)

	_, err = s.service.Complete(s.ctx, created.TransferID, CompleteInput{})
	s.ErrorIs(err, ErrAlreadyTerminal)

	s.Require().Len(s.notifier.completions, 1)
	s.Equal("CL-JANE01", s.notifier.completions[0].NewOwnerID)
	s.Require().Len(s.archive.snapshots, 2)
	s.Equal("transfer", s.archive.snapshots[1].Event)
	s.Equal(jacketOwner, s.archive.snapshots[1].PreviousOwner)
}

func (s *TransferServiceTestSuite) TestCompleteRequiresApproval() {
	created := s.create()

	_, err := s.service.Complete(s.ctx, created.TransferID, CompleteInput{NewOwnerID: "CL-JANE01"})
	s.ErrorIs(err, ErrInvalidTransition)

	record, err := s.ownership.Get(s.ctx, jacketID)
	s.Require().NoError(err)
	s.Equal(jacketOwner, record.OwnerID())
}

func (s *TransferServiceTestSuite) TestCompleteExpiredApproval() {
	created := s.create()
	_, err := s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.Require().NoError(err)

	s.clock.Advance(8 * 24 * time.Hour)
	_, err = s.service.Complete(s.ctx, created.TransferID, CompleteInput{})
	s.ErrorIs(err, ErrExpired)
}

func (s *TransferServiceTestSuite) TestCompleteCrossingExpiryDuringConfirmation() {
	created := s.create()
	_, err := s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.Require().NoError(err)

	// Open on entry, past expiry on every later read.
	calls := 0
	s.service.WithClock(func() time.Time {
		calls++
		if calls == 1 {
			return created.ExpiresAt
		}
		return created.ExpiresAt.Add(time.Second)
	})

	result, err := s.service.Complete(s.ctx, created.TransferID, CompleteInput{NewOwnerID: "CL-JANE01"})
	s.Require().NoError(err)
	s.Equal(models.TransferStatusCompleted, result.Transfer.Status)

	stored, err := s.service.Get(s.ctx, created.TransferID)
	s.Require().NoError(err)
	s.Equal(models.TransferStatusCompleted, stored.Status)

	record, err := s.ownership.Get(s.ctx, jacketID)
	s.Require().NoError(err)
	s.Equal("CL-JANE01", record.OwnerID())
}

func (s *TransferServiceTestSuite) TestCompleteGeneratesClientID() {
	created := s.create()
	_, err := s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.Require().NoError(err)

	result, err := s.service.Complete(s.ctx, created.TransferID, CompleteInput{})
	s.Require().NoError(err)
	s.Regexp(`^CL-[0-9A-Z]{6}$`, result.Ownership.OwnerID())
}

func (s *TransferServiceTestSuite) TestRejectThenApprove() {
	created := s.create()

	rejected, err := s.service.Reject(s.ctx, created.TransferID)
	s.Require().NoError(err)
	s.Equal(models.TransferStatusRejected, rejected.Status)

	_, err = s.service.Approve(s.ctx, created.TransferID, created.ApprovalToken)
	s.ErrorIs(err, ErrRejected)
	s.ErrorIs(err, ErrAlreadyTerminal)
}

func (s *TransferServiceTestSuite) TestUpdateStatusEnforcesTransitions() {
	created := s.create()

	_, err := s.service.UpdateStatus(s.ctx, created.TransferID, models.TransferStatusCompleted)
	s.ErrorIs(err, ErrInvalidTransition)

	_, err = s.service.UpdateStatus(s.ctx, created.TransferID, "archived")
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.service.UpdateStatus(s.ctx, created.TransferID, models.TransferStatusApproved)
	s.Require().NoError(err)

	_, err = s.service.UpdateStatus(s.ctx, created.TransferID, models.TransferStatusRejected)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *TransferServiceTestSuite) TestLookupPrefersOpenRequestOnSharedCode() {
	open := models.TransferRequest{
		TransferID: "LV-TRANSFER-2-OPEN00", TransferCode: "482913", ProductID: jacketID,
		Status: models.TransferStatusPending, CreatedAt: fixedNow.Add(-time.Hour), ExpiresAt: fixedNow.Add(time.Hour),
	}
	done := models.TransferRequest{
		TransferID: "LV-TRANSFER-3-DONE00", TransferCode: "482913", ProductID: jacketID,
		Status: models.TransferStatusCompleted, CreatedAt: fixedNow, ExpiresAt: fixedNow.Add(time.Hour),
	}
	s.Require().NoError(s.kv.Set(s.ctx, storage.Key("test", transfersKey), []models.TransferRequest{open, done}))

	found, err := s.service.LookupByCode(s.ctx, "482913")
	s.Require().NoError(err)
	s.Equal(open.TransferID, found.TransferID)
}

func (s *TransferServiceTestSuite) TestListFiltersAndSorts() {
	first := s.create()
	s.clock.Advance(time.Minute)
	second := s.create()
	_, err := s.service.Reject(s.ctx, first.TransferID)
	s.Require().NoError(err)

	all, err := s.service.List(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(second.TransferID, all[0].TransferID)

	rejected, err := s.service.List(s.ctx, models.TransferStatusRejected)
	s.Require().NoError(err)
	s.Require().Len(rejected, 1)
	s.Equal(first.TransferID, rejected[0].TransferID)
}

func (s *TransferServiceTestSuite) TestClaimLinkRoundTrip() {
	created := s.create()

	link, err := s.service.ClaimLink(s.ctx, created.TransferID)
	s.Require().NoError(err)
	s.Equal("ownership_transfer", link.Type)
	s.Equal("LV-CERT-998234", link.CertificateID)

	parsed, err := url.Parse(link.ClaimURL)
	s.Require().NoError(err)
	s.Equal("/dpp/certificate/transfer/claim", parsed.Path)
	token := parsed.Query().Get("token")
	s.Require().NotEmpty(token)

	resolved, err := s.service.ResolveClaimToken(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(created.TransferID, resolved.TransferID)

	s.clock.Advance(8 * 24 * time.Hour)
	_, err = s.service.ResolveClaimToken(s.ctx, token)
	s.ErrorIs(err, ErrExpired)

	_, err = s.service.ResolveClaimToken(s.ctx, "garbage")
	s.ErrorIs(err, ErrInvalidInput)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

func TestCodeInUse(t *testing.T) {
	list := []models.TransferRequest{
		{TransferCode: "111111", Status: models.TransferStatusPending, ExpiresAt: fixedNow.Add(time.Hour)},
		{TransferCode: "222222", Status: models.TransferStatusCompleted, ExpiresAt: fixedNow.Add(time.Hour)},
		{TransferCode: "333333", Status: models.TransferStatusPending, ExpiresAt: fixedNow.Add(-time.Hour)},
	}

	assert.True(t, codeInUse(list, "111111", fixedNow))
	assert.False(t, codeInUse(list, "222222", fixedNow))
	assert.False(t, codeInUse(list, "333333", fixedNow))
	assert.False(t, codeInUse(list, "444444", fixedNow))
}

func TestErrorKinds(t *testing.T) {
	err := newTransferError(KindRejected, "T-1", "rejected")
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
	assert.NotErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, "transfer T-1: rejected", err.Error())
	assert.Equal(t, ErrorKind(""), KindOf(context.Canceled))
	assert.Equal(t, "ok", outcomeLabel(nil))
	assert.Equal(t, "expired", outcomeLabel(newTransferError(KindExpired, "", "x")))
}
