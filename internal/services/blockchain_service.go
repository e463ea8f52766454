// internal/services/blockchain_service.go
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/javajoker/dpp-backend/internal/config"
	"github.com/javajoker/dpp-backend/internal/models"
)

const base36Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// BlockchainService simulates ledger anchoring: deterministic certificate hashes,
// transaction ids and a confirmation delay. Nothing leaves the process.
type BlockchainService struct {
	network string
	prefix  string
	delay   time.Duration
	now     func() time.Time
	seq     uint64
}

func NewBlockchainService(cfg *config.Config) *BlockchainService {
	return &BlockchainService{
		network: cfg.Blockchain.Network,
		prefix:  cfg.Blockchain.TransactionIDPrefix,
		delay:   cfg.ConfirmationDelay(),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for transaction id date stamps.
func (s *BlockchainService) WithClock(now func() time.Time) *BlockchainService {
	s.now = now
	return s
}

func (s *BlockchainService) Network() string {
	return s.network
}

// GenerateHash returns "0x" followed by the hex BLAKE2b-256 digest of
// productID:transactionID:ownerID:timestamp.
func GenerateHash(productID, transactionID, ownerID string, timestamp time.Time) string {
	payload := strings.Join([]string{productID, transactionID, ownerID, models.FormatTimestamp(timestamp)}, ":")
	sum := blake2b.Sum256([]byte(payload))
	return "0x" + hex.EncodeToString(sum[:])
}

func (s *BlockchainService) GenerateHash(productID, transactionID, ownerID string, timestamp time.Time) string {
	return GenerateHash(productID, transactionID, ownerID, timestamp)
}

// GenerateTransactionID returns <prefix>-YYYYMMDD-<RAND6><SEQ>. The sequence makes
// every id issued by this service distinct.
func (s *BlockchainService) GenerateTransactionID() (string, error) {
	random, err := randomBase36(6)
	if err != nil {
		return "", fmt.Errorf("failed to generate transaction id: %w", err)
	}
	seq := atomic.AddUint64(&s.seq, 1)
	date := s.now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s%s", s.prefix, date, random, strings.ToUpper(strconv.FormatUint(seq, 36))), nil
}

// GenerateClientID returns a fresh CL-XXXXXX owner id.
func (s *BlockchainService) GenerateClientID() (string, error) {
	random, err := randomBase36(6)
	if err != nil {
		return "", fmt.Errorf("failed to generate client id: %w", err)
	}
	return "CL-" + random, nil
}

// SimulateWrite waits for the configured confirmation delay.
func (s *BlockchainService) SimulateWrite(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomBase36(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(base36Charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = base36Charset[n.Int64()]
	}
	return string(b), nil
}
