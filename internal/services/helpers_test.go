// internal/services/helpers_test.go
package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/javajoker/dpp-backend/internal/config"
	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/storage"
)

const (
	jacketID    = "LV-JKT-4521-000987"
	bagID       = "LV-BAG-M27974-001234"
	jacketOwner = "CL-782134"
	jacketHash  = "0xbeba5d56e3818bdfad8eed915606d12bd01d5da78f274fcc59324cbe2950274b"
	bagHash     = "0x1d7e60bf5ad80b27402b4e04df6c28c8690f92ba8d6f2b5ded40db7e3b02ac03"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: fixedNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Store:       config.StoreConfig{Driver: "database", Prefix: "test"},
		Blockchain: config.BlockchainConfig{
			Network:             "Aura Blockchain",
			TransactionIDPrefix: "TX-LV",
		},
		Transfer: config.TransferConfig{
			TTLHours:         168,
			ClaimTokenSecret: "test-secret",
			CodeAttempts:     10,
			ClaimPath:        "/dpp/certificate/transfer/claim",
		},
		Frontend: config.FrontendConfig{BaseURL: "https://dpp.test"},
	}
}

func loadFixtures(t *testing.T) *fixtures.Store {
	t.Helper()
	store, err := fixtures.Load("")
	require.NoError(t, err)
	return store
}

// memKV is a map-backed storage.KV that round-trips values through JSON.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return storage.ErrNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (m *memKV) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type recordingNotifier struct {
	mu          sync.Mutex
	invitations []TransferNotification
	approvals   []TransferNotification
	completions []TransferNotification
}

func (r *recordingNotifier) SendTransferInvitation(n TransferNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations = append(r.invitations, n)
	return nil
}

func (r *recordingNotifier) SendApprovalRequest(n TransferNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approvals = append(r.approvals, n)
	return nil
}

func (r *recordingNotifier) SendTransferCompleted(n TransferNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, n)
	return nil
}

type recordingArchive struct {
	mu        sync.Mutex
	snapshots []storage.CertificateSnapshot
}

func (r *recordingArchive) Put(_ context.Context, snapshot storage.CertificateSnapshot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
	return "", nil
}
