// cmd/dppctl/cli_test.go
package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/dpp-backend/internal/models"
	"github.com/javajoker/dpp-backend/internal/services"
)

const jacketHash = "0xbeba5d56e3818bdfad8eed915606d12bd01d5da78f274fcc59324cbe2950274b"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHashCommand(t *testing.T) {
	out, err := execute(t, "hash",
		"--product", "LV-JKT-4521-000987",
		"--tx", "TX-LV-20250402-8F2K1Q",
		"--owner", "CL-782134",
		"--at", "2025-04-02T10:15:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, jacketHash, strings.TrimSpace(out))
}

func TestHashCommandRejectsBadTime(t *testing.T) {
	_, err := execute(t, "hash",
		"--product", "P", "--tx", "T", "--owner", "O", "--at", "yesterday")
	assert.ErrorContains(t, err, "invalid time")
}

func TestVerifyCommand(t *testing.T) {
	out, err := execute(t, "verify", "--product", "LV-JKT-4521-000987", "--owner", "", jacketHash)
	require.NoError(t, err)

	var result services.VerificationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.IsValid)
	assert.Equal(t, "LV-CERT-998234", result.CertificateID)
}

func TestVerifyCommandFailsOnTamperedHash(t *testing.T) {
	tampered := jacketHash[:len(jacketHash)-1] + "c"
	_, err := execute(t, "verify", "--product", "LV-JKT-4521-000987", "--owner", "", tampered)
	assert.ErrorContains(t, err, "could not be verified")
}

func TestBadgesCommandAchievedOnly(t *testing.T) {
	out, err := execute(t, "badges", "LV-JKT-4521-000987",
		"--owner", "CL-782134", "--since", "2020-01-01T00:00:00Z", "--achieved")
	require.NoError(t, err)

	var badges []models.Badge
	require.NoError(t, json.Unmarshal([]byte(out), &badges))
	require.NotEmpty(t, badges)
	for _, b := range badges {
		assert.True(t, b.Achieved, b.ID)
	}
}

func TestPublicTransfersStripsTokens(t *testing.T) {
	list := publicTransfers([]models.TransferRequest{{TransferID: "T-1", ApprovalToken: "secret"}})
	require.Len(t, list, 1)
	assert.Empty(t, list[0].ApprovalToken)
}
