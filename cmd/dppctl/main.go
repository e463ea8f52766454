// cmd/dppctl/main.go

// Package main implements dppctl, an operator CLI for the passport backend:
// offline hash and certificate checks against the fixtures, and read access to
// the stored ownership and transfer state.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	fixturesDir string
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "dppctl",
	Short: "Digital product passport operator tool",
	Long: `dppctl inspects passport fixtures and the ownership transfer store.

Fixture commands (hash, verify, badges, impact) run offline. Store commands
(ownership, transfers) read the backend selected by the server's environment
(DB_DRIVER, STORE_DRIVER and friends).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetOutput(cmd.ErrOrStderr())
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&fixturesDir, "fixtures", os.Getenv("FIXTURES_PATH"), "Fixture directory (default: embedded data)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	// Fixture commands
	hashCmd.Flags().StringVar(&hashProduct, "product", "", "Product id (required)")
	hashCmd.Flags().StringVar(&hashTransaction, "tx", "", "Transaction id (required)")
	hashCmd.Flags().StringVar(&hashOwner, "owner", "", "Owner client id (required)")
	hashCmd.Flags().StringVar(&hashTimestamp, "at", "", "Activation time, RFC 3339 (required)")
	hashCmd.MarkFlagRequired("product")
	hashCmd.MarkFlagRequired("tx")
	hashCmd.MarkFlagRequired("owner")
	hashCmd.MarkFlagRequired("at")

	verifyCmd.Flags().StringVar(&verifyProduct, "product", "", "Product id (default: first fixture)")
	verifyCmd.Flags().StringVar(&verifyOwner, "owner", "", "Owner client id (default: manufacturer record)")

	badgesCmd.Flags().StringVar(&badgesOwner, "owner", "", "Owner client id")
	badgesCmd.Flags().StringVar(&badgesSince, "since", "", "Ownership start, RFC 3339 (default: now)")
	badgesCmd.Flags().BoolVar(&badgesAchieved, "achieved", false, "Only list achieved badges")

	impactCmd.Flags().StringVar(&impactSince, "since", "", "Ownership start, RFC 3339 (default: unknown)")

	// Store commands
	transfersListCmd.Flags().StringVar(&transfersStatus, "status", "", "Filter by status (pending, approved, rejected, completed)")
	transfersCmd.AddCommand(transfersListCmd)
	transfersCmd.AddCommand(transfersGetCmd)
	transfersCmd.AddCommand(transfersLookupCmd)

	// Add commands to root
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(ownershipCmd)
	rootCmd.AddCommand(transfersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
