// cmd/dppctl/cmd_store.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javajoker/dpp-backend/internal/config"
	"github.com/javajoker/dpp-backend/internal/database"
	"github.com/javajoker/dpp-backend/internal/fixtures"
	"github.com/javajoker/dpp-backend/internal/models"
	"github.com/javajoker/dpp-backend/internal/services"
	"github.com/javajoker/dpp-backend/internal/storage"
)

var transfersStatus string

// stateStore is the read side of the backend the server writes to.
type stateStore struct {
	ownership *services.OwnershipService
	transfers *services.TransferService
	close     func()
}

func openStateStore(ctx context.Context) (*stateStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if fixturesDir != "" {
		cfg.Fixtures.Path = fixturesDir
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, err
	}

	kv, err := storage.Open(ctx, cfg, db)
	if err != nil {
		database.Close(db)
		return nil, err
	}

	store, err := fixtures.Load(cfg.Fixtures.Path)
	if err != nil {
		database.Close(db)
		return nil, err
	}

	chain := services.NewBlockchainService(cfg)
	ownership := services.NewOwnershipService(kv, cfg.Store.Prefix, chain, nil, store, nil)
	return &stateStore{
		ownership: ownership,
		transfers: services.NewTransferService(cfg, kv, ownership, chain, store, nil, nil, nil),
		close: func() {
			if closer, ok := kv.(io.Closer); ok {
				closer.Close()
			}
			database.Close(db)
		},
	}, nil
}

// withStateStore runs fn against the configured backend within the timeout.
func withStateStore(fn func(ctx context.Context, s *stateStore) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s, err := openStateStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(ctx, s)
}

var ownershipCmd = &cobra.Command{
	Use:   "ownership PRODUCT_ID",
	Short: "Show the stored ownership record of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStateStore(func(ctx context.Context, s *stateStore) error {
			record, err := s.ownership.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, record)
		})
	},
}

var transfersCmd = &cobra.Command{
	Use:   "transfers",
	Short: "Inspect ownership transfer requests",
}

var transfersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transfer requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.TransferStatus(transfersStatus)
		if status != "" && !status.Valid() {
			return fmt.Errorf("unknown status %q", transfersStatus)
		}
		return withStateStore(func(ctx context.Context, s *stateStore) error {
			list, err := s.transfers.List(ctx, status)
			if err != nil {
				return err
			}
			return printJSON(cmd, publicTransfers(list))
		})
	},
}

var transfersGetCmd = &cobra.Command{
	Use:   "get TRANSFER_ID",
	Short: "Show one transfer request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStateStore(func(ctx context.Context, s *stateStore) error {
			req, err := s.transfers.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, req.Public())
		})
	},
}

var transfersLookupCmd = &cobra.Command{
	Use:   "lookup CODE",
	Short: "Resolve a six-digit transfer code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStateStore(func(ctx context.Context, s *stateStore) error {
			req, err := s.transfers.LookupByCode(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, req.Public())
		})
	},
}

func publicTransfers(list []models.TransferRequest) []models.TransferRequest {
	out := make([]models.TransferRequest, 0, len(list))
	for _, req := range list {
		out = append(out, req.Public())
	}
	return out
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
