package services

import (
	"context"

	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/dablu-app/dablu_backend/internal/dto"
)

// SettlementSvcFacade is the server-side settlement resolver: it reduces
// the room ledger to transfers, tracks per-transfer confirmation and
// commits the settlement once everything is confirmed.
type SettlementSvcFacade interface {
	// Calculate collapses the ledger, derives the transfer list, merges
	// confirmation state from the previously persisted list and persists
	// the result.
	Calculate(ctx context.Context, roomID string) ([]domain.Transfer, error)

	// UpdatePayerList persists a client-computed transfer list, merging
	// confirmations from the stored one. Kept for compatibility with the
	// earlier client-computed design.
	UpdatePayerList(ctx context.Context, roomID string, payerList []domain.Transfer) (*domain.Room, error)

	// MarkReceived flips one transfer to RECEIVED. Only the transfer's
	// receiver may confirm; confirming twice is a no-op.
	MarkReceived(ctx context.Context, roomID string, req dto.MarkReceivedRequest) error

	// Settle commits the settlement: all transfers received, ledger
	// zeroed, history appended. Exactly one concurrent attempt succeeds;
	// the rest receive a typed SettlementConflictError.
	Settle(ctx context.Context, roomID string, req dto.SettleRequest) (*domain.Room, error)
}
