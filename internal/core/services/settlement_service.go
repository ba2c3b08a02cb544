package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	portsrepo "github.com/dablu-app/dablu_backend/internal/core/ports/repositories"
	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/dto"
)

type settlementService struct {
	roomRepo               portsrepo.RoomRepositoryFacade
	userRepo               portsrepo.UserRepositoryFacade
	recentSettlementWindow time.Duration
}

// NewSettlementService creates a new settlement service.
func NewSettlementService(roomRepo portsrepo.RoomRepositoryFacade, userRepo portsrepo.UserRepositoryFacade, recentSettlementWindow time.Duration) portssvc.SettlementSvcFacade {
	return &settlementService{
		roomRepo:               roomRepo,
		userRepo:               userRepo,
		recentSettlementWindow: recentSettlementWindow,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// Calculate rederives the room's transfer list from its ledger and persists
// it, carrying over confirmations for transfers whose identity is unchanged.
func (s *settlementService) Calculate(ctx context.Context, roomID string) ([]domain.Transfer, error) {
	room, err := s.roomRepo.MutateRoom(ctx, roomID, func(r *domain.Room) error {
		return s.refreshPayerList(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to calculate settlement: %w", err)
	}
	return room.PayerList, nil
}

// UpdatePayerList replaces the room's transfer list with the client's copy,
// keeping confirmations already recorded for matching transfers.
// The ledger stays authoritative; only confirmation flags matching a current
// transfer identity survive the next recalculation.
func (s *settlementService) UpdatePayerList(ctx context.Context, roomID string, payerList []domain.Transfer) (*domain.Room, error) {
	room, err := s.roomRepo.MutateRoom(ctx, roomID, func(r *domain.Room) error {
		r.PayerList = domain.MergeConfirmations(payerList, r.PayerList)
		r.LastUpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update payer list: %w", err)
	}
	return room, nil
}

// MarkReceived flips a single transfer to received. Only the receiver may
// confirm, and confirming an already-received transfer is a no-op.
func (s *settlementService) MarkReceived(ctx context.Context, roomID string, req dto.MarkReceivedRequest) error {
	if req.UserID != req.ReceiverID {
		return fmt.Errorf("only the receiver may confirm a transfer: %w", apperrors.ErrForbidden)
	}

	key := fmt.Sprintf("%s|%s|%s", req.SenderID, req.ReceiverID, req.Amount.String())
	_, err := s.roomRepo.MutateRoom(ctx, roomID, func(r *domain.Room) error {
		for i := range r.PayerList {
			if r.PayerList[i].Key() != key {
				continue
			}
			r.PayerList[i].IsReceived = true
			r.LastUpdatedAt = time.Now()
			r.LastUpdatedBy = req.UserID
			return nil
		}
		return fmt.Errorf("no matching transfer in room %s: %w", roomID, apperrors.ErrNotFound)
	})
	if err != nil {
		return fmt.Errorf("failed to mark transfer received: %w", err)
	}
	return nil
}

// Settle finalizes the current settlement round: every transfer must be
// confirmed, the round is archived to history and the ledger is reset.
// Concurrent attempts and rapid re-submissions are rejected with typed
// conflicts so clients can surface them as informational.
func (s *settlementService) Settle(ctx context.Context, roomID string, req dto.SettleRequest) (*domain.Room, error) {
	now := time.Now()

	// The client timestamp is recorded as the submission time, but never
	// trusted for the recent-settlement check. A skewed clock must not
	// slip past the window.
	settledAt := now
	if req.Timestamp > 0 {
		settledAt = time.UnixMilli(req.Timestamp)
	}

	room, err := s.roomRepo.SettleRoom(ctx, roomID, func(r *domain.Room) error {
		if r.AdminID != req.AdminID {
			return fmt.Errorf("only the room admin may settle: %w", apperrors.ErrForbidden)
		}
		if !r.IsMember(req.SettledBy) {
			return fmt.Errorf("user %s is not a member of room %s: %w", req.SettledBy, roomID, apperrors.ErrForbidden)
		}
		if len(r.PayerList) == 0 {
			return fmt.Errorf("nothing to settle: %w", apperrors.ErrValidation)
		}
		if !domain.AllReceived(r.PayerList) {
			return fmt.Errorf("not all transfers are confirmed received: %w", apperrors.ErrValidation)
		}

		if r.LastSettledAt != nil {
			elapsed := now.Sub(*r.LastSettledAt)
			if elapsed < s.recentSettlementWindow {
				return &apperrors.SettlementConflictError{
					Type:                    apperrors.ConflictRecentSettlement,
					Suggestion:              "the room was settled moments ago, refresh to see the latest state",
					LastSettlement:          r.LastSettledAt,
					TimeSinceLastSettlement: elapsed.String(),
				}
			}
		}

		archived := make([]domain.Transfer, len(r.PayerList))
		copy(archived, r.PayerList)

		r.History = append(r.History, domain.HistoryEntry{
			IsExpense:       false,
			Date:            settledAt.Format(historyDateLayout),
			Time:            settledAt.Format(historyTimeLayout),
			SettledByUserID: req.SettledBy,
			Bill:            archived,
		})
		r.Bill.Reset()
		r.PayerList = nil
		r.LastSettledAt = &settledAt
		r.LastUpdatedAt = settledAt
		r.LastUpdatedBy = req.SettledBy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// refreshPayerList mirrors the room service helper so settlement
// recalculation shares the same merge semantics.
func (s *settlementService) refreshPayerList(ctx context.Context, room *domain.Room) error {
	members, err := s.userRepo.FindUsersByIDs(ctx, room.Users)
	if err != nil {
		return fmt.Errorf("failed to resolve room members: %w", err)
	}

	room.Bill.Collapse()
	fresh, err := domain.DeriveTransfers(room.Bill, members)
	if err != nil {
		return fmt.Errorf("failed to derive transfers: %w", err)
	}
	room.PayerList = domain.MergeConfirmations(fresh, room.PayerList)
	return nil
}
