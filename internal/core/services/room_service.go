package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	portsrepo "github.com/dablu-app/dablu_backend/internal/core/ports/repositories"
	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/dablu-app/dablu_backend/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	historyDateLayout = "2006-01-02"
	historyTimeLayout = "03:04 PM"
)

type roomService struct {
	roomRepo portsrepo.RoomRepositoryFacade
	userRepo portsrepo.UserRepositoryFacade
}

// NewRoomService creates a new room service.
func NewRoomService(roomRepo portsrepo.RoomRepositoryFacade, userRepo portsrepo.UserRepositoryFacade) portssvc.RoomSvcFacade {
	return &roomService{roomRepo: roomRepo, userRepo: userRepo}
}

var _ portssvc.RoomSvcFacade = (*roomService)(nil)

func (s *roomService) GetRoomByID(ctx context.Context, roomID string, requestingUserID string) (*domain.Room, error) {
	room, err := s.roomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if !room.IsMember(requestingUserID) {
		return nil, fmt.Errorf("user %s is not a member of room %s: %w", requestingUserID, roomID, apperrors.ErrForbidden)
	}
	return room, nil
}

func (s *roomService) ListRoomsForUser(ctx context.Context, userID string) ([]domain.Room, error) {
	rooms, err := s.roomRepo.FindRoomsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *roomService) CreateRoom(ctx context.Context, req dto.CreateRoomRequest) (*domain.Room, error) {
	if strings.TrimSpace(req.RoomName) == "" {
		return nil, fmt.Errorf("room name must not be blank: %w", apperrors.ErrValidation)
	}
	if _, err := s.userRepo.FindUserByID(ctx, req.AdminID); err != nil {
		return nil, fmt.Errorf("failed to resolve room admin: %w", err)
	}

	roomID, err := utils.GenerateRoomCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	now := time.Now()
	room := domain.Room{
		RoomID:   roomID,
		RoomName: strings.TrimSpace(req.RoomName),
		AdminID:  req.AdminID,
		Users:    []string{req.AdminID},
		Bill:     domain.NewLedger(1),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     req.AdminID,
			LastUpdatedAt: now,
			LastUpdatedBy: req.AdminID,
		},
	}

	if err := s.roomRepo.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}
	return &room, nil
}

func (s *roomService) JoinRoom(ctx context.Context, roomID string, userID string) (*domain.Room, error) {
	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to resolve joining user: %w", err)
	}

	room, err := s.roomRepo.MutateRoom(ctx, roomID, func(r *domain.Room) error {
		if r.IsMember(userID) {
			// Joining again is a no-op.
			return nil
		}
		r.Users = append(r.Users, userID)
		r.Bill = r.Bill.Grow()
		r.LastUpdatedAt = time.Now()
		r.LastUpdatedBy = userID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}
	return room, nil
}

// AddExpense validates the submission, records each participant's debt
// toward the spender and appends the expense to room history. Participants
// with zero declared share split the remainder of the amount between them.
func (s *roomService) AddExpense(ctx context.Context, roomID string, req dto.AddExpenseRequest) (*domain.Room, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}

	now := time.Now()
	date := req.Date
	if date == "" {
		date = now.Format(historyDateLayout)
	}
	timeOfDay := req.Time
	if timeOfDay == "" {
		timeOfDay = now.Format(historyTimeLayout)
	}

	room, err := s.roomRepo.MutateRoom(ctx, roomID, func(r *domain.Room) error {
		spenderIdx := r.MemberIndex(req.UserID)
		if spenderIdx < 0 {
			return fmt.Errorf("spender %s is not a member of room %s: %w", req.UserID, roomID, apperrors.ErrValidation)
		}
		if !r.IsMember(req.CreatedBy) {
			return fmt.Errorf("creator %s is not a member of room %s: %w", req.CreatedBy, roomID, apperrors.ErrForbidden)
		}

		shares, err := resolveShares(req, r)
		if err != nil {
			return err
		}

		for _, share := range shares {
			idx := r.MemberIndex(share.UserID)
			if idx == spenderIdx || share.Share.Sign() <= 0 {
				// The spender's own share and zero remainders add no debt.
				continue
			}
			if err := r.Bill.AddDebt(idx, spenderIdx, share.Share); err != nil {
				return fmt.Errorf("failed to record debt: %w", err)
			}
		}

		r.History = append(r.History, domain.HistoryEntry{
			IsExpense:       true,
			Date:            date,
			Time:            timeOfDay,
			Amount:          req.Amount,
			Description:     strings.TrimSpace(req.Description),
			PaidUserID:      req.UserID,
			CreatedByUserID: req.CreatedBy,
			Users:           shares,
		})
		r.LastUpdatedAt = now
		r.LastUpdatedBy = req.CreatedBy

		return s.refreshPayerList(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomService) DeleteRoom(ctx context.Context, roomID string, requestingUserID string) error {
	room, err := s.roomRepo.FindRoomByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to load room for deletion: %w", err)
	}
	if room.AdminID != requestingUserID {
		return fmt.Errorf("only the room admin may delete the room: %w", apperrors.ErrForbidden)
	}
	if room.Bill.HasOutstanding() {
		return fmt.Errorf("room still has unsettled debts: %w", apperrors.ErrValidation)
	}
	if err := s.roomRepo.DeleteRoom(ctx, roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// refreshPayerList collapses the ledger, rederives the transfer list and
// carries over confirmations whose identity key is unchanged.
func (s *roomService) refreshPayerList(ctx context.Context, room *domain.Room) error {
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

// validateExpense applies the client-visible submission rules: spender and
// amount present, amount positive, at least one participant, non-blank
// description, and at least one participant with zero share to absorb the
// remainder.
func validateExpense(req dto.AddExpenseRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("spender must be selected: %w", apperrors.ErrValidation)
	}
	if req.Amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive: %w", apperrors.ErrValidation)
	}
	if len(req.Users) == 0 {
		return fmt.Errorf("at least one participant must be selected: %w", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("description must not be blank: %w", apperrors.ErrValidation)
	}

	hasZeroShare := false
	for _, u := range req.Users {
		if u.Share.Sign() < 0 {
			return fmt.Errorf("share for %s is negative: %w", u.UserID, apperrors.ErrValidation)
		}
		if u.Share.IsZero() {
			hasZeroShare = true
		}
	}
	if !hasZeroShare {
		return fmt.Errorf("at least one participant must have zero share: %w", apperrors.ErrValidation)
	}
	return nil
}

// resolveShares checks membership, rejects declared shares exceeding the
// amount and distributes the remainder across the zero-share participants.
func resolveShares(req dto.AddExpenseRequest, room *domain.Room) ([]domain.ExpenseShare, error) {
	seen := make(map[string]bool, len(req.Users))
	declared := decimal.Zero
	zeroShareCount := 0

	for _, u := range req.Users {
		if room.MemberIndex(u.UserID) < 0 {
			return nil, fmt.Errorf("participant %s is not a member: %w", u.UserID, apperrors.ErrValidation)
		}
		if seen[u.UserID] {
			return nil, fmt.Errorf("participant %s listed twice: %w", u.UserID, apperrors.ErrValidation)
		}
		seen[u.UserID] = true
		declared = declared.Add(u.Share)
		if u.Share.IsZero() {
			zeroShareCount++
		}
	}

	remainder := req.Amount.Sub(declared)
	if remainder.Sign() < 0 {
		return nil, fmt.Errorf("declared shares exceed the expense amount: %w", apperrors.ErrValidation)
	}

	perZeroShare := decimal.Zero
	if zeroShareCount > 0 && remainder.Sign() > 0 {
		perZeroShare = remainder.Div(decimal.NewFromInt(int64(zeroShareCount)))
	}

	shares := make([]domain.ExpenseShare, 0, len(req.Users))
	for _, u := range req.Users {
		share := u.Share
		if share.IsZero() {
			share = perZeroShare
		}
		shares = append(shares, domain.ExpenseShare{UserID: u.UserID, Share: share})
	}
	return shares, nil
}
