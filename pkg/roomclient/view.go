package roomclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// settleCooldown is a client-side guard: after attempting a settle, further
// attempts from this view are rejected locally for this long, regardless of
// what the backend answered.
const settleCooldown = 7 * time.Second

// RoomView is the client-side state for one room: the last known snapshot,
// optimistic confirmation updates with rollback, and the gates around
// settlement. All methods are safe for concurrent use with a running Poller.
type RoomView struct {
	client *Client
	roomID string
	userID string

	mu                sync.Mutex
	snapshot          *dto.RoomResponse
	busy              bool
	lastSettleAttempt time.Time
}

// NewRoomView creates a view of roomID as seen by userID.
func NewRoomView(client *Client, roomID, userID string) *RoomView {
	return &RoomView{client: client, roomID: roomID, userID: userID}
}

// RoomID returns the room this view tracks.
func (v *RoomView) RoomID() string { return v.roomID }

// Snapshot returns the last fetched room state, or nil before the first
// refresh.
func (v *RoomView) Snapshot() *dto.RoomResponse {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return nil
	}
	copied := *v.snapshot
	return &copied
}

// Busy reports whether a user-initiated mutation is in flight. The poller
// skips ticks while the view is busy so a background refresh cannot clobber
// an optimistic update.
func (v *RoomView) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

func (v *RoomView) setBusy(busy bool) {
	v.mu.Lock()
	v.busy = busy
	v.mu.Unlock()
}

// Refresh fetches the room and swaps the cached snapshot only when the
// parts the user can see actually differ, so unchanged polls stay quiet.
// It reports whether the snapshot changed.
func (v *RoomView) Refresh(ctx context.Context) (bool, error) {
	fresh, err := v.client.GetRoom(ctx, v.roomID)
	if err != nil {
		return false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !roomChanged(v.snapshot, fresh) {
		return false, nil
	}
	v.snapshot = fresh
	return true, nil
}

// roomChanged compares the fields the UI renders. Comparison is on the JSON
// encoding, which sidesteps decimal representation differences the same way
// the web client's stringify diff does.
func roomChanged(prev, next *dto.RoomResponse) bool {
	if prev == nil {
		return next != nil
	}
	return diffKey(prev) != diffKey(next)
}

func diffKey(r *dto.RoomResponse) string {
	raw, err := json.Marshal(struct {
		Users     []string              `json:"users"`
		Bill      domain.Ledger         `json:"bill"`
		PayerList []domain.Transfer     `json:"payerList"`
		History   []domain.HistoryEntry `json:"history"`
	}{Users: r.Users, Bill: r.Bill, PayerList: r.PayerList, History: r.History})
	if err != nil {
		return ""
	}
	return string(raw)
}

// MarkReceived optimistically flips the matching transfer to received, then
// confirms with the backend, rolling back on failure. Only the receiver of
// the transfer may call it; confirming an already-received transfer is a
// no-op.
func (v *RoomView) MarkReceived(ctx context.Context, senderID string, amount decimal.Decimal) error {
	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		return fmt.Errorf("another action is in progress: %w", apperrors.ErrValidation)
	}
	if v.snapshot == nil {
		v.mu.Unlock()
		return fmt.Errorf("room not loaded yet: %w", apperrors.ErrValidation)
	}

	idx := -1
	for i, t := range v.snapshot.PayerList {
		if t.SenderID == senderID && t.ReceiverID == v.userID && t.Amount.Equal(amount) {
			idx = i
			break
		}
	}
	if idx < 0 {
		v.mu.Unlock()
		return fmt.Errorf("no matching transfer to confirm: %w", apperrors.ErrNotFound)
	}
	if v.snapshot.PayerList[idx].IsReceived {
		v.mu.Unlock()
		return nil
	}

	// Optimistic flip; rolled back below if the backend rejects it.
	v.snapshot.PayerList[idx].IsReceived = true
	v.busy = true
	v.mu.Unlock()

	err := v.client.MarkReceived(ctx, v.roomID, dto.MarkReceivedRequest{
		SenderID:   senderID,
		ReceiverID: v.userID,
		Amount:     amount,
		UserID:     v.userID,
	})

	v.mu.Lock()
	v.busy = false
	if err != nil && v.snapshot != nil {
		// The snapshot may have been replaced by a refresh while the
		// request was in flight; relocate the transfer before undoing
		// the optimistic flip.
		for i, t := range v.snapshot.PayerList {
			if t.SenderID == senderID && t.ReceiverID == v.userID && t.Amount.Equal(amount) {
				v.snapshot.PayerList[i].IsReceived = false
				break
			}
		}
	}
	v.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to confirm transfer: %w", err)
	}
	return nil
}

// CanSettle reports whether the settle gates pass: a non-empty transfer
// list with every entry confirmed, and no recent local settle attempt.
func (v *RoomView) CanSettle() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil || len(v.snapshot.PayerList) == 0 {
		return false
	}
	if time.Since(v.lastSettleAttempt) < settleCooldown {
		return false
	}
	return domain.AllReceived(v.snapshot.PayerList)
}

// Settle commits the current settlement round. Typed conflicts
// (RECENT_SETTLEMENT, SETTLEMENT_IN_PROGRESS) are informational: the
// snapshot is refreshed and the conflict returned so the caller can
// surface it as a notice rather than a failure.
func (v *RoomView) Settle(ctx context.Context) (*dto.RoomResponse, error) {
	v.mu.Lock()
	if v.snapshot == nil || len(v.snapshot.PayerList) == 0 {
		v.mu.Unlock()
		return nil, fmt.Errorf("nothing to settle: %w", apperrors.ErrValidation)
	}
	if !domain.AllReceived(v.snapshot.PayerList) {
		v.mu.Unlock()
		return nil, fmt.Errorf("not all transfers are confirmed received: %w", apperrors.ErrValidation)
	}
	if since := time.Since(v.lastSettleAttempt); since < settleCooldown {
		v.mu.Unlock()
		return nil, fmt.Errorf("settled %s ago, wait before retrying: %w", since.Round(time.Second), apperrors.ErrValidation)
	}
	v.lastSettleAttempt = time.Now()
	v.busy = true
	adminID := v.snapshot.AdminID
	payerList := append([]domain.Transfer(nil), v.snapshot.PayerList...)
	v.mu.Unlock()

	room, err := v.client.Settle(ctx, v.roomID, dto.SettleRequest{
		AdminID:   adminID,
		PayerList: payerList,
		SettledBy: v.userID,
		Timestamp: time.Now().UnixMilli(),
	})

	v.setBusy(false)

	if err != nil {
		// A conflict means someone else settled first; resync so the view
		// shows the settled room.
		if _, ok := apperrors.AsSettlementConflict(err); ok {
			_, _ = v.Refresh(ctx)
		}
		return nil, err
	}

	v.mu.Lock()
	v.snapshot = room
	v.mu.Unlock()
	return room, nil
}

// SubmitExpense validates the expense the way the entry form does and
// submits it, updating the snapshot with the returned room.
func (v *RoomView) SubmitExpense(ctx context.Context, req dto.AddExpenseRequest) error {
	if err := validateExpenseInput(req); err != nil {
		return err
	}
	if req.CreatedBy == "" {
		req.CreatedBy = v.userID
	}

	v.setBusy(true)
	room, err := v.client.AddExpense(ctx, v.roomID, req)
	v.setBusy(false)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.snapshot = room
	v.mu.Unlock()
	return nil
}

// validateExpenseInput mirrors the submission rules enforced server-side so
// obviously broken expenses never leave the client.
func validateExpenseInput(req dto.AddExpenseRequest) error {
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
	declared := decimal.Zero
	for _, u := range req.Users {
		if u.Share.Sign() < 0 {
			return fmt.Errorf("share for %s is negative: %w", u.UserID, apperrors.ErrValidation)
		}
		if u.Share.IsZero() {
			hasZeroShare = true
		}
		declared = declared.Add(u.Share)
	}
	if !hasZeroShare {
		return fmt.Errorf("at least one participant must have zero share: %w", apperrors.ErrValidation)
	}
	if declared.GreaterThan(req.Amount) {
		return fmt.Errorf("declared shares exceed the expense amount: %w", apperrors.ErrValidation)
	}
	return nil
}
