package roomclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dablu-app/dablu_backend/internal/apperrors"
	"github.com/dablu-app/dablu_backend/internal/core/domain"
	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settleReq() dto.SettleRequest {
	return dto.SettleRequest{
		AdminID:   "u0",
		SettledBy: "u0",
		Timestamp: 1700000000000,
	}
}

// fakeBackend serves a mutable room snapshot and records mutation calls.
type fakeBackend struct {
	mu               sync.Mutex
	room             dto.RoomResponse
	failMarkReceived bool
	markReceivedHits int
	settleConflict   *apperrors.SettlementConflictError
}

func (f *fakeBackend) setRoom(room dto.RoomResponse) {
	f.mu.Lock()
	f.room = room
	f.mu.Unlock()
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /room/{roomID}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.room)
	})
	// "POST /room/{roomID}/mark-received" and "POST /room/settle/{roomID}"
	// conflict under ServeMux pattern rules, so the POST routes are
	// dispatched by hand.
	markReceived := func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.markReceivedHits++
		if f.failMarkReceived {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "no matching transfer"})
			return
		}
		json.NewEncoder(w).Encode(dto.MarkReceivedResponse{Success: true})
	}
	settle := func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.settleConflict != nil {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{
				"error":      f.settleConflict.Error(),
				"type":       f.settleConflict.Type,
				"suggestion": f.settleConflict.Suggestion,
			})
			return
		}
		f.room.PayerList = []domain.Transfer{}
		f.room.Bill = domain.NewLedger(len(f.room.Users))
		json.NewEncoder(w).Encode(f.room)
	}
	mux.HandleFunc("POST /room/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/room/settle/"):
			settle(w, r)
		case strings.HasSuffix(r.URL.Path, "/mark-received"):
			markReceived(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	return mux
}

func twoPersonRoom() dto.RoomResponse {
	return dto.RoomResponse{
		RoomID:  "AB12CD",
		AdminID: "u0",
		Users:   []string{"u0", "u1"},
		Bill:    domain.NewLedger(2),
		PayerList: []domain.Transfer{
			{SenderID: "u1", Sender: "bob", ReceiverID: "u0", Receiver: "alice", Amount: decimal.NewFromInt(50)},
		},
		History: []domain.HistoryEntry{},
	}
}

func newTestView(t *testing.T, f *fakeBackend, userID string) *RoomView {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	client := New(Config{BaseURL: srv.URL, Token: "tok"})
	return NewRoomView(client, "AB12CD", userID)
}

func TestRoomView_RefreshQuietWhenUnchanged(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")
	ctx := context.Background()

	changed, err := view.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = view.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRoomView_RefreshDetectsChange(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)

	room := twoPersonRoom()
	room.PayerList[0].IsReceived = true
	f.setRoom(room)

	changed, err := view.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, view.Snapshot().PayerList[0].IsReceived)
}

func TestRoomView_MarkReceivedOptimistic(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)

	err = view.MarkReceived(ctx, "u1", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, view.Snapshot().PayerList[0].IsReceived)
	assert.Equal(t, 1, f.markReceivedHits)

	// Confirming again is a local no-op.
	err = view.MarkReceived(ctx, "u1", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, 1, f.markReceivedHits)
}

func TestRoomView_MarkReceivedRollsBackOnFailure(t *testing.T) {
	f := &fakeBackend{failMarkReceived: true}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)

	err = view.MarkReceived(ctx, "u1", decimal.NewFromInt(50))
	require.Error(t, err)
	assert.False(t, view.Snapshot().PayerList[0].IsReceived)
	assert.False(t, view.Busy())
}

func TestRoomView_MarkReceivedRollbackSurvivesSnapshotSwap(t *testing.T) {
	confirmed := domain.Transfer{SenderID: "u1", Sender: "bob", ReceiverID: "u0", Receiver: "alice", Amount: decimal.NewFromInt(50), IsReceived: true}
	pending := domain.Transfer{SenderID: "u2", Sender: "carol", ReceiverID: "u0", Receiver: "alice", Amount: decimal.NewFromInt(30)}

	room := dto.RoomResponse{
		RoomID:    "AB12CD",
		AdminID:   "u0",
		Users:     []string{"u0", "u1", "u2"},
		Bill:      domain.NewLedger(3),
		PayerList: []domain.Transfer{confirmed, pending},
		History:   []domain.HistoryEntry{},
	}

	var mu sync.Mutex
	inFlight := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /room/{roomID}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		json.NewEncoder(w).Encode(room)
	})
	mux.HandleFunc("POST /room/{roomID}/mark-received", func(w http.ResponseWriter, r *http.Request) {
		inFlight <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no matching transfer"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	view := NewRoomView(New(Config{BaseURL: srv.URL, Token: "tok"}), "AB12CD", "u0")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- view.MarkReceived(ctx, "u2", decimal.NewFromInt(30))
	}()

	// While the confirmation is in flight, the server reorders the list
	// and a direct refresh replaces the snapshot.
	<-inFlight
	mu.Lock()
	room.PayerList = []domain.Transfer{pending, confirmed}
	mu.Unlock()
	_, err = view.Refresh(ctx)
	require.NoError(t, err)

	close(release)
	require.Error(t, <-done)

	// The rollback must undo the pending transfer, not whatever now sits
	// at its old index.
	for _, tr := range view.Snapshot().PayerList {
		switch tr.SenderID {
		case "u1":
			assert.True(t, tr.IsReceived)
		case "u2":
			assert.False(t, tr.IsReceived)
		}
	}
}

func TestRoomView_MarkReceivedOnlyForOwnTransfers(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	// u1 is the sender, not the receiver, of the only transfer.
	view := newTestView(t, f, "u1")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)

	err = view.MarkReceived(ctx, "u1", decimal.NewFromInt(50))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, f.markReceivedHits)
}

func TestRoomView_SettleRequiresAllReceived(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)

	assert.False(t, view.CanSettle())
	_, err = view.Settle(ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRoomView_SettleSuccessAndCooldown(t *testing.T) {
	f := &fakeBackend{}
	room := twoPersonRoom()
	room.PayerList[0].IsReceived = true
	f.setRoom(room)
	view := newTestView(t, f, "u0")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, view.CanSettle())

	settled, err := view.Settle(ctx)
	require.NoError(t, err)
	assert.Empty(t, settled.PayerList)

	// The local cool-down rejects an immediate second attempt before any
	// gate on the payer list is even consulted.
	f.setRoom(room)
	_, err = view.Refresh(ctx)
	require.NoError(t, err)
	_, err = view.Settle(ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.False(t, view.CanSettle())
}

func TestRoomView_SettleConflictRefreshes(t *testing.T) {
	room := twoPersonRoom()
	room.PayerList[0].IsReceived = true
	f := &fakeBackend{
		settleConflict: &apperrors.SettlementConflictError{
			Type:       apperrors.ConflictRecentSettlement,
			Suggestion: "refresh to see the latest state",
		},
	}
	f.setRoom(room)
	view := newTestView(t, f, "u0")
	ctx := context.Background()

	_, err := view.Refresh(ctx)
	require.NoError(t, err)

	// Another client settles the room while we attempt the same.
	settledRoom := twoPersonRoom()
	settledRoom.PayerList = []domain.Transfer{}
	f.setRoom(settledRoom)

	_, err = view.Settle(ctx)
	conflict, ok := apperrors.AsSettlementConflict(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ConflictRecentSettlement, conflict.Type)

	// The conflict triggered a resync to the settled state.
	assert.Empty(t, view.Snapshot().PayerList)
}

func TestRoomView_SubmitExpenseValidation(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")

	err := view.SubmitExpense(context.Background(), dto.AddExpenseRequest{
		UserID:      "u0",
		Amount:      decimal.NewFromInt(50),
		Description: "Dinner",
		Users: []dto.ExpenseShareInput{
			{UserID: "u1", Share: decimal.NewFromInt(50)},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
