package roomclient

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPoller_NotifiesOnChange(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")

	var changes atomic.Int32
	poller := NewPoller(view, 20*time.Millisecond, func(dto.RoomResponse) {
		changes.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	// The initial fetch counts as a change from the empty view.
	waitFor(t, func() bool { return changes.Load() == 1 })

	// A few quiet ticks later nothing further has fired.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), changes.Load())

	room := twoPersonRoom()
	room.PayerList[0].IsReceived = true
	f.setRoom(room)
	waitFor(t, func() bool { return changes.Load() == 2 })
}

func TestPoller_SuppressedWhileHidden(t *testing.T) {
	f := &fakeBackend{}
	f.setRoom(twoPersonRoom())
	view := newTestView(t, f, "u0")

	var changes atomic.Int32
	poller := NewPoller(view, 20*time.Millisecond, func(dto.RoomResponse) {
		changes.Add(1)
	})
	poller.SetVisible(false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), changes.Load())
	assert.Nil(t, view.Snapshot())

	// Regaining visibility refreshes immediately.
	poller.SetVisible(true)
	waitFor(t, func() bool { return changes.Load() == 1 })
	require.NotNil(t, view.Snapshot())
}

func TestPoller_DefaultInterval(t *testing.T) {
	view := NewRoomView(New(Config{BaseURL: "http://localhost"}), "AB12CD", "u0")
	p := NewPoller(view, 0, nil)
	assert.Equal(t, defaultPollInterval, p.interval)
}

func TestPollerState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "mutating", StateMutating.String())
	assert.Equal(t, "reconciling", StateReconciling.String())
}
