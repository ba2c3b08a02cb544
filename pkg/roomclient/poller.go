package roomclient

import (
	"context"
	"sync"
	"time"

	"github.com/dablu-app/dablu_backend/internal/dto"
)

// defaultPollInterval matches the web client's refresh cadence.
const defaultPollInterval = 5 * time.Second

// PollerState describes what the poller is doing right now.
type PollerState int

const (
	// StateIdle: waiting for the next tick.
	StateIdle PollerState = iota
	// StateMutating: a user action owns the view; ticks are skipped.
	StateMutating
	// StateReconciling: a background refresh is in flight.
	StateReconciling
)

func (s PollerState) String() string {
	switch s {
	case StateMutating:
		return "mutating"
	case StateReconciling:
		return "reconciling"
	default:
		return "idle"
	}
}

// Poller periodically refreshes a RoomView. Ticks are suppressed while the
// view is hidden or busy with a user action; regaining visibility triggers
// an immediate refresh instead of waiting out the interval.
type Poller struct {
	view     *RoomView
	interval time.Duration
	onChange func(dto.RoomResponse)

	mu      sync.Mutex
	visible bool
	state   PollerState

	kick chan struct{}
}

// NewPoller creates a poller over view. interval <= 0 selects the default.
// onChange, if non-nil, is called with the new snapshot after every refresh
// that actually changed the view.
func NewPoller(view *RoomView, interval time.Duration, onChange func(dto.RoomResponse)) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		view:     view,
		interval: interval,
		onChange: onChange,
		visible:  true,
		kick:     make(chan struct{}, 1),
	}
}

// State returns the poller's current state.
func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view.Busy() {
		return StateMutating
	}
	return p.state
}

// SetVisible toggles tick suppression. Turning visibility back on triggers
// an immediate refresh, mirroring the web client's behavior when its tab
// regains focus.
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	wasVisible := p.visible
	p.visible = visible
	p.mu.Unlock()

	if visible && !wasVisible {
		select {
		case p.kick <- struct{}{}:
		default:
		}
	}
}

// Run polls until ctx is cancelled. Refresh errors are swallowed: the next
// tick retries, exactly like the web client's silent background refresh.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch so consumers see the room without waiting a full tick.
	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		case <-p.kick:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	visible := p.visible
	p.mu.Unlock()

	if !visible || p.view.Busy() {
		return
	}

	p.setState(StateReconciling)
	defer p.setState(StateIdle)

	changed, err := p.view.Refresh(ctx)
	if err != nil || !changed {
		return
	}
	if p.onChange != nil {
		if snap := p.view.Snapshot(); snap != nil {
			p.onChange(*snap)
		}
	}
}

func (p *Poller) setState(s PollerState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
