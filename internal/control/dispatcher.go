package control

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/logging"
)

// DefaultTimeout bounds a single command request.
const DefaultTimeout = 3 * time.Second

// Sender delivers one command to the backend. *backend.Client implements it.
type Sender interface {
	Send(ctx context.Context, cmd backend.Command) error
}

// Refresher requests an out-of-band status fetch. *status.Poller
// implements it.
type Refresher interface {
	Trigger()
}

// Dispatcher issues control commands.
//
// Calls are independent and may run concurrently. A command, once sent, is
// not cancelled by the caller's context: it runs to completion or until the
// dispatcher's timeout.
type Dispatcher struct {
	sender  Sender
	refresh Refresher
	timeout time.Duration
	newID   func() string

	mu      sync.Mutex
	lastErr error
}

// NewDispatcher creates a dispatcher. refresh may be nil when nothing is
// polling, and a zero timeout selects DefaultTimeout.
func NewDispatcher(sender Sender, refresh Refresher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		sender:  sender,
		refresh: refresh,
		timeout: timeout,
		newID:   uuid.NewString,
	}
}

// Dispatch sends cmd once and triggers one refresh if it succeeds.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd backend.Command) error {
	if err := d.send(ctx, cmd); err != nil {
		return err
	}
	d.Refresh()
	return nil
}

// send delivers cmd without refreshing.
func (d *Dispatcher) send(ctx context.Context, cmd backend.Command) error {
	if cmd.RequestID == "" {
		cmd.RequestID = d.newID()
	}

	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	err := d.sender.Send(reqCtx, cmd)
	logging.LogCommand(cmd.RequestID, cmd.Action, cmd.Path, err)

	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()

	return err
}

// Refresh asks the poller for an immediate fetch.
func (d *Dispatcher) Refresh() {
	if d.refresh != nil {
		d.refresh.Trigger()
	}
}

// LastCommandError returns the error of the most recent command, nil if it
// succeeded or nothing was sent yet.
func (d *Dispatcher) LastCommandError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Dispatcher) AlarmOn(ctx context.Context) error {
	return d.Dispatch(ctx, backend.AlarmOn())
}

func (d *Dispatcher) AlarmOff(ctx context.Context) error {
	return d.Dispatch(ctx, backend.AlarmOff())
}

func (d *Dispatcher) ArmSystem(ctx context.Context) error {
	return d.Dispatch(ctx, backend.ArmSystem())
}

func (d *Dispatcher) DisarmSystem(ctx context.Context) error {
	return d.Dispatch(ctx, backend.DisarmSystem())
}

// SendKey submits a single keypad button.
func (d *Dispatcher) SendKey(ctx context.Context, key string) error {
	return d.Dispatch(ctx, backend.DMSKey(key))
}

// SetTimer sets the kitchen timer from user text; invalid text sets 0.
func (d *Dispatcher) SetTimer(ctx context.Context, text string) error {
	return d.Dispatch(ctx, backend.SetTimer(CoerceInt(text)))
}

// SetTimerAddN configures the seconds added per button press. Zero or
// invalid text falls back to 1.
func (d *Dispatcher) SetTimerAddN(ctx context.Context, text string) error {
	n := CoerceInt(text)
	if n == 0 {
		n = 1
	}
	return d.Dispatch(ctx, backend.SetTimerAddN(n))
}

func (d *Dispatcher) TimerAdd(ctx context.Context) error {
	return d.Dispatch(ctx, backend.TimerAdd())
}

// SetRGBPower switches the RGB light; the body carries only the power flag.
func (d *Dispatcher) SetRGBPower(ctx context.Context, on bool) error {
	return d.Dispatch(ctx, backend.SetRGBPower(on))
}

// SetRGBColor applies a colour; the body carries only the channels, which
// are passed through unclamped.
func (d *Dispatcher) SetRGBColor(ctx context.Context, r, g, b int) error {
	return d.Dispatch(ctx, backend.SetRGBColor(r, g, b))
}

func (d *Dispatcher) ScenarioPi1Entry(ctx context.Context) error {
	return d.Dispatch(ctx, backend.ScenarioPi1Entry())
}

func (d *Dispatcher) ScenarioPi1Exit(ctx context.Context) error {
	return d.Dispatch(ctx, backend.ScenarioPi1Exit())
}
