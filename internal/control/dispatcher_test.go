package control

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/homedash/internal/backend"
)

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"42", 42},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"3.9", 3},
		{"-3.9", -3},
		{"1e3", 1000},
		{"NaN", 0},
		{"Inf", 0},
		{"99999999999", 2147483647},
	}

	for _, tt := range tests {
		if got := CoerceInt(tt.in); got != tt.want {
			t.Errorf("CoerceInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDispatcher_Actions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(d *Dispatcher) error
		wantPath string
		wantBody string
	}{
		{"alarm on", func(d *Dispatcher) error { return d.AlarmOn(ctx) }, "/alarm/on", `{}`},
		{"alarm off", func(d *Dispatcher) error { return d.AlarmOff(ctx) }, "/alarm/off", `{}`},
		{"arm", func(d *Dispatcher) error { return d.ArmSystem(ctx) }, "/system/arm", `{}`},
		{"disarm", func(d *Dispatcher) error { return d.DisarmSystem(ctx) }, "/system/disarm", `{}`},
		{"key", func(d *Dispatcher) error { return d.SendKey(ctx, "#") }, "/dms/key", `{"key":"#"}`},
		{"timer set", func(d *Dispatcher) error { return d.SetTimer(ctx, "90") }, "/timer/set", `{"seconds":90}`},
		{"timer set invalid", func(d *Dispatcher) error { return d.SetTimer(ctx, "soon") }, "/timer/set", `{"seconds":0}`},
		{"timer add_n", func(d *Dispatcher) error { return d.SetTimerAddN(ctx, "15") }, "/timer/config", `{"add_n":15}`},
		{"timer add_n fallback", func(d *Dispatcher) error { return d.SetTimerAddN(ctx, "x") }, "/timer/config", `{"add_n":1}`},
		{"timer add", func(d *Dispatcher) error { return d.TimerAdd(ctx) }, "/timer/add", `{}`},
		{"rgb off", func(d *Dispatcher) error { return d.SetRGBPower(ctx, false) }, "/rgb", `{"on":false}`},
		{"rgb colour", func(d *Dispatcher) error { return d.SetRGBColor(ctx, 300, -1, 5) }, "/rgb", `{"r":300,"g":-1,"b":5}`},
		{"entry", func(d *Dispatcher) error { return d.ScenarioPi1Entry(ctx) }, "/scenario/pi1_entry", `{}`},
		{"exit", func(d *Dispatcher) error { return d.ScenarioPi1Exit(ctx) }, "/scenario/pi1_exit", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, sender, refresher := newTestDispatcher(nil)

			require.NoError(t, tt.call(d))

			cmds := sender.Commands()
			require.Len(t, cmds, 1, "exactly one request per action")
			assert.Equal(t, tt.wantPath, cmds[0].Path)
			assert.JSONEq(t, tt.wantBody, bodyJSON(cmds[0]))
			assert.NotEmpty(t, cmds[0].RequestID)
			assert.Equal(t, 1, refresher.Count(), "exactly one refresh on success")
			assert.NoError(t, d.LastCommandError())
		})
	}
}

func TestDispatcher_FailureNoRefreshNoRetry(t *testing.T) {
	boom := backend.NewHTTPError("POST /system/arm", 500)
	d, sender, refresher := newTestDispatcher(map[int]error{0: boom})

	err := d.ArmSystem(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Len(t, sender.Commands(), 1)
	assert.Equal(t, 0, refresher.Count())
	assert.ErrorIs(t, d.LastCommandError(), boom)

	require.NoError(t, d.AlarmOff(context.Background()))
	assert.NoError(t, d.LastCommandError())
}

func TestDispatcher_RequestIDsAreUnique(t *testing.T) {
	d, sender, _ := newTestDispatcher(nil)

	require.NoError(t, d.AlarmOn(context.Background()))
	require.NoError(t, d.AlarmOn(context.Background()))

	cmds := sender.Commands()
	assert.NotEqual(t, cmds[0].RequestID, cmds[1].RequestID)
}

func TestDispatcher_IgnoresCallerCancellation(t *testing.T) {
	var sawErr error
	sender := senderFunc(func(ctx context.Context, cmd backend.Command) error {
		sawErr = ctx.Err()
		return nil
	})
	d := NewDispatcher(sender, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, d.AlarmOn(ctx))
	assert.NoError(t, sawErr, "a sent command runs to completion")
}

func TestDispatcher_NilRefresher(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, nil, 0)
	assert.NoError(t, d.TimerAdd(context.Background()))
}

type senderFunc func(ctx context.Context, cmd backend.Command) error

func (fn senderFunc) Send(ctx context.Context, cmd backend.Command) error {
	return fn(ctx, cmd)
}

var _ Sender = (*backend.Client)(nil)

func TestRGBBodiesAreDistinct(t *testing.T) {
	off := bodyJSON(backend.SetRGBPower(false))
	assert.NotContains(t, off, `"r"`)

	apply := bodyJSON(backend.SetRGBColor(1, 2, 3))
	assert.NotContains(t, apply, `"on"`)
}
