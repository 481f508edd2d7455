package simulator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/control"
	"github.com/muurk/homedash/internal/status"
)

func newTestServer(t *testing.T) (*Controller, *fakeClock, *backend.Client) {
	t.Helper()
	ctrl, clock := newTestController()
	srv := httptest.NewServer(NewServer(ctrl, ServerOptions{}).Handler())
	t.Cleanup(srv.Close)
	return ctrl, clock, backend.NewClient(srv.URL, time.Second)
}

func TestServer_StatusDecodes(t *testing.T) {
	_, _, client := newTestServer(t)

	body, err := client.FetchStatus(context.Background())
	require.NoError(t, err)

	snap, err := status.DecodeSnapshot(body, time.Now())
	require.NoError(t, err)

	assert.False(t, snap.SystemArmed)
	color, ok := snap.BRGBColor()
	assert.True(t, ok)
	assert.Equal(t, status.RGB{R: 255}, color)

	dht, ok := snap.Sensor("DHT3")
	require.True(t, ok)
	assert.Equal(t, "24.5", dht.TempString())
}

func TestServer_Commands(t *testing.T) {
	ctrl, clock, client := newTestServer(t)
	d := control.NewDispatcher(client, nil, time.Second)
	ctx := context.Background()

	require.NoError(t, d.ArmSystem(ctx))
	clock.Advance(10 * time.Second)
	assert.True(t, ctrl.Snapshot().SystemArmed)

	pin := control.NewPinEntry(d)
	pin.SetInput("2110")
	require.NoError(t, pin.Submit(ctx))
	assert.False(t, ctrl.Snapshot().SystemArmed)

	require.NoError(t, d.SetTimer(ctx, "90"))
	assert.Equal(t, 90, ctrl.Snapshot().TimerSeconds)

	require.NoError(t, d.SetTimerAddN(ctx, "5"))
	require.NoError(t, d.TimerAdd(ctx))
	assert.Equal(t, 95, ctrl.Snapshot().TimerSeconds)

	draft := control.NewColorDraft(d)
	draft.SetChannel(control.ChannelB, "200")
	require.NoError(t, draft.Toggle(ctx, true))
	require.NoError(t, draft.Apply(ctx))
	s := ctrl.Snapshot()
	assert.True(t, s.BRGBOn)
	assert.Equal(t, status.RGB{R: 255, B: 200}, s.BRGBColor)

	require.NoError(t, d.ScenarioPi1Entry(ctx))
	assert.Equal(t, 1, ctrl.Snapshot().PeopleCount)

	require.NoError(t, d.AlarmOn(ctx))
	assert.True(t, ctrl.Snapshot().AlarmOn)
}

func TestServer_RejectsBadBodies(t *testing.T) {
	_, _, client := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  backend.Command
	}{
		{"bad key", backend.DMSKey("A")},
		{"zero add_n", backend.SetTimerAddN(0)},
		{"empty rgb", backend.Command{Action: "rgb", Path: backend.PathRGB}},
		{"mixed rgb", backend.Command{Action: "rgb", Path: backend.PathRGB, Body: map[string]any{"on": true, "r": 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Send(ctx, tt.cmd)
			require.Error(t, err)

			var be *backend.Error
			require.ErrorAs(t, err, &be)
			assert.Equal(t, http.StatusBadRequest, be.StatusCode)
		})
	}
}

func TestServer_Latency(t *testing.T) {
	ctrl, _ := newTestController()
	srv := httptest.NewServer(NewServer(ctrl, ServerOptions{Latency: 200 * time.Millisecond}).Handler())
	defer srv.Close()

	client := backend.NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.FetchStatus(context.Background())
	assert.Error(t, err)
}

func TestServer_UnknownRoute(t *testing.T) {
	ctrl, _ := newTestController()
	h := NewServer(ctrl, ServerOptions{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/nope", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
