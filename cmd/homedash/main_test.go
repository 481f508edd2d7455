package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/homedash/internal/simulator"
	"github.com/muurk/homedash/internal/status"
)

// execute runs the CLI against backendURL with an isolated config directory
func execute(t *testing.T, backendURL string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--backend", backendURL}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func newSimulator(t *testing.T) (*simulator.Controller, string) {
	t.Helper()
	ctrl := simulator.NewController(simulator.Options{})
	srv := httptest.NewServer(simulator.NewServer(ctrl, simulator.ServerOptions{}).Handler())
	t.Cleanup(srv.Close)
	return ctrl, srv.URL
}

func TestControlCommandsReachBackend(t *testing.T) {
	ctrl, url := newSimulator(t)

	out, err := execute(t, url, "alarm", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Alarm on")
	assert.True(t, ctrl.Snapshot().AlarmOn)

	_, err = execute(t, url, "rgb", "set", "10", "20", "30")
	require.NoError(t, err)
	assert.Equal(t, status.RGB{R: 10, G: 20, B: 30}, ctrl.Snapshot().BRGBColor)

	_, err = execute(t, url, "timer", "set", "90")
	require.NoError(t, err)
	assert.Equal(t, 90, ctrl.Snapshot().TimerSeconds)
}

func TestPinCommandSendsEveryKey(t *testing.T) {
	_, url := newSimulator(t)

	out, err := execute(t, url, "pin", "1234")
	require.NoError(t, err)
	assert.Contains(t, out, "PIN sent")
}

func TestPinCommandRejectsInvalidPin(t *testing.T) {
	_, url := newSimulator(t)

	_, err := execute(t, url, "pin", "12a")
	require.Error(t, err)

	var reported reportedError
	assert.False(t, errors.As(err, &reported))
}

func TestStatusCommandRendersReport(t *testing.T) {
	ctrl, url := newSimulator(t)
	ctrl.SetAlarm(true)

	out, err := execute(t, url, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "ALARM")
}

func TestFailedCommandIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, srv.URL, "disarm")
	require.Error(t, err)

	var reported reportedError
	assert.True(t, errors.As(err, &reported))
	assert.Contains(t, out, "System disarmed")
	assert.Contains(t, out, "500")
}
