package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/config"
	"github.com/muurk/homedash/internal/control"
	"github.com/muurk/homedash/internal/panels"
	"github.com/muurk/homedash/internal/status"
)

type recordingSender struct {
	mu     sync.Mutex
	cmds   []backend.Command
	failAt map[int]error
}

func (s *recordingSender) Send(ctx context.Context, cmd backend.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.cmds)
	s.cmds = append(s.cmds, cmd)
	return s.failAt[i]
}

func (s *recordingSender) Commands() []backend.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.Command(nil), s.cmds...)
}

type harness struct {
	model  Model
	sender *recordingSender
	store  *status.Store
}

func newHarness(t *testing.T, failAt map[int]error) *harness {
	t.Helper()

	sender := &recordingSender{failAt: failAt}
	store := status.NewStore()
	d := control.NewDispatcher(sender, nil, time.Second)

	m := New(Options{
		Store:      store,
		Dispatcher: d,
		Panels:     panels.NewBuilder(config.Default().Grafana),
		BackendURL: "http://controller.lan:5001",
		Now:        func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	return &harness{model: m, sender: sender, store: store}
}

// send delivers msg and runs any resulting command synchronously, feeding
// the outcome back the way the Bubble Tea runtime would.
func (h *harness) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	updated, cmd := h.model.Update(msg)
	h.model = updated.(Model)
	h.run(t, cmd)
}

func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch out := cmd().(type) {
	case actionDoneMsg, pinDoneMsg:
		updated, _ := h.model.Update(out)
		h.model = updated.(Model)
	}
}

func (h *harness) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		h.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyRune(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab("PI2")
	assert.True(t, ok)
	assert.Equal(t, TabPi2, tab)

	_, ok = ParseTab("kitchen")
	assert.False(t, ok)

	assert.Equal(t, "pi3", TabPi3.String())
}

func TestTabCycling(t *testing.T) {
	h := newHarness(t, nil)

	h.send(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabPi1, h.model.Tab)

	h.send(t, tea.KeyMsg{Type: tea.KeyShiftTab})
	h.send(t, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, TabPi3, h.model.Tab)
}

func TestPi1Actions(t *testing.T) {
	tests := []struct {
		key     string
		path    string
		action  string
		confirm bool
	}{
		{"a", backend.PathAlarmOn, "Alarm on", false},
		{"A", backend.PathAlarmOff, "Alarm off", false},
		{"m", backend.PathSystemArm, "Arm system", true},
		{"d", backend.PathSystemDisarm, "Disarm system", true},
		{"e", backend.PathScenarioPi1In, "Entry scenario", false},
		{"x", backend.PathScenarioPi1Exit, "Exit scenario", false},
		{"#", backend.PathDMSKey, "Key #", false},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			h := newHarness(t, nil)
			h.model.Tab = TabPi1

			h.send(t, keyRune(tt.key))
			if tt.confirm {
				h.send(t, keyRune("y"))
			}

			cmds := h.sender.Commands()
			require.Len(t, cmds, 1)
			assert.Equal(t, tt.path, cmds[0].Path)
			assert.Equal(t, tt.action, h.model.LastAction)
			assert.NoError(t, h.model.LastActionErr)
			assert.Zero(t, h.model.Pending)
		})
	}
}

func TestArmAndDisarmNeedConfirmation(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi1

	h.send(t, keyRune("d"))
	require.NotNil(t, h.model.Confirm)
	assert.Contains(t, h.model.View(), "Disarm the security system?")

	// Other actions wait until the dialog is answered
	h.send(t, keyRune("a"))
	assert.Empty(t, h.sender.Commands())

	h.send(t, keyRune("n"))
	assert.Nil(t, h.model.Confirm)
	assert.Empty(t, h.sender.Commands())

	h.send(t, keyRune("m"))
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	cmds := h.sender.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, backend.PathSystemArm, cmds[0].Path)
	assert.NotContains(t, h.model.View(), "Arm the security system?")
}

func TestKeypadSendsPressedKey(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi1

	h.send(t, keyRune("3"))

	cmds := h.sender.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, backend.KeyRequest{Key: "3"}, cmds[0].Body)
}

func TestTabScopedKeysIgnoredElsewhere(t *testing.T) {
	h := newHarness(t, nil)

	h.send(t, keyRune("a"))
	h.send(t, keyRune("+"))

	assert.Empty(t, h.sender.Commands())
}

func TestActionFailureIsShown(t *testing.T) {
	h := newHarness(t, map[int]error{0: backend.NewHTTPError("POST /alarm/on", 500)})
	h.model.Tab = TabPi1

	h.send(t, keyRune("a"))

	require.Error(t, h.model.LastActionErr)
	assert.Contains(t, h.model.View(), "✗ Alarm on")
}

func TestPinEntryFlow(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi1

	h.send(t, keyRune("p"))
	require.Equal(t, inputPIN, h.model.Editing)

	h.typeText(t, "2110")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, inputNone, h.model.Editing)
	assert.Equal(t, control.PinDone, h.model.PinState())

	cmds := h.sender.Commands()
	require.Len(t, cmds, 4)
	for i, want := range []string{"2", "1", "1", "0"} {
		assert.Equal(t, backend.KeyRequest{Key: want}, cmds[i].Body)
	}
}

func TestPinEntryRejectsInvalidInput(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi1

	h.send(t, keyRune("p"))
	h.typeText(t, "12a")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, inputPIN, h.model.Editing)
	assert.ErrorIs(t, h.model.LastActionErr, control.ErrInvalidPin)
	assert.Empty(t, h.sender.Commands())
}

func TestPinAbortKeepsInput(t *testing.T) {
	h := newHarness(t, map[int]error{1: errors.New("refused")})
	h.model.Tab = TabPi1

	h.send(t, keyRune("p"))
	h.typeText(t, "2110")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, control.PinAborted, h.model.PinState())
	assert.Len(t, h.sender.Commands(), 2)

	// Reopening the field offers the same PIN for a retry
	h.send(t, keyRune("p"))
	assert.Equal(t, "2110", h.model.Input.Value())
}

func TestTimerInputs(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi2

	h.send(t, keyRune("t"))
	h.typeText(t, "90")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	h.send(t, keyRune("n"))
	h.typeText(t, "0")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	h.send(t, keyRune("+"))

	cmds := h.sender.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, backend.TimerSetRequest{Seconds: 90}, cmds[0].Body)
	assert.Equal(t, backend.TimerConfigRequest{AddN: 1}, cmds[1].Body)
	assert.Equal(t, backend.PathTimerAdd, cmds[2].Path)
}

func TestEscapeCancelsInput(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi2

	h.send(t, keyRune("t"))
	h.typeText(t, "45")
	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, inputNone, h.model.Editing)
	assert.Empty(t, h.sender.Commands())
}

func TestColorDraftEditingIsLocal(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi3

	h.send(t, keyRune("g"))
	// The field is prefilled with the current channel value
	assert.Equal(t, "0", h.model.Input.Value())
	h.send(t, tea.KeyMsg{Type: tea.KeyBackspace})
	h.typeText(t, "128")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, status.RGB{R: 255, G: 128, B: 0}, h.model.Draft())
	assert.Empty(t, h.sender.Commands())
	assert.Contains(t, h.model.View(), "not applied")

	h.send(t, keyRune("c"))
	h.send(t, keyRune("f"))

	cmds := h.sender.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, backend.RGBColorRequest{R: 255, G: 128, B: 0}, cmds[0].Body)
	assert.Equal(t, backend.RGBPowerRequest{On: false}, cmds[1].Body)
}

func TestColorChannelKeysEditTheirChannel(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi3

	h.send(t, keyRune("b"))
	require.Equal(t, inputBlue, h.model.Editing)
	h.send(t, tea.KeyMsg{Type: tea.KeyBackspace})
	h.typeText(t, "40")
	h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	h.send(t, keyRune("r"))
	assert.Equal(t, "255", h.model.Input.Value())
	h.send(t, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, status.RGB{R: 255, G: 0, B: 40}, h.model.Draft())
}

func TestStoreUpdateRearmsSubscription(t *testing.T) {
	h := newHarness(t, nil)

	updated, cmd := h.model.Update(storeUpdatedMsg{})
	h.model = updated.(Model)
	require.NotNil(t, cmd)

	h.store.Fail(backend.NewHTTPError("GET /status", 500))
	assert.Equal(t, storeUpdatedMsg{}, cmd())
}

func TestViewShowsErrorBanner(t *testing.T) {
	h := newHarness(t, nil)

	h.store.Fail(backend.NewHTTPError("GET /status", 500))
	view := h.model.View()

	assert.Contains(t, view, AppName)
	assert.Contains(t, view, "Cannot load backend status")
}

func TestViewOverviewShowsNotificationsNewestFirst(t *testing.T) {
	h := newHarness(t, nil)

	body := `{"system_armed": true, "notifications": [
		{"time": "09:00:00", "message": "older"},
		{"time": "09:05:00", "message": "newer"}]}`
	snap, err := status.DecodeSnapshot([]byte(body), time.Date(2024, 5, 1, 11, 59, 50, 0, time.UTC))
	require.NoError(t, err)
	h.store.Replace(snap)

	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 60})
	view := h.model.View()

	assert.Contains(t, view, "armed")
	assert.Contains(t, view, "10 seconds ago")
	assert.Less(t, strings.Index(view, "newer"), strings.Index(view, "older"))
}

func TestViewPi1ListsPanelsAndCamera(t *testing.T) {
	h := newHarness(t, nil)
	h.model.Tab = TabPi1
	h.send(t, tea.WindowSizeMsg{Width: 200, Height: 60})

	view := h.model.View()
	assert.Contains(t, view, "DMS")
	assert.Contains(t, view, "http://controller.lan:8080/?action=stream")
}
