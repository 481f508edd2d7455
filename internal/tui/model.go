package tui

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/homedash/internal/control"
	"github.com/muurk/homedash/internal/panels"
	"github.com/muurk/homedash/internal/status"
)

// Tab is one page of the dashboard.
type Tab int

const (
	TabOverview Tab = iota
	TabPi1
	TabPi2
	TabPi3
)

var tabNames = []string{"overview", "pi1", "pi2", "pi3"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "unknown"
}

// ParseTab maps a tab name to a Tab.
func ParseTab(name string) (Tab, bool) {
	for i, n := range tabNames {
		if strings.EqualFold(n, name) {
			return Tab(i), true
		}
	}
	return TabOverview, false
}

// inputField is the text input that currently has focus
type inputField int

const (
	inputNone inputField = iota
	inputPIN
	inputTimer
	inputAddN
	inputRed
	inputGreen
	inputBlue
)

// channelInputs maps each colour channel to its input field
var channelInputs = map[control.Channel]inputField{
	control.ChannelR: inputRed,
	control.ChannelG: inputGreen,
	control.ChannelB: inputBlue,
}

func (f inputField) label() string {
	switch f {
	case inputPIN:
		return "PIN"
	case inputTimer:
		return "Timer seconds"
	case inputAddN:
		return "Button adds (s)"
	case inputRed:
		return "Red (0-255)"
	case inputGreen:
		return "Green (0-255)"
	case inputBlue:
		return "Blue (0-255)"
	default:
		return ""
	}
}

// Messages for async operations
type (
	// storeUpdatedMsg signals a Replace or Fail on the status store
	storeUpdatedMsg struct{}

	// clockMsg re-renders relative times
	clockMsg time.Time

	// actionDoneMsg reports the outcome of one dispatched command
	actionDoneMsg struct {
		label string
		err   error
	}

	// pinDoneMsg reports the outcome of a PIN submission
	pinDoneMsg struct {
		err error
	}
)

// confirmation is a command waiting for a yes/no answer
type confirmation struct {
	label  string
	prompt string
	run    func(context.Context) error
}

// Options wires the dashboard to the core.
type Options struct {
	Context    context.Context
	Store      *status.Store
	Dispatcher *control.Dispatcher
	Panels     *panels.Builder
	BackendURL string
	StartTab   Tab

	// Now defaults to time.Now
	Now func() time.Time
}

// Model is the dashboard screen. It only reads the store and invokes
// named commands; all backend state comes from the latest snapshot.
type Model struct {
	ctx        context.Context
	store      *status.Store
	dispatcher *control.Dispatcher
	pin        *control.PinEntry
	color      *control.ColorDraft
	panels     *panels.Builder
	backendURL string
	now        func() time.Time

	Tab     Tab
	Width   int
	Height  int
	Editing inputField
	Input   textinput.Model
	Confirm *confirmation
	Spinner spinner.Model

	// Commands sent and not yet answered
	Pending int

	LastAction    string
	LastActionErr error

	Help help.Model
	Keys keyMap
}

// New creates the dashboard model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return Model{
		ctx:        opts.Context,
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		pin:        control.NewPinEntry(opts.Dispatcher),
		color:      control.NewColorDraft(opts.Dispatcher),
		panels:     opts.Panels,
		backendURL: opts.BackendURL,
		now:        opts.Now,
		Tab:        opts.StartTab,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Input:      textinput.New(),
		Spinner:    s,
		Help:       help.New(),
		Keys:       newKeyMap(),
	}
}

// Init starts listening to the store and the clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.store.Updates()), clockTick(), m.Spinner.Tick)
}

func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return storeUpdatedMsg{}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// runAction sends one command in the background. The dispatcher bounds
// its duration and requests a refresh on success.
func (m Model) runAction(label string, fn func(context.Context) error) (Model, tea.Cmd) {
	m.Pending++
	ctx := m.ctx
	return m, func() tea.Msg {
		return actionDoneMsg{label: label, err: fn(ctx)}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width, MinTerminalWidth)
		m.Height = msg.Height
		m.Help.Width = m.Width - 4
		return m, nil

	case storeUpdatedMsg:
		return m, waitForUpdate(m.store.Updates())

	case clockMsg:
		return m, clockTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.Pending = max(m.Pending-1, 0)
		m.LastAction = msg.label
		m.LastActionErr = msg.err
		return m, nil

	case pinDoneMsg:
		m.Pending = max(m.Pending-1, 0)
		m.LastAction = "PIN"
		m.LastActionErr = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Confirm != nil {
			return m.updateConfirm(msg)
		}
		if m.Editing != inputNone {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.Keys
	d := m.dispatcher

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	case key.Matches(msg, k.NextTab):
		m.Tab = (m.Tab + 1) % Tab(len(tabNames))
		return m, nil
	case key.Matches(msg, k.PrevTab):
		m.Tab = (m.Tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, nil
	case key.Matches(msg, k.Refresh):
		d.Refresh()
		return m, nil
	}

	switch m.Tab {
	case TabPi1:
		switch {
		case key.Matches(msg, k.AlarmOn):
			return m.runAction("Alarm on", d.AlarmOn)
		case key.Matches(msg, k.AlarmOff):
			return m.runAction("Alarm off", d.AlarmOff)
		case key.Matches(msg, k.Arm):
			m.Confirm = &confirmation{label: "Arm system", prompt: "Arm the security system?", run: d.ArmSystem}
			return m, nil
		case key.Matches(msg, k.Disarm):
			m.Confirm = &confirmation{label: "Disarm system", prompt: "Disarm the security system?", run: d.DisarmSystem}
			return m, nil
		case key.Matches(msg, k.Keypad):
			pressed := msg.String()
			return m.runAction("Key "+pressed, func(ctx context.Context) error {
				return d.SendKey(ctx, pressed)
			})
		case key.Matches(msg, k.Entry):
			return m.runAction("Entry scenario", d.ScenarioPi1Entry)
		case key.Matches(msg, k.Exit):
			return m.runAction("Exit scenario", d.ScenarioPi1Exit)
		case key.Matches(msg, k.PIN):
			return m.focus(inputPIN, m.pin.Input())
		}

	case TabPi2:
		switch {
		case key.Matches(msg, k.SetTimer):
			return m.focus(inputTimer, "")
		case key.Matches(msg, k.SetAddN):
			return m.focus(inputAddN, "")
		case key.Matches(msg, k.TimerAdd):
			return m.runAction("Timer button", d.TimerAdd)
		}

	case TabPi3:
		draft := m.color.Draft()
		switch {
		case key.Matches(msg, k.LightOn):
			return m.runAction("Light on", func(ctx context.Context) error {
				return m.color.Toggle(ctx, true)
			})
		case key.Matches(msg, k.LightOff):
			return m.runAction("Light off", func(ctx context.Context) error {
				return m.color.Toggle(ctx, false)
			})
		case key.Matches(msg, k.Red, k.Green, k.Blue):
			ch, err := control.ParseChannel(msg.String())
			if err != nil {
				return m, nil
			}
			values := [...]int{control.ChannelR: draft.R, control.ChannelG: draft.G, control.ChannelB: draft.B}
			return m.focus(channelInputs[ch], strconv.Itoa(values[ch]))
		case key.Matches(msg, k.Apply):
			return m.runAction("Apply colour", m.color.Apply)
		}
	}

	return m, nil
}

// updateConfirm answers the pending confirmation. Other keys are ignored
// until it is answered.
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.Confirm
	switch {
	case key.Matches(msg, m.Keys.Confirm):
		m.Confirm = nil
		return m.runAction(c.label, c.run)
	case key.Matches(msg, m.Keys.Deny):
		m.Confirm = nil
	}
	return m, nil
}

// focus opens the text input for field, prefilled with value
func (m Model) focus(field inputField, value string) (tea.Model, tea.Cmd) {
	in := textinput.New()
	in.Prompt = field.label() + ": "
	in.PromptStyle = FocusedInputStyle
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(value)
	in.CursorEnd()

	switch field {
	case inputPIN:
		in.CharLimit = control.MaxPinLength
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	case inputRed, inputGreen, inputBlue:
		in.CharLimit = 3
	default:
		in.CharLimit = 6
	}

	cmd := in.Focus()
	m.Editing = field
	m.Input = in
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		if m.Editing == inputPIN {
			m.pin.SetInput(m.Input.Value())
		}
		m.Editing = inputNone
		m.Input.Blur()
		return m, nil

	case key.Matches(msg, m.Keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// submit acts on the focused input
func (m Model) submit() (tea.Model, tea.Cmd) {
	field, value := m.Editing, m.Input.Value()
	d := m.dispatcher

	switch field {
	case inputPIN:
		m.pin.SetInput(value)
		if _, err := control.ValidatePin(value); err != nil {
			m.LastAction = "PIN"
			m.LastActionErr = err
			return m, nil
		}
		m.Editing = inputNone
		m.Input.Blur()
		m.Pending++
		pin, ctx := m.pin, m.ctx
		return m, func() tea.Msg {
			return pinDoneMsg{err: pin.Submit(ctx)}
		}

	case inputTimer:
		m.Editing = inputNone
		m.Input.Blur()
		return m.runAction("Set timer", func(ctx context.Context) error {
			return d.SetTimer(ctx, value)
		})

	case inputAddN:
		m.Editing = inputNone
		m.Input.Blur()
		return m.runAction("Set button increment", func(ctx context.Context) error {
			return d.SetTimerAddN(ctx, value)
		})

	case inputRed, inputGreen, inputBlue:
		for ch, f := range channelInputs {
			if f == field {
				m.color.SetChannel(ch, value)
			}
		}
		m.Editing = inputNone
		m.Input.Blur()
		return m, nil
	}

	return m, nil
}

// Draft returns the colour being edited.
func (m Model) Draft() status.RGB {
	return m.color.Draft()
}

// PinState returns the state of the latest PIN submission.
func (m Model) PinState() control.PinState {
	return m.pin.State()
}

// cameraHost is the backend host, where the door camera streams from
func (m Model) cameraHost() string {
	u, err := url.Parse(m.backendURL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}
