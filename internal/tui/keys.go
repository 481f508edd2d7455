package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds every binding of the dashboard. Which ones are active
// depends on the tab and on whether an input has focus.
type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding

	Submit key.Binding
	Cancel key.Binding

	Confirm key.Binding
	Deny    key.Binding

	// pi1
	AlarmOn  key.Binding
	AlarmOff key.Binding
	Arm      key.Binding
	Disarm   key.Binding
	PIN      key.Binding
	Keypad   key.Binding
	Entry    key.Binding
	Exit     key.Binding

	// pi2
	SetTimer key.Binding
	SetAddN  key.Binding
	TimerAdd key.Binding

	// pi3
	LightOn  key.Binding
	LightOff key.Binding
	Red      key.Binding
	Green    key.Binding
	Blue     key.Binding
	Apply    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Confirm: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Deny:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),

		AlarmOn:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "alarm on")),
		AlarmOff: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "alarm off")),
		Arm:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "arm")),
		Disarm:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "disarm")),
		PIN:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "enter PIN")),
		Keypad:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "*", "#"), key.WithHelp("1-4 * #", "keypad")),
		Entry:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "entry scenario")),
		Exit:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "exit scenario")),

		SetTimer: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set timer")),
		SetAddN:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "set +N")),
		TimerAdd: key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "timer button")),

		LightOn:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "light on")),
		LightOff: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "light off")),
		Red:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "red")),
		Green:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "green")),
		Blue:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "blue")),
		Apply:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "apply colour")),
	}
}

// bindingSet adapts a slice of bindings to help.KeyMap
type bindingSet struct {
	short []key.Binding
	full  [][]key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (b bindingSet) ShortHelp() []key.Binding {
	return b.short
}

// FullHelp returns keybindings for the expanded help view
func (b bindingSet) FullHelp() [][]key.Binding {
	return b.full
}

// helpFor returns the bindings relevant to the current screen state
func (k keyMap) helpFor(tab Tab, editing, confirming bool) bindingSet {
	if confirming {
		return bindingSet{
			short: []key.Binding{k.Confirm, k.Deny},
			full:  [][]key.Binding{{k.Confirm, k.Deny}},
		}
	}
	if editing {
		return bindingSet{
			short: []key.Binding{k.Submit, k.Cancel},
			full:  [][]key.Binding{{k.Submit, k.Cancel}},
		}
	}

	global := []key.Binding{k.NextTab, k.PrevTab, k.Refresh, k.Help, k.Quit}

	var local []key.Binding
	switch tab {
	case TabPi1:
		local = []key.Binding{k.AlarmOn, k.AlarmOff, k.Arm, k.Disarm, k.PIN, k.Keypad, k.Entry, k.Exit}
	case TabPi2:
		local = []key.Binding{k.SetTimer, k.SetAddN, k.TimerAdd}
	case TabPi3:
		local = []key.Binding{k.LightOn, k.LightOff, k.Red, k.Green, k.Blue, k.Apply}
	}

	short := append(append([]key.Binding{}, local...), k.NextTab, k.Help, k.Quit)
	full := [][]key.Binding{global}
	if len(local) > 0 {
		full = append([][]key.Binding{local}, full...)
	}
	return bindingSet{short: short, full: full}
}
