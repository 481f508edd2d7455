// Package tui implements the interactive terminal dashboard for homedash.
//
// The dashboard is a Bubble Tea program with four tabs:
//   - overview: system state, every sensor, and the event log newest-first
//   - pi1: alarm, arming, PIN keypad, entry/exit scenarios, door camera
//   - pi2: kitchen timer and its sensors
//   - pi3: RGB light with a local colour draft, climate sensors
//
// Each Raspberry Pi tab also lists the Grafana panel URLs of that Pi.
//
// # State
//
// The model never holds backend state of its own. It re-renders from
// status.Store whenever the store signals an update, and sends user actions
// through control.Dispatcher, control.PinEntry and control.ColorDraft.
// Commands run as tea.Cmd goroutines and report back with a message; the
// poller picks up their effect on the next refresh.
//
// All screens use RenderApplicationContainer for a consistent header,
// content area and context-sensitive help footer.
package tui
