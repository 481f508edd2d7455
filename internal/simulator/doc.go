// Package simulator is an in-memory home-automation controller that speaks
// the same HTTP/JSON API as the real backend.
//
// It exists so the dashboard can be developed and demonstrated without the
// Raspberry Pi fleet. The simulated house reproduces the controller rules:
//
//   - motion at the front door turns the door light (DL1) on for 10 s
//   - three falling DUS1 distance readings followed by motion count a person
//     in, three rising readings count one out
//   - arming waits for an exit delay before the system reports armed
//   - entering the PIN on the DMS keypad disarms (or arms an idle system)
//   - the kitchen timer counts down and blinks at zero until BTN is pressed
//
// Run it with `homedash-sim serve`, optionally advertising itself over mDNS
// so `homedash scan` can find it.
package simulator
