// Package control turns dashboard actions into backend commands.
//
// A Dispatcher sends exactly one request per action and, when the backend
// accepts it, asks the status poller for one immediate refresh so the
// dashboard reflects the change without waiting for the next tick. Failed
// commands are never retried; they are logged, returned and kept as
// LastCommandError for display.
//
// PinEntry submits a keypad PIN one character at a time, strictly in order,
// and stops at the first rejected key. ColorDraft holds the locally edited
// RGB colour until it is applied.
package control
