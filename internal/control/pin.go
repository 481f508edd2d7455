package control

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/logging"
)

// MaxPinLength is the longest PIN the keypad accepts.
const MaxPinLength = 8

var (
	// ErrInvalidPin is returned for empty, over-long or non-keypad input
	ErrInvalidPin = errors.New("PIN must be 1-8 characters of 0-9, * or #")

	// ErrPinBusy is returned when a submission is already being sent
	ErrPinBusy = errors.New("PIN submission already in progress")
)

// PinState is the progress of a PIN submission.
type PinState int

const (
	PinIdle PinState = iota
	PinSending
	PinDone
	PinAborted
)

func (s PinState) String() string {
	switch s {
	case PinIdle:
		return "idle"
	case PinSending:
		return "sending"
	case PinDone:
		return "done"
	case PinAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ValidatePin trims text and checks it against the keypad alphabet.
func ValidatePin(text string) (string, error) {
	pin := strings.TrimSpace(text)
	if pin == "" || len(pin) > MaxPinLength {
		return "", ErrInvalidPin
	}
	for _, c := range pin {
		if !isKeypadChar(c) {
			return "", ErrInvalidPin
		}
	}
	return pin, nil
}

func isKeypadChar(c rune) bool {
	return (c >= '0' && c <= '9') || c == '*' || c == '#'
}

// PinEntry sends a PIN to the DMS keypad one key per request.
//
// Keys go out strictly in order and never overlap. The first rejected key
// aborts the submission and keeps the input so the user can retry. A
// complete submission clears the input and requests one refresh.
type PinEntry struct {
	dispatcher *Dispatcher

	mu    sync.Mutex
	input string
	state PinState
	index int
	sent  int
	err   error
}

// NewPinEntry creates an idle PIN entry bound to d.
func NewPinEntry(d *Dispatcher) *PinEntry {
	return &PinEntry{dispatcher: d}
}

// SetInput replaces the text in the PIN field.
func (p *PinEntry) SetInput(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = text
}

// Input returns the text in the PIN field.
func (p *PinEntry) Input() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

// State returns the state of the latest submission.
func (p *PinEntry) State() PinState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Index returns the position of the key being sent, or the key that
// failed after an abort.
func (p *PinEntry) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Sent returns how many keys the backend accepted in the latest submission.
func (p *PinEntry) Sent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

// Err returns the error that aborted the latest submission.
func (p *PinEntry) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Submit validates the current input and sends it. Invalid input is
// rejected before any request is made.
func (p *PinEntry) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.state == PinSending {
		p.mu.Unlock()
		return ErrPinBusy
	}
	pin, err := ValidatePin(p.input)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.state = PinSending
	p.index = 0
	p.sent = 0
	p.err = nil
	p.mu.Unlock()

	for i, c := range pin {
		p.mu.Lock()
		p.index = i
		p.mu.Unlock()

		err := p.dispatcher.send(ctx, backend.DMSKey(string(c)))
		logging.LogPinKey(i, len(pin), err)

		if err != nil {
			p.mu.Lock()
			p.state = PinAborted
			p.err = err
			p.mu.Unlock()
			return err
		}

		p.mu.Lock()
		p.sent++
		p.mu.Unlock()
	}

	p.mu.Lock()
	p.state = PinDone
	p.input = ""
	p.mu.Unlock()

	p.dispatcher.Refresh()
	return nil
}
