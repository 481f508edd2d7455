package control

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/muurk/homedash/internal/status"
)

// DefaultDraft is the colour the draft starts from.
var DefaultDraft = status.RGB{R: 255, G: 0, B: 0}

// Channel selects one component of an RGB colour.
type Channel int

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "r"
	case ChannelG:
		return "g"
	case ChannelB:
		return "b"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// ParseChannel accepts "r", "g", "b" or the full colour names.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "red":
		return ChannelR, nil
	case "g", "green":
		return ChannelG, nil
	case "b", "blue":
		return ChannelB, nil
	default:
		return 0, fmt.Errorf("unknown colour channel %q", s)
	}
}

// ColorDraft is the locally edited RGB colour. Editing a channel only
// changes the draft; nothing reaches the backend until Apply.
type ColorDraft struct {
	dispatcher *Dispatcher

	mu    sync.Mutex
	draft status.RGB
	dirty bool
}

// NewColorDraft creates a draft starting at DefaultDraft.
func NewColorDraft(d *Dispatcher) *ColorDraft {
	return &ColorDraft{dispatcher: d, draft: DefaultDraft}
}

// SetChannel assigns one channel from user text, leaving the others as
// they were. Invalid text sets the channel to 0.
func (c *ColorDraft) SetChannel(ch Channel, text string) {
	v := CoerceInt(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch ch {
	case ChannelR:
		c.draft.R = v
	case ChannelG:
		c.draft.G = v
	case ChannelB:
		c.draft.B = v
	default:
		return
	}
	c.dirty = true
}

// Draft returns the current draft colour.
func (c *ColorDraft) Draft() status.RGB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Dirty reports whether the draft changed since it was last applied.
func (c *ColorDraft) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Toggle switches the light on or off without sending the draft.
func (c *ColorDraft) Toggle(ctx context.Context, on bool) error {
	return c.dispatcher.SetRGBPower(ctx, on)
}

// Apply sends the draft colour.
func (c *ColorDraft) Apply(ctx context.Context) error {
	rgb := c.Draft()
	if err := c.dispatcher.SetRGBColor(ctx, rgb.R, rgb.G, rgb.B); err != nil {
		return err
	}

	c.mu.Lock()
	if c.draft == rgb {
		c.dirty = false
	}
	c.mu.Unlock()
	return nil
}
