package simulator

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/muurk/homedash/internal/status"
)

const (
	// DL1OnDuration is how long motion at the door keeps the light on
	DL1OnDuration = 10 * time.Second

	// DefaultArmDelay is the exit delay between arming and armed
	DefaultArmDelay = 10 * time.Second

	// DefaultPIN disarms the simulated system
	DefaultPIN = "1234"

	// DefaultAddN is the timer increment per BTN press
	DefaultAddN = 10

	maxNotifications = 20
	maxKeyBuffer     = 8

	// trendEpsilon is the minimum step between DUS1 readings that counts
	// as movement toward or away from the door
	trendEpsilon = 2.0
)

// Options configure a Controller.
type Options struct {
	ArmDelay time.Duration
	PIN      string
	Now      func() time.Time
}

// Controller is an in-memory stand-in for the home-automation controller.
// Time-based effects (exit delay, timer countdown, door light) are evaluated
// lazily against the clock whenever state is read or changed.
type Controller struct {
	armDelay time.Duration
	pin      string
	now      func() time.Time

	mu sync.Mutex

	alarmOn       bool
	armed         bool
	armingPending bool
	armAt         time.Time
	keys          string

	peopleCount int
	dl1Until    time.Time
	dus1History []float64

	timerRunning bool
	timerEnd     time.Time
	timerLeft    int
	timerBlink   bool
	addN         int

	brgbOn    bool
	brgbColor status.RGB

	notifications []status.Notification
}

// NewController creates a controller with everything off.
func NewController(opts Options) *Controller {
	if opts.ArmDelay <= 0 {
		opts.ArmDelay = DefaultArmDelay
	}
	if opts.PIN == "" {
		opts.PIN = DefaultPIN
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		armDelay:    opts.ArmDelay,
		pin:         opts.PIN,
		now:         opts.Now,
		addN:        DefaultAddN,
		brgbColor:   status.RGB{R: 255},
		dus1History: []float64{150},
	}
}

// advance applies elapsed-time effects. Callers hold c.mu.
func (c *Controller) advance(now time.Time) {
	if c.armingPending && !now.Before(c.armAt) {
		c.armingPending = false
		c.armed = true
		c.notify(now, "System armed")
	}

	if c.timerRunning {
		left := c.timerEnd.Sub(now)
		if left <= 0 {
			c.timerRunning = false
			c.timerLeft = 0
			c.timerBlink = true
			c.notify(now, "Kitchen timer finished")
		} else {
			c.timerLeft = int(math.Ceil(left.Seconds()))
		}
	}
}

func (c *Controller) notify(now time.Time, msg string) {
	c.notifications = append(c.notifications, status.Notification{
		Time:    now.Format("15:04:05"),
		Message: msg,
	})
	if n := len(c.notifications); n > maxNotifications {
		c.notifications = c.notifications[n-maxNotifications:]
	}
}

// SetAlarm switches the alarm output.
func (c *Controller) SetAlarm(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)
	c.alarmOn = on
	if on {
		c.notify(now, "Alarm ON")
	} else {
		c.notify(now, "Alarm OFF")
	}
}

// Arm starts the exit delay. Arming an armed or arming system is a no-op.
func (c *Controller) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)
	c.arm(now)
}

func (c *Controller) arm(now time.Time) {
	if c.armed || c.armingPending {
		return
	}
	c.armingPending = true
	c.armAt = now.Add(c.armDelay)
	c.notify(now, "Arming system")
}

// Disarm clears the armed state and silences the alarm.
func (c *Controller) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)
	c.disarm(now)
}

func (c *Controller) disarm(now time.Time) {
	c.armed = false
	c.armingPending = false
	c.alarmOn = false
	c.keys = ""
	c.notify(now, "System disarmed")
}

// PressKey handles one DMS keypad key. Entering the PIN disarms an armed
// or arming system and arms an idle one. '*' clears the entry and '#'
// rejects a partial one.
func (c *Controller) PressKey(key string) bool {
	if len(key) != 1 || !strings.ContainsAny(key, "0123456789*#") {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)

	switch key {
	case "*":
		c.keys = ""
		return true
	case "#":
		if c.keys != "" {
			c.notify(now, "Wrong PIN")
		}
		c.keys = ""
		return true
	}

	c.keys += key
	if len(c.keys) > maxKeyBuffer {
		c.keys = c.keys[len(c.keys)-maxKeyBuffer:]
	}

	if strings.HasSuffix(c.keys, c.pin) {
		c.keys = ""
		if c.armed || c.armingPending || c.alarmOn {
			c.disarm(now)
		} else {
			c.arm(now)
		}
	}
	return true
}

// SetTimer starts the kitchen timer at seconds; 0 stops it.
func (c *Controller) SetTimer(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)

	c.timerBlink = false
	if seconds <= 0 {
		c.timerRunning = false
		c.timerLeft = 0
		return
	}
	c.timerRunning = true
	c.timerEnd = now.Add(time.Duration(seconds) * time.Second)
	c.timerLeft = seconds
}

// SetAddN sets the seconds added per BTN press.
func (c *Controller) SetAddN(n int) bool {
	if n <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addN = n
	return true
}

// PressTimerButton is the kitchen BTN: it stops a blinking display, or
// adds N seconds to the timer.
func (c *Controller) PressTimerButton() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)

	if c.timerBlink {
		c.timerBlink = false
		return
	}

	add := time.Duration(c.addN) * time.Second
	if c.timerRunning {
		c.timerEnd = c.timerEnd.Add(add)
	} else {
		c.timerRunning = true
		c.timerEnd = now.Add(add)
	}
	c.timerLeft = int(math.Ceil(c.timerEnd.Sub(now).Seconds()))
}

// SetRGBPower switches the bedroom RGB light.
func (c *Controller) SetRGBPower(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brgbOn = on
}

// SetRGBColor sets the light colour, clamped to [0,255] per channel.
func (c *Controller) SetRGBColor(r, g, b int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brgbColor = status.RGB{R: clamp(r), G: clamp(g), B: clamp(b)}
}

func clamp(v int) int {
	return max(0, min(255, v))
}

// ScenarioEntry replays a person approaching the front door: DUS1 readings
// fall, then DPIR1 fires.
func (c *Controller) ScenarioEntry() {
	c.replayDoor([]float64{120, 90, 60})
}

// ScenarioExit replays a person leaving: DUS1 readings rise, then DPIR1
// fires.
func (c *Controller) ScenarioExit() {
	c.replayDoor([]float64{60, 90, 120})
}

func (c *Controller) replayDoor(readings []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)

	c.dus1History = append(c.dus1History, readings...)
	if n := len(c.dus1History); n > 5 {
		c.dus1History = c.dus1History[n-5:]
	}
	c.doorMotion(now)
}

// doorMotion turns DL1 on and infers the walking direction from the last
// three DUS1 readings.
func (c *Controller) doorMotion(now time.Time) {
	c.dl1Until = now.Add(DL1OnDuration)

	h := c.dus1History
	if len(h) < 3 {
		return
	}
	a, b, d := h[len(h)-3], h[len(h)-2], h[len(h)-1]

	switch {
	case a-b > trendEpsilon && b-d > trendEpsilon:
		c.peopleCount++
		c.notify(now, "Person entered")
	case b-a > trendEpsilon && d-b > trendEpsilon:
		c.peopleCount = max(0, c.peopleCount-1)
		c.notify(now, "Person left")
	}
}

// State is the /status document.
type State struct {
	AlarmOn       bool                  `json:"alarm_on"`
	SystemArmed   bool                  `json:"system_armed"`
	ArmingPending bool                  `json:"arming_pending"`
	PeopleCount   int                   `json:"people_count"`
	DL1On         bool                  `json:"dl1_on"`
	TimerSeconds  int                   `json:"timer_seconds"`
	TimerBlink    bool                  `json:"timer_blink"`
	BRGBOn        bool                  `json:"brgb_on"`
	BRGBColor     status.RGB            `json:"brgb_color"`
	Sensors       map[string]any        `json:"sensors"`
	Notifications []status.Notification `json:"notifications"`
}

type climate struct {
	Temp float64 `json:"temp"`
	Hum  float64 `json:"hum"`
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.advance(now)

	dl1On := now.Before(c.dl1Until)
	motion := 0
	if dl1On {
		motion = 1
	}

	notes := make([]status.Notification, len(c.notifications))
	copy(notes, c.notifications)

	return State{
		AlarmOn:       c.alarmOn,
		SystemArmed:   c.armed,
		ArmingPending: c.armingPending,
		PeopleCount:   c.peopleCount,
		DL1On:         dl1On,
		TimerSeconds:  c.timerLeft,
		TimerBlink:    c.timerBlink,
		BRGBOn:        c.brgbOn,
		BRGBColor:     c.brgbColor,
		Sensors: map[string]any{
			"DS1":   0,
			"DS2":   0,
			"DPIR1": motion,
			"DPIR2": 0,
			"DPIR3": 0,
			"DUS1":  c.dus1History[len(c.dus1History)-1],
			"DUS2":  150.0,
			"GSG":   map[string]float64{"x": 0, "y": 0, "z": 9.81},
			"DHT1":  climate{Temp: 21.5, Hum: 40},
			"DHT2":  climate{Temp: 22.0, Hum: 38},
			"DHT3":  climate{Temp: 24.5, Hum: 45},
		},
		Notifications: notes,
	}
}
