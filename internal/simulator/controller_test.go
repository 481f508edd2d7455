package simulator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/homedash/internal/status"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestController() (*Controller, *fakeClock) {
	clock := newFakeClock()
	return NewController(Options{ArmDelay: 5 * time.Second, PIN: "2110", Now: clock.Now}), clock
}

func lastMessage(s State) string {
	if len(s.Notifications) == 0 {
		return ""
	}
	return s.Notifications[len(s.Notifications)-1].Message
}

func TestController_ArmPendingThenArmed(t *testing.T) {
	c, clock := newTestController()

	c.Arm()
	s := c.Snapshot()
	assert.True(t, s.ArmingPending)
	assert.False(t, s.SystemArmed)

	clock.Advance(4 * time.Second)
	assert.True(t, c.Snapshot().ArmingPending)

	clock.Advance(time.Second)
	s = c.Snapshot()
	assert.False(t, s.ArmingPending)
	assert.True(t, s.SystemArmed)
	assert.Equal(t, "System armed", lastMessage(s))
}

func TestController_PinDisarms(t *testing.T) {
	c, clock := newTestController()
	c.Arm()
	clock.Advance(10 * time.Second)
	c.SetAlarm(true)

	for _, k := range []string{"2", "1", "1", "0"} {
		require.True(t, c.PressKey(k))
	}

	s := c.Snapshot()
	assert.False(t, s.SystemArmed)
	assert.False(t, s.AlarmOn)
	assert.Equal(t, "System disarmed", lastMessage(s))
}

func TestController_PinArmsIdleSystem(t *testing.T) {
	c, _ := newTestController()

	for _, k := range "2110" {
		c.PressKey(string(k))
	}
	assert.True(t, c.Snapshot().ArmingPending)
}

func TestController_WrongPin(t *testing.T) {
	c, clock := newTestController()
	c.Arm()
	clock.Advance(10 * time.Second)

	for _, k := range "99#" {
		c.PressKey(string(k))
	}

	s := c.Snapshot()
	assert.True(t, s.SystemArmed)
	assert.Equal(t, "Wrong PIN", lastMessage(s))

	assert.False(t, c.PressKey("A"))
	assert.False(t, c.PressKey("12"))
}

func TestController_StarClearsEntry(t *testing.T) {
	c, clock := newTestController()
	c.Arm()
	clock.Advance(10 * time.Second)

	for _, k := range "21*10" {
		c.PressKey(string(k))
	}
	assert.True(t, c.Snapshot().SystemArmed)
}

func TestController_TimerCountsDownAndBlinks(t *testing.T) {
	c, clock := newTestController()

	c.SetTimer(3)
	assert.Equal(t, 3, c.Snapshot().TimerSeconds)

	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 2, c.Snapshot().TimerSeconds)

	clock.Advance(1500 * time.Millisecond)
	s := c.Snapshot()
	assert.Equal(t, 0, s.TimerSeconds)
	assert.True(t, s.TimerBlink)
	assert.Equal(t, "00:00", status.FormatSeconds(s.TimerSeconds))

	c.PressTimerButton()
	assert.False(t, c.Snapshot().TimerBlink, "BTN stops the blink")
	assert.Equal(t, 0, c.Snapshot().TimerSeconds)
}

func TestController_TimerButtonAddsN(t *testing.T) {
	c, clock := newTestController()
	require.True(t, c.SetAddN(30))
	assert.False(t, c.SetAddN(0))

	c.PressTimerButton()
	assert.Equal(t, 30, c.Snapshot().TimerSeconds)

	clock.Advance(10 * time.Second)
	c.PressTimerButton()
	assert.Equal(t, 50, c.Snapshot().TimerSeconds)
}

func TestController_RGB(t *testing.T) {
	c, _ := newTestController()

	c.SetRGBPower(true)
	c.SetRGBColor(300, -5, 10)

	s := c.Snapshot()
	assert.True(t, s.BRGBOn)
	assert.Equal(t, status.RGB{R: 255, G: 0, B: 10}, s.BRGBColor)
}

func TestController_Scenarios(t *testing.T) {
	c, clock := newTestController()

	c.ScenarioEntry()
	s := c.Snapshot()
	assert.Equal(t, 1, s.PeopleCount)
	assert.True(t, s.DL1On)
	assert.Equal(t, 1, s.Sensors["DPIR1"])

	clock.Advance(DL1OnDuration)
	assert.False(t, c.Snapshot().DL1On, "door light goes off after 10s")

	c.ScenarioExit()
	c.ScenarioExit()
	assert.Equal(t, 0, c.Snapshot().PeopleCount, "count never goes negative")
}

func TestController_NotificationsBounded(t *testing.T) {
	c, _ := newTestController()

	for i := 0; i < maxNotifications+5; i++ {
		c.SetAlarm(i%2 == 0)
	}
	assert.Len(t, c.Snapshot().Notifications, maxNotifications)
}
