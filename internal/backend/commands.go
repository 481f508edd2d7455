package backend

// Endpoint paths exposed by the controller backend.
const (
	PathStatus          = "/status"
	PathAlarmOn         = "/alarm/on"
	PathAlarmOff        = "/alarm/off"
	PathSystemArm       = "/system/arm"
	PathSystemDisarm    = "/system/disarm"
	PathDMSKey          = "/dms/key"
	PathTimerSet        = "/timer/set"
	PathTimerConfig     = "/timer/config"
	PathTimerAdd        = "/timer/add"
	PathRGB             = "/rgb"
	PathScenarioPi1In   = "/scenario/pi1_entry"
	PathScenarioPi1Exit = "/scenario/pi1_exit"
)

// Command is one control request: a POST of Body to Path.
type Command struct {
	// Action names the operation for logs ("alarm_on", "dms_key", ...)
	Action string

	// Path is the backend endpoint
	Path string

	// Body is marshalled as the JSON request body
	Body any

	// RequestID, when set, is sent as X-Request-ID
	RequestID string
}

// EmptyBody is the `{}` body sent by parameterless commands.
type EmptyBody struct{}

// KeyRequest submits one DMS keypad character.
type KeyRequest struct {
	Key string `json:"key"`
}

// TimerSetRequest sets the kitchen timer value.
type TimerSetRequest struct {
	Seconds int `json:"seconds"`
}

// TimerConfigRequest sets how many seconds one BTN press adds.
type TimerConfigRequest struct {
	AddN int `json:"add_n"`
}

// RGBPowerRequest toggles the BRGB light. It deliberately has no colour
// fields so a power toggle never carries a stale colour.
type RGBPowerRequest struct {
	On bool `json:"on"`
}

// RGBColorRequest recolours the BRGB light. It has no power field.
type RGBColorRequest struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

func AlarmOn() Command {
	return Command{Action: "alarm_on", Path: PathAlarmOn, Body: EmptyBody{}}
}

func AlarmOff() Command {
	return Command{Action: "alarm_off", Path: PathAlarmOff, Body: EmptyBody{}}
}

func ArmSystem() Command {
	return Command{Action: "arm_system", Path: PathSystemArm, Body: EmptyBody{}}
}

func DisarmSystem() Command {
	return Command{Action: "disarm_system", Path: PathSystemDisarm, Body: EmptyBody{}}
}

// DMSKey submits a single keypad character.
func DMSKey(key string) Command {
	return Command{Action: "dms_key", Path: PathDMSKey, Body: KeyRequest{Key: key}}
}

func SetTimer(seconds int) Command {
	return Command{Action: "timer_set", Path: PathTimerSet, Body: TimerSetRequest{Seconds: seconds}}
}

func SetTimerAddN(n int) Command {
	return Command{Action: "timer_config", Path: PathTimerConfig, Body: TimerConfigRequest{AddN: n}}
}

// TimerAdd presses the timer button: adds N seconds or stops the blink.
func TimerAdd() Command {
	return Command{Action: "timer_add", Path: PathTimerAdd, Body: EmptyBody{}}
}

func SetRGBPower(on bool) Command {
	return Command{Action: "rgb_power", Path: PathRGB, Body: RGBPowerRequest{On: on}}
}

func SetRGBColor(r, g, b int) Command {
	return Command{Action: "rgb_color", Path: PathRGB, Body: RGBColorRequest{R: r, G: g, B: b}}
}

func ScenarioPi1Entry() Command {
	return Command{Action: "scenario_pi1_entry", Path: PathScenarioPi1In, Body: EmptyBody{}}
}

func ScenarioPi1Exit() Command {
	return Command{Action: "scenario_pi1_exit", Path: PathScenarioPi1Exit, Body: EmptyBody{}}
}
