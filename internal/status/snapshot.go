package status

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/muurk/homedash/internal/backend"
)

// RGB is a colour with channels in [0,255].
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// String formats the colour the way CSS does, e.g. "rgb(255, 0, 0)".
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex formats the colour as "#rrggbb", clamping each channel for display.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

// Notification is one entry of the backend's event log.
type Notification struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

// Snapshot is one immutable read of backend state.
//
// A Snapshot is built only by DecodeSnapshot and is never modified
// afterwards. Collections are unexported and handed out as copies.
type Snapshot struct {
	AlarmOn       bool
	SystemArmed   bool
	ArmingPending bool
	PeopleCount   int
	DL1On         bool
	TimerSeconds  int
	TimerBlink    bool
	BRGBOn        bool

	// FetchedAt is the local time the body was received
	FetchedAt time.Time

	brgbColor     *RGB
	sensors       map[string]Value
	notifications []Notification
	raw           []byte
}

// BRGBColor returns the confirmed light colour, if the backend reported one.
func (s *Snapshot) BRGBColor() (RGB, bool) {
	if s == nil || s.brgbColor == nil {
		return RGB{}, false
	}
	return *s.brgbColor, true
}

// Sensor returns the raw value of a named sensor. Unknown names report
// false; a nil snapshot is treated as empty.
func (s *Snapshot) Sensor(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.sensors[name]
	return v, ok
}

// SensorNames lists the sensors present in the snapshot, sorted.
func (s *Snapshot) SensorNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.sensors))
	for name := range s.sensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Notifications returns the event log oldest-first, as received.
func (s *Snapshot) Notifications() []Notification {
	if s == nil || len(s.notifications) == 0 {
		return nil
	}
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Raw returns a copy of the JSON body the snapshot was decoded from.
func (s *Snapshot) Raw() []byte {
	if s == nil {
		return nil
	}
	return bytes.Clone(s.raw)
}

// DecodeSnapshot builds a Snapshot from a /status body.
//
// A body that is not a JSON object is a parse error. Inside an object every
// field is coerced independently: a missing or ill-typed field takes its
// type default and nothing is carried over from earlier snapshots.
func DecodeSnapshot(body []byte, fetchedAt time.Time) (*Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, backend.NewParseError("GET "+backend.PathStatus, "status body is not a JSON object", err)
	}
	if fields == nil {
		return nil, backend.NewParseError("GET "+backend.PathStatus, "status body is null", nil)
	}

	snap := &Snapshot{
		AlarmOn:       boolField(fields["alarm_on"]),
		SystemArmed:   boolField(fields["system_armed"]),
		ArmingPending: boolField(fields["arming_pending"]),
		PeopleCount:   countField(fields["people_count"]),
		DL1On:         boolField(fields["dl1_on"]),
		TimerSeconds:  countField(fields["timer_seconds"]),
		TimerBlink:    boolField(fields["timer_blink"]),
		BRGBOn:        boolField(fields["brgb_on"]),
		FetchedAt:     fetchedAt,
		brgbColor:     colorField(fields["brgb_color"]),
		sensors:       sensorsField(fields["sensors"]),
		notifications: notificationsField(fields["notifications"]),
		raw:           bytes.Clone(body),
	}

	return snap, nil
}

// boolField accepts JSON booleans and numbers (non-zero is true). Anything
// else, including absence, is false.
func boolField(raw json.RawMessage) bool {
	switch v := decodeAny(raw).(type) {
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

// countField accepts JSON numbers, truncated toward zero and floored at 0.
func countField(raw json.RawMessage) int {
	n, ok := decodeAny(raw).(json.Number)
	if !ok {
		return 0
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func colorField(raw json.RawMessage) *RGB {
	obj, ok := decodeAny(raw).(map[string]any)
	if !ok {
		return nil
	}
	return &RGB{
		R: clampByte(channel(obj["r"])),
		G: clampByte(channel(obj["g"])),
		B: clampByte(channel(obj["b"])),
	}
}

func channel(v any) int {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return int(f)
}

func sensorsField(raw json.RawMessage) map[string]Value {
	obj, ok := decodeAny(raw).(map[string]any)
	if !ok {
		return map[string]Value{}
	}
	out := make(map[string]Value, len(obj))
	for name, v := range obj {
		out[name] = newValue(v)
	}
	return out
}

func notificationsField(raw json.RawMessage) []Notification {
	list, ok := decodeAny(raw).([]any)
	if !ok {
		return nil
	}
	out := make([]Notification, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Notification{
			Time:    textOf(obj["time"]),
			Message: textOf(obj["message"]),
		})
	}
	return out
}

func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// decodeAny decodes raw with numbers kept as json.Number. Absent or invalid
// input yields nil.
func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// formatNumber renders sensor numbers without a trailing ".0" for integers.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
