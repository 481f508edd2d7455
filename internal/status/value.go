package status

import (
	"encoding/json"
	"fmt"
)

// Kind tells which field of a Value is meaningful.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindClimate
	KindText
	KindOther
)

// Climate is the composite reading of a DHT sensor. Either half may be
// missing in a backend reading.
type Climate struct {
	Temp    float64
	Hum     float64
	HasTemp bool
	HasHum  bool
}

// Value is one sensor reading as reported by the backend.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  float64
	Climate Climate
	Text    string
}

func newValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{Kind: KindText, Text: t.String()}
		}
		return Value{Kind: KindNumber, Number: f}
	case string:
		return Value{Kind: KindText, Text: t}
	case map[string]any:
		temp, hasTemp := numberOf(t["temp"])
		hum, hasHum := numberOf(t["hum"])
		if !hasTemp && !hasHum {
			return Value{Kind: KindOther, Text: compact(t)}
		}
		return Value{Kind: KindClimate, Climate: Climate{Temp: temp, Hum: hum, HasTemp: hasTemp, HasHum: hasHum}}
	default:
		return Value{Kind: KindOther, Text: compact(t)}
	}
}

func numberOf(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	return f, err == nil
}

func compact(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Truthy reports whether the reading signals activity: true, non-zero, or
// "detected"-style text.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number != 0
	case KindText:
		switch v.Text {
		case "1", "true", "True", "detected", "ON", "on":
			return true
		}
	}
	return false
}

// String renders the reading for display.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number)
	case KindClimate:
		return fmt.Sprintf("T=%s H=%s", v.TempString(), v.HumString())
	default:
		return v.Text
	}
}

// TempString renders the temperature half, "undefined" when absent.
func (v Value) TempString() string {
	if v.Kind != KindClimate || !v.Climate.HasTemp {
		return "undefined"
	}
	return formatNumber(v.Climate.Temp)
}

// HumString renders the humidity half, "undefined" when absent.
func (v Value) HumString() string {
	if v.Kind != KindClimate || !v.Climate.HasHum {
		return "undefined"
	}
	return formatNumber(v.Climate.Hum)
}
