package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/status"
)

// SystemState summarizes alarm and arming flags as one word.
func SystemState(snap *status.Snapshot) string {
	switch {
	case snap == nil:
		return "unknown"
	case snap.AlarmOn:
		return "ALARM"
	case snap.SystemArmed:
		return "armed"
	case snap.ArmingPending:
		return "arming"
	default:
		return "disarmed"
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// StatusFields lists the headline values of a snapshot in display order.
func StatusFields(snap *status.Snapshot, now time.Time) []Field {
	if snap == nil {
		return []Field{{Key: "State", Value: "no data yet"}}
	}

	light := "off"
	if snap.BRGBOn {
		light = "on"
	}
	if c, ok := snap.BRGBColor(); ok {
		light += " " + c.String()
	}

	timer := status.FormatSeconds(snap.TimerSeconds)
	if snap.TimerBlink {
		timer += " (expired)"
	}

	return []Field{
		{Key: "System", Value: SystemState(snap)},
		{Key: "Alarm", Value: onOff(snap.AlarmOn)},
		{Key: "People", Value: fmt.Sprintf("%d", snap.PeopleCount)},
		{Key: "Door light", Value: onOff(snap.DL1On)},
		{Key: "Kitchen timer", Value: timer},
		{Key: "RGB light", Value: light},
		{Key: "Updated", Value: humanize.RelTime(snap.FetchedAt, now, "ago", "from now")},
	}
}

// SensorFields lists every sensor reading, sorted by name.
func SensorFields(snap *status.Snapshot) []Field {
	names := snap.SensorNames()
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		v, _ := snap.Sensor(name)
		fields = append(fields, Field{Key: name, Value: v.String()})
	}
	return fields
}

// RenderStatus renders a full status report: headline box, sensors, and the
// event log newest-first.
func RenderStatus(snap *status.Snapshot, pollErr string, now time.Time, width int) string {
	var b strings.Builder

	if pollErr != "" {
		b.WriteString(NewWarningResult(pollErr).SetWidth(width).Render())
		b.WriteString("\n")
	}

	b.WriteString(RenderHeader("Status", "homedash status", StatusFields(snap, now), width))
	b.WriteString("\n")

	if sensors := SensorFields(snap); len(sensors) > 0 {
		b.WriteString(RenderHeader("Sensors", fmt.Sprintf("%d readings", len(sensors)), sensors, width))
		b.WriteString("\n")
	}

	notes := snap.Notifications()
	if len(notes) > 0 {
		lines := make([]Field, 0, len(notes))
		for i := len(notes) - 1; i >= 0; i-- {
			lines = append(lines, Field{Key: notes[i].Time, Value: notes[i].Message})
		}
		b.WriteString(RenderHeader("Notifications", humanize.Comma(int64(len(notes)))+" events", lines, width))
		b.WriteString("\n")
	}

	return b.String()
}

// StatusLine is a single unstyled line for logs and pipes.
func StatusLine(snap *status.Snapshot, pollErr string, now time.Time) string {
	if snap == nil {
		if pollErr != "" {
			return now.Format(time.TimeOnly) + " " + pollErr
		}
		return now.Format(time.TimeOnly) + " waiting for first status"
	}

	parts := []string{
		now.Format(time.TimeOnly),
		"system=" + SystemState(snap),
		fmt.Sprintf("people=%d", snap.PeopleCount),
		"dl1=" + onOff(snap.DL1On),
		"timer=" + status.FormatSeconds(snap.TimerSeconds),
		"rgb=" + onOff(snap.BRGBOn),
	}
	if pollErr != "" {
		parts = append(parts, "error="+fmt.Sprintf("%q", pollErr))
	}
	return strings.Join(parts, " ")
}

// Troubleshooting returns hints for a backend error.
func Troubleshooting(err error, backendURL string) []string {
	var be *backend.Error
	if !errors.As(err, &be) {
		return nil
	}

	switch {
	case be.Type == backend.ErrTypeConnectionRefused:
		return []string{
			"Check the backend is running at " + backendURL,
			"Start a local simulator with: homedash-sim serve",
		}
	case be.Type == backend.ErrTypeDNS:
		return []string{
			"Check the hostname in --backend or the config file",
			"Find backends on the network with: homedash scan",
		}
	case be.Type == backend.ErrTypeTimeout:
		return []string{
			"The backend is reachable but slow; raise --request-timeout",
		}
	case backend.IsNetworkError(err):
		return []string{"Check network connectivity to " + backendURL}
	case backend.IsHTTPError(err) && be.StatusCode == http.StatusNotFound:
		return []string{
			"The address may not point at a homedash backend",
			"Find backends on the network with: homedash scan",
		}
	case backend.IsHTTPError(err):
		return []string{
			"The backend rejected the request; check its logs",
		}
	case backend.IsParseError(err):
		return []string{
			"The address may not point at a homedash backend",
		}
	default:
		return nil
	}
}
