package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/muurk/homedash/internal/backend"
	"github.com/muurk/homedash/internal/control"
	"github.com/muurk/homedash/internal/panels"
	"github.com/muurk/homedash/internal/status"
	"github.com/muurk/homedash/internal/ui"
)

// Sensors shown on each Raspberry Pi tab
var (
	pi1Sensors = []string{"DS1", "DPIR1", "DUS1"}
	pi2Sensors = []string{"DS2", "DPIR2", "DUS2", "GSG", "DHT3"}
	pi3Sensors = []string{"DPIR3", "DHT1", "DHT2"}
)

// maxNotifications bounds the event list on the overview
const maxNotifications = 8

// View renders the dashboard
func (m Model) View() string {
	helpText := m.Help.View(m.Keys.helpFor(m.Tab, m.Editing != inputNone, m.Confirm != nil))
	if m.Confirm != nil {
		return RenderModal(m.renderConfirm(helpText), m.Width, m.Height)
	}
	return RenderApplicationContainer(m.content(), helpText, m.backendURL, m.Width, m.Height)
}

func (m Model) renderConfirm(helpText string) string {
	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		SectionTitleStyle.Render(m.Confirm.label),
		"",
		m.Confirm.prompt,
		"",
		helpText,
	))
}

func (m Model) content() string {
	width := m.Width - 4
	snap := m.store.Current()

	parts := []string{m.renderTabs()}

	if banner := m.store.ErrorMessage(); banner != "" {
		parts = append(parts, ErrorBannerStyle.Width(width-2).Render(banner))
	}

	switch m.Tab {
	case TabPi1:
		parts = append(parts, m.renderPi1(snap, width))
	case TabPi2:
		parts = append(parts, m.renderPi2(snap, width))
	case TabPi3:
		parts = append(parts, m.renderPi3(snap, width))
	default:
		parts = append(parts, m.renderOverview(snap, width))
	}

	if m.Editing != inputNone {
		parts = append(parts, m.Input.View())
	}

	parts = append(parts, m.renderCommandLine())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.Tab {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, TabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderCommandLine shows command progress, the outcome of the latest
// command and the persistent last command error
func (m Model) renderCommandLine() string {
	var lines []string

	switch {
	case m.Pending > 0:
		lines = append(lines, m.Spinner.View()+" Sending...")
	case m.LastAction != "" && m.LastActionErr == nil:
		lines = append(lines, OnStyle.Render("✓ "+m.LastAction))
	case m.LastAction != "":
		lines = append(lines, AlertStyle.Render("✗ "+m.LastAction+": "+backend.ShortMessage(m.LastActionErr)))
	}

	if err := m.dispatcher.LastCommandError(); err != nil && m.LastActionErr == nil {
		lines = append(lines, WarningBannerStyle.Render("Last command failed: "+backend.ShortMessage(err)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderOverview(snap *status.Snapshot, width int) string {
	now := m.now()

	summary := make([]string, 0, 8)
	for _, f := range ui.StatusFields(snap, now) {
		summary = append(summary, RenderField(f.Key, f.Value))
	}

	sections := []string{RenderSection("Status", width, summary...)}

	if names := snap.SensorNames(); len(names) > 0 {
		lines := make([]string, 0, len(names))
		for _, name := range names {
			v, _ := snap.Sensor(name)
			lines = append(lines, RenderField(name, renderValue(v)))
		}
		sections = append(sections, RenderSection("Sensors", width, lines...))
	}

	sections = append(sections, RenderSection("Notifications", width, renderNotifications(snap)...))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderNotifications lists the event log newest-first
func renderNotifications(snap *status.Snapshot) []string {
	notes := snap.Notifications()
	if len(notes) == 0 {
		return []string{HintStyle.Render("No events")}
	}

	lines := make([]string, 0, min(len(notes), maxNotifications))
	for i := len(notes) - 1; i >= 0 && len(lines) < maxNotifications; i-- {
		lines = append(lines, RenderField(notes[i].Time, notes[i].Message))
	}
	if hidden := len(notes) - len(lines); hidden > 0 {
		lines = append(lines, HintStyle.Render(fmt.Sprintf("… %s older", humanize.Comma(int64(hidden)))))
	}
	return lines
}

func (m Model) renderPi1(snap *status.Snapshot, width int) string {
	state := ui.SystemState(snap)
	switch state {
	case "ALARM":
		state = AlertStyle.Render(state)
	case "arming":
		state = PendingStyle.Render(state)
	case "armed":
		state = OnStyle.Render(state)
	}

	var alarmOn, dl1On bool
	var people int
	if snap != nil {
		alarmOn, dl1On, people = snap.AlarmOn, snap.DL1On, snap.PeopleCount
	}

	security := RenderSection("Security", width,
		RenderField("System", state),
		RenderField("Alarm", RenderOnOff(alarmOn)),
		RenderField("People", fmt.Sprintf("%d", people)),
		RenderField("Door light", RenderOnOff(dl1On)),
		RenderField("PIN", m.renderPinState()),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		security,
		m.renderSensors(snap, width, pi1Sensors),
		m.renderPanels("pi1", width, RenderField("WEBC", LinkStyle.Render(panels.CameraStreamURL(m.cameraHost())))),
	)
}

func (m Model) renderPinState() string {
	switch m.pin.State() {
	case control.PinSending:
		return PendingStyle.Render(fmt.Sprintf("sending key %d", m.pin.Index()+1))
	case control.PinDone:
		return OnStyle.Render("accepted")
	case control.PinAborted:
		return AlertStyle.Render(fmt.Sprintf("aborted at key %d", m.pin.Index()+1))
	default:
		return OffStyle.Render("-")
	}
}

func (m Model) renderPi2(snap *status.Snapshot, width int) string {
	timer := m.store.TimerText()
	if snap != nil && snap.TimerBlink {
		timer = AlertStyle.Blink(true).Render(timer + "  TIME UP")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderSection("Kitchen timer", width, RenderField("4SD", timer)),
		m.renderSensors(snap, width, pi2Sensors),
		m.renderPanels("pi2", width),
	)
}

func (m Model) renderPi3(snap *status.Snapshot, width int) string {
	draft := m.color.Draft()
	preview := m.store.ColorPreview(draft)

	var on bool
	confirmed := OffStyle.Render("unknown")
	if snap != nil {
		on = snap.BRGBOn
		if c, ok := snap.BRGBColor(); ok {
			confirmed = c.String()
		}
	}

	draftText := draft.String()
	if m.color.Dirty() {
		draftText += PendingStyle.Render("  (not applied)")
	}

	light := RenderSection("RGB light", width,
		RenderField("BRGB", RenderOnOff(on)),
		RenderField("Colour", confirmed),
		RenderField("Draft", draftText),
		RenderField("Preview", RenderSwatch(preview.Hex())),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		light,
		m.renderSensors(snap, width, pi3Sensors),
		m.renderPanels("pi3", width),
	)
}

func (m Model) renderSensors(snap *status.Snapshot, width int, names []string) string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		v, ok := snap.Sensor(name)
		if !ok {
			lines = append(lines, RenderField(name, OffStyle.Render("n/a")))
			continue
		}
		lines = append(lines, RenderField(name, renderValue(v)))
	}
	return RenderSection("Sensors", width, lines...)
}

func renderValue(v status.Value) string {
	if v.Kind == status.KindClimate {
		return fmt.Sprintf("%s°C  %s%%", v.TempString(), v.HumString())
	}
	if v.Truthy() {
		return OnStyle.Render(v.String())
	}
	return v.String()
}

func (m Model) renderPanels(tab string, width int, extra ...string) string {
	d, ok := panels.Lookup(tab)
	if !ok || m.panels == nil {
		return ""
	}

	lines := make([]string, 0, len(d.Panels)+len(extra))
	for _, l := range m.panels.Links(d) {
		lines = append(lines, RenderField(l.Code, LinkStyle.Render(l.URL)))
	}
	lines = append(lines, extra...)
	return RenderSection("Panels", width, lines...)
}
