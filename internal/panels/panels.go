package panels

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/muurk/homedash/internal/config"
)

// Panel is one embedded Grafana panel.
type Panel struct {
	Code  string // device code, e.g. "DS1"
	Title string
	ID    string // Grafana panelId
}

// Dashboard is the Grafana dashboard behind one Raspberry Pi tab.
type Dashboard struct {
	Tab       string
	UID       string
	Slug      string
	SceneSolo bool   // adds __feature.dashboardSceneSolo=true
	Category  string // showCategory, empty to omit
	Panels    []Panel
}

// Dashboards lists the tabs in display order.
var Dashboards = []Dashboard{
	{
		Tab:      "pi1",
		UID:      "adwr22k",
		Slug:     "smart-house",
		Category: "State timeline",
		Panels: []Panel{
			{Code: "DS1", Title: "DS1 - Door Sensor", ID: "2"},
			{Code: "DL", Title: "DL - Door Light", ID: "4"},
			{Code: "DUS1", Title: "DUS1 - Door Ultrasonic Sensor", ID: "1"},
			{Code: "DB", Title: "DB - Door Buzzer", ID: "5"},
			{Code: "DPIR1", Title: "DPIR1 - Door Motion Sensor", ID: "3"},
			{Code: "DMS", Title: "DMS - Door Membrane Switch", ID: "6"},
		},
	},
	{
		Tab:       "pi2",
		UID:       "adl7sjw",
		Slug:      "pi2",
		SceneSolo: true,
		Panels: []Panel{
			{Code: "DS2", Title: "DS2 - Door Sensor (Button)", ID: "panel-1"},
			{Code: "DUS2", Title: "DUS2 - Door Ultrasonic Sensor", ID: "panel-2"},
			{Code: "DPIR2", Title: "DPIR2 - Door Motion Sensor", ID: "panel-3"},
			{Code: "4SD", Title: "4SD - Kitchen 4 Digit 7 Segment Display Timer", ID: "panel-4"},
			{Code: "BTN", Title: "BTN - Kitchen Button", ID: "panel-5"},
			{Code: "DHT3", Title: "DHT3 - Kitchen DHT", ID: "panel-6"},
			{Code: "GSG", Title: "GSG - Gyroscope", ID: "panel-7"},
		},
	},
	{
		Tab:       "pi3",
		UID:       "advhvp6",
		Slug:      "new-dashboard",
		SceneSolo: true,
		Panels: []Panel{
			{Code: "DHT1", Title: "DHT1 - Bedroom DHT", ID: "panel-1"},
			{Code: "DHT2", Title: "DHT2 - Master Bedroom DHT", ID: "panel-2"},
			{Code: "IR", Title: "IR - Bedroom Infrared", ID: "panel-3"},
			{Code: "BRGB", Title: "BRGB - Bedroom RGB", ID: "panel-4"},
			{Code: "DPIR3", Title: "DPIR3 - Living Room Motion Sensor", ID: "panel-5"},
		},
	},
}

// Lookup returns the dashboard for a tab name ("pi1", "pi2", "pi3").
func Lookup(tab string) (Dashboard, bool) {
	tab = strings.ToLower(strings.TrimSpace(tab))
	for _, d := range Dashboards {
		if d.Tab == tab {
			return d, true
		}
	}
	return Dashboard{}, false
}

// Builder renders solo-panel URLs against one Grafana instance.
type Builder struct {
	cfg config.GrafanaConfig
}

// NewBuilder creates a builder. Empty fields fall back to the defaults.
func NewBuilder(cfg config.GrafanaConfig) *Builder {
	def := config.Default().Grafana
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.From == "" {
		cfg.From = def.From
	}
	if cfg.To == "" {
		cfg.To = def.To
	}
	if cfg.Refresh == "" {
		cfg.Refresh = def.Refresh
	}
	if cfg.Timezone == "" {
		cfg.Timezone = def.Timezone
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Builder{cfg: cfg}
}

// URL returns the d-solo URL embedding panel p of dashboard d.
func (b *Builder) URL(d Dashboard, p Panel) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/d-solo/%s/%s?orgId=1&from=%s&to=%s&refresh=%s&timezone=%s",
		b.cfg.BaseURL, d.UID, d.Slug,
		url.QueryEscape(b.cfg.From), url.QueryEscape(b.cfg.To),
		url.QueryEscape(b.cfg.Refresh), url.QueryEscape(b.cfg.Timezone))

	if d.SceneSolo {
		sb.WriteString("&__feature.dashboardSceneSolo=true")
	}
	if d.Category != "" {
		sb.WriteString("&showCategory=" + url.PathEscape(d.Category))
	}
	sb.WriteString("&panelId=" + url.QueryEscape(p.ID))
	return sb.String()
}

// Link pairs a panel with its rendered URL.
type Link struct {
	Panel
	URL string
}

// Links renders every panel of d.
func (b *Builder) Links(d Dashboard) []Link {
	out := make([]Link, 0, len(d.Panels))
	for _, p := range d.Panels {
		out = append(out, Link{Panel: p, URL: b.URL(d, p)})
	}
	return out
}

// CameraStreamURL is the MJPEG stream of the door camera (WEBC) on the
// pi1 host.
func CameraStreamURL(host string) string {
	return "http://" + host + ":8080/?action=stream"
}
