package discovery

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "IPv4 controller",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "pi1-controller"},
				HostName:      "raspberrypi.local.",
				Port:          5001,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"path=/status", "version=1.0"},
			},
			wantIP:   "192.168.4.16",
			wantPort: 5001,
		},
		{
			name: "no port advertised",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "sim"},
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "pi3"},
				Port:          8080,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 8080,
		},
		{
			name: "prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "pi2"},
				Port:          5001,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantIP:   "192.168.1.50",
			wantPort: 5001,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ghost"},
				Port:          5001,
			},
			wantNil: true,
		},
		{
			name: "no instance name",
			entry: &zeroconf.ServiceEntry{
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if b != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", b)
				}
				return
			}
			if b == nil {
				t.Fatal("parseServiceEntry() = nil, want backend")
			}

			if b.Instance != tt.entry.Instance {
				t.Errorf("Instance = %q, want %q", b.Instance, tt.entry.Instance)
			}
			if b.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", b.IP, tt.wantIP)
			}
			if b.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", b.Port, tt.wantPort)
			}
			if time.Since(b.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", b.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"path=/status", "flag", "version=1.0", "expr=a=b"})

	want := map[string]string{
		"path":    "/status",
		"flag":    "",
		"version": "1.0",
		"expr":    "a=b",
	}
	if len(got) != len(want) {
		t.Errorf("parseTXT() has %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("parseTXT()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner()

	if s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
	if s.Service != ServiceType || s.Domain != ServiceDomain {
		t.Errorf("Service/Domain = %q/%q", s.Service, s.Domain)
	}
}

func TestBackend_Formatting(t *testing.T) {
	b := &Backend{Instance: "pi1", Hostname: "raspberrypi.local.", IP: "192.168.4.16", Port: 5001}

	if got := b.BaseURL(); got != "http://192.168.4.16:5001" {
		t.Errorf("BaseURL() = %q", got)
	}
	if got := b.String(); got != "pi1 (raspberrypi.local.) at 192.168.4.16:5001" {
		t.Errorf("String() = %q", got)
	}

	v6 := &Backend{IP: "fe80::1", Port: 5001}
	if got := v6.BaseURL(); got != "http://[fe80::1]:5001" {
		t.Errorf("IPv6 BaseURL() = %q", got)
	}

	if b.GetMetadata("path") != "" {
		t.Error("GetMetadata on nil metadata should be empty")
	}
}

// fakeBrowser announces backends one by one, like the resolver would
func fakeBrowser(backends ...*Backend) func(context.Context, func(*Backend) bool) error {
	return func(ctx context.Context, visit func(*Backend) bool) error {
		go func() {
			for _, b := range backends {
				if ctx.Err() != nil || !visit(b) {
					return
				}
			}
		}()
		return nil
	}
}

func TestScanner_WaitForInstance(t *testing.T) {
	s := NewScanner()
	s.browser = fakeBrowser(
		&Backend{Instance: "pi1", IP: "192.168.4.16", Port: 5001},
		&Backend{Instance: "kitchen", IP: "192.168.4.40", Port: 5001},
	)

	b, err := s.WaitFor(context.Background(), "kitchen")
	if err != nil {
		t.Fatalf("WaitFor() error = %v", err)
	}
	if b.IP != "192.168.4.40" {
		t.Errorf("WaitFor() IP = %q, want 192.168.4.40", b.IP)
	}

	first, err := s.WaitFor(context.Background(), "")
	if err != nil || first.Instance != "pi1" {
		t.Errorf("WaitFor(\"\") = %v, %v; want pi1", first, err)
	}
}

func TestScanner_WaitForTimeout(t *testing.T) {
	s := NewScanner()
	s.Timeout = 50 * time.Millisecond
	s.browser = fakeBrowser(&Backend{Instance: "pi1", IP: "192.168.4.16", Port: 5001})

	start := time.Now()
	_, err := s.WaitFor(context.Background(), "attic")
	if err == nil || !strings.Contains(err.Error(), `"attic" not found`) {
		t.Fatalf("WaitFor() error = %v, want not found", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("WaitFor() ignored its timeout")
	}
}

func TestScanner_Locate(t *testing.T) {
	s := NewScanner()
	s.browser = fakeBrowser(&Backend{Instance: "garage", IP: "192.168.4.77", Port: 5002})

	url, err := s.Locate(context.Background(), "garage")
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if url != "http://192.168.4.77:5002" {
		t.Errorf("Locate() = %q", url)
	}
}
