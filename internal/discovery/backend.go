package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Backend represents a controller found on the network
type Backend struct {
	// Instance is the advertised service instance name (e.g., "pi1-controller")
	Instance string

	// Hostname is the mDNS hostname (e.g., "raspberrypi.local.")
	Hostname string

	// IP is the address to connect to, IPv4 when available
	IP string

	// Port is the HTTP port of the controller API
	Port int

	// Metadata contains the TXT record data
	// Common fields: "path=/status", "version=1.2.0"
	Metadata map[string]string

	// DiscoveredAt is when the backend answered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the backend
func (b *Backend) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Instance, b.Hostname, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)))
}

// BaseURL returns the HTTP base URL of the controller API
func (b *Backend) BaseURL() string {
	return "http://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// GetMetadata retrieves a TXT value by key, or returns empty string if not found
func (b *Backend) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
