package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/homedash/internal/logging"
)

const (
	// ServiceType is the mDNS service type controllers advertise
	ServiceType = "_homedash._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default time spent collecting answers
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the controller API port assumed when none is advertised
	DefaultPort = 5001
)

// Scanner handles mDNS backend discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration

	// Service and Domain select what to browse for
	Service string
	Domain  string

	// browser replaces the zeroconf resolver in tests
	browser func(ctx context.Context, visit func(*Backend) bool) error
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		Service: ServiceType,
		Domain:  ServiceDomain,
	}
}

// Scan collects every backend that answers within the timeout, sorted by
// instance name. Repeated answers from one instance are merged.
func (s *Scanner) Scan(ctx context.Context) ([]*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu    sync.Mutex
		found = make(map[string]*Backend)
	)

	err := s.start(ctx, func(b *Backend) bool {
		mu.Lock()
		found[b.Instance] = b
		mu.Unlock()
		return true
	})
	if err != nil {
		return nil, err
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()

	backends := make([]*Backend, 0, len(found))
	for _, b := range found {
		backends = append(backends, b)
	}
	sort.Slice(backends, func(i, j int) bool {
		return backends[i].Instance < backends[j].Instance
	})

	logging.Debug("mDNS scan finished", zap.Int("backends", len(backends)))
	return backends, nil
}

// WaitFor returns the first backend whose instance name is instance, or
// the first backend of any name when instance is empty.
func (s *Scanner) WaitFor(ctx context.Context, instance string) (*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	result := make(chan *Backend, 1)

	err := s.start(ctx, func(b *Backend) bool {
		if instance != "" && b.Instance != instance {
			return true
		}
		select {
		case result <- b:
		default:
		}
		cancel()
		return false
	})
	if err != nil {
		return nil, err
	}

	select {
	case b := <-result:
		return b, nil
	case <-ctx.Done():
		select {
		case b := <-result:
			return b, nil
		default:
		}
		if instance == "" {
			return nil, fmt.Errorf("no backend found within %s", s.Timeout)
		}
		return nil, fmt.Errorf("backend %q not found within %s", instance, s.Timeout)
	}
}

func (s *Scanner) start(ctx context.Context, visit func(*Backend) bool) error {
	if s.browser != nil {
		return s.browser(ctx, visit)
	}
	return s.browse(ctx, visit)
}

// Locate returns the base URL of the backend advertised as instance.
func (s *Scanner) Locate(ctx context.Context, instance string) (string, error) {
	b, err := s.WaitFor(ctx, instance)
	if err != nil {
		return "", err
	}
	logging.Info("Located backend over mDNS",
		zap.String("instance", b.Instance),
		zap.String("url", b.BaseURL()))
	return b.BaseURL(), nil
}

// browse starts resolving and calls visit for each usable entry until visit
// returns false or ctx ends. It returns once browsing has started.
func (s *Scanner) browse(ctx context.Context, visit func(*Backend) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)

	go func() {
		for entry := range entries {
			b := parseServiceEntry(entry)
			if b == nil {
				continue
			}
			if !visit(b) {
				// Keep draining so the resolver is never blocked.
				for range entries {
				}
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, s.Service, s.Domain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Backend.
// Returns nil if the entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Backend {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Backend{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     parseTXT(entry.Text),
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" TXT strings; a bare key maps to "".
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}
	return metadata
}

// Advertisement is a running mDNS registration.
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise registers a controller instance on port so Scanner can find
// it. Call Shutdown to withdraw it.
func Advertise(instance string, port int, txt map[string]string) (*Advertisement, error) {
	records := make([]string, 0, len(txt))
	for k, v := range txt {
		records = append(records, k+"="+v)
	}
	sort.Strings(records)

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, records, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising backend over mDNS",
		zap.String("instance", instance),
		zap.Int("port", port))

	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertisement) Shutdown() {
	if a != nil && a.server != nil {
		a.server.Shutdown()
	}
}
