// Package discovery finds home-automation controllers on the local network
// with multicast DNS.
//
// Controllers (and homedash-sim with --advertise) register a
// "_homedash._tcp" service whose TXT records describe the API:
//
//	path=/status
//	version=1.0.0
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 3 * time.Second
//
//	backends, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, b := range backends {
//	    fmt.Printf("%s -> %s\n", b.Instance, b.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Controllers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
