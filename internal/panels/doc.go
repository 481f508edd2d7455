// Package panels centralizes the Grafana panel URLs shown on the per-Pi
// dashboard tabs.
//
// Each Raspberry Pi has its own Grafana dashboard. The panel lists live here
// so a renamed dashboard or panel is a one-line change:
//
//	b := panels.NewBuilder(cfg.Grafana)
//	d, _ := panels.Lookup("pi1")
//	for _, l := range b.Links(d) {
//	    fmt.Printf("%-6s %s\n", l.Code, l.URL)
//	}
package panels
