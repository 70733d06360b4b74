//go:build integration

package testutil

import (
	"github.com/fabvis/fabvis/pkg/fabric"
)

// TestSites returns a small site list for cache round-trip tests.
func TestSites() []fabric.Site {
	return []fabric.Site{
		{Name: "STAR", Lat: 41.8959, Lon: -87.6177, State: "Active",
			Hosts: 4, CoresFree: 128, CoresCapacity: 256, RAMFree: 512, RAMCapacity: 1024},
		{Name: "TACC", Lat: 30.3902, Lon: -97.7266, State: "Active",
			Hosts: 6, CoresFree: 64, CoresCapacity: 512, RAMFree: 1024, RAMCapacity: 2048},
		{Name: "UTAH", Lat: 40.7659, Lon: -111.8455, State: "Maint",
			Hosts: 2, CoresFree: 0, CoresCapacity: 128, RAMFree: 0, RAMCapacity: 512},
	}
}

// TestMetrics returns plausible per-site metrics for cache tests.
func TestMetrics(site string) *fabric.SiteMetrics {
	return &fabric.SiteMetrics{
		Site:         site,
		Load1:        0.42,
		Load5:        0.38,
		Load15:       0.31,
		DataplaneIn:  1.2e9,
		DataplaneOut: 9.6e8,
	}
}
