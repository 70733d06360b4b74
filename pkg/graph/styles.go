package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
)

// StateColor is one background/border pair for a node reservation state.
type StateColor struct {
	Background string
	Border     string
}

// Per-state node colors, light theme. Keys are reservation states reported
// by the control framework; anything unlisted falls back to defaultState.
var stateColors = map[string]StateColor{
	"StableOK":       {"#e0f2f1", "#008e7a"},
	slice.ResActive:  {"#e0f2f1", "#008e7a"},
	"ActiveTicketed": {"#e0f2f1", "#008e7a"},
	"Configuring":    {"#e3f2fd", "#1565c0"},
	"Nascent":        {"#e3f2fd", "#1565c0"},
	"Ticketed":       {"#fff3e0", "#ff8542"},
	"ModifyOK":       {"#fff3e0", "#ff8542"},
	"StableError":    {"#fce4ec", "#b00020"},
	"ModifyError":    {"#fce4ec", "#b00020"},
	"Failed":         {"#fce4ec", "#b00020"},
	"Closing":        {"#eeeeee", "#616161"},
	"Dead":           {"#eeeeee", "#616161"},
}

var defaultState = StateColor{"#f8f9fa", "#838385"}

// Dark theme variants: brighter borders on dark tinted backgrounds.
var stateColorsDark = map[string]StateColor{
	"StableOK":       {"#0d2e26", "#4dd0b8"},
	slice.ResActive:  {"#0d2e26", "#4dd0b8"},
	"ActiveTicketed": {"#0d2e26", "#4dd0b8"},
	"Configuring":    {"#0d2040", "#64b5f6"},
	"Nascent":        {"#0d2040", "#64b5f6"},
	"Ticketed":       {"#3a2008", "#ffb74d"},
	"ModifyOK":       {"#3a2008", "#ffb74d"},
	"StableError":    {"#3a1018", "#ff6b6b"},
	"ModifyError":    {"#3a1018", "#ff6b6b"},
	"Failed":         {"#3a1018", "#ff6b6b"},
	"Closing":        {"#222230", "#8a8a9a"},
	"Dead":           {"#222230", "#8a8a9a"},
}

var defaultStateDark = StateColor{"#28283a", "#a0a0b8"}

// Fixed category colors for network nodes, one hue per layer.
var networkColors = map[string]StateColor{
	"L2": {"#e8f0fe", "#1967d2"},
	"L3": {"#f3e8fd", "#7b1fa2"},
}

// ColorsForState returns the light and dark theme colors for a reservation
// state. Total: unrecognized states get the unknown fallback, never an error.
func ColorsForState(state string) (light, dark StateColor) {
	light, ok := stateColors[state]
	if !ok {
		light = defaultState
	}
	dark, ok = stateColorsDark[state]
	if !ok {
		dark = defaultStateDark
	}
	return light, dark
}

// componentAbbrev maps component models to short labels for node summaries.
var componentAbbrev = map[string]string{
	"NIC_Basic":        "NIC",
	"NIC_ConnectX_5":   "CX5",
	"NIC_ConnectX_6":   "CX6",
	"NIC_ConnectX_7":   "CX7",
	"GPU_TeslaT4":      "T4",
	"GPU_RTX6000":      "RTX",
	"GPU_A30":          "A30",
	"GPU_A40":          "A40",
	"FPGA_Xilinx_U280": "FPGA",
	"NVME_P4510":       "NVMe",
}

const summaryMaxLen = 28

// componentSummary builds an abbreviated component summary like "NIC x2  T4".
// Output order is deterministic: by first appearance of each abbreviation.
func componentSummary(components []*slice.Component) string {
	counts := make(map[string]int)
	order := make(map[string]int)
	for i, comp := range components {
		abbrev, ok := componentAbbrev[comp.Model]
		if !ok {
			abbrev = comp.Model
		}
		if _, seen := counts[abbrev]; !seen {
			order[abbrev] = i
		}
		counts[abbrev]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if counts[name] > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", name, counts[name]))
		} else {
			parts = append(parts, name)
		}
	}
	return util.Truncate(strings.Join(parts, "  "), summaryMaxLen)
}
