package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fabvis/fabvis/pkg/cli"
	"github.com/fabvis/fabvis/pkg/fabric"
)

var (
	showModels  bool
	metricsSite string
)

func init() {
	sitesCmd.Flags().BoolVar(&showModels, "models", false, "List attachable component models instead")
	sitesCmd.Flags().StringVar(&metricsSite, "metrics", "", "Show Prometheus metrics for one site")
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List testbed sites and capacity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showModels {
			return runModels()
		}
		if metricsSite != "" {
			return runSiteMetrics(cmd, metricsSite)
		}

		sites, err := ctrl.ListSites(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(sites)
		}

		table := cli.NewTable("SITE", "STATE", "HOSTS", "CORES", "RAM")
		for _, s := range sites {
			table.Row(s.Name, s.State, strconv.Itoa(s.Hosts),
				fmt.Sprintf("%d/%d", s.CoresFree, s.CoresCapacity),
				fmt.Sprintf("%dG/%dG", s.RAMFree, s.RAMCapacity))
		}
		table.Flush()
		return nil
	},
}

func runModels() error {
	if jsonOutput {
		return printJSON(fabric.ComponentModels)
	}
	table := cli.NewTable("MODEL", "TYPE", "PORTS", "DESCRIPTION")
	for _, m := range fabric.ComponentModels {
		table.Row(m.Model, m.Type, strconv.Itoa(m.Ports), m.Description)
	}
	table.Flush()
	return nil
}

func runSiteMetrics(cmd *cobra.Command, site string) error {
	if cfg.PrometheusURL == "" {
		return fmt.Errorf("no prometheus_url configured")
	}
	reader, err := fabric.NewMetricsReader(cfg.PrometheusURL)
	if err != nil {
		return err
	}
	m, err := reader.SiteMetrics(cmd.Context(), site)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(m)
	}

	fmt.Printf("%s  (collected %s)\n", cli.Bold(m.Site), m.CollectedAt.Format("15:04:05"))
	fmt.Printf("  load:      %.2f / %.2f / %.2f\n", m.Load1, m.Load5, m.Load15)
	fmt.Printf("  dataplane: in %s  out %s\n", formatBits(m.DataplaneIn), formatBits(m.DataplaneOut))
	return nil
}

func formatBits(bits float64) string {
	switch {
	case bits >= 1e9:
		return fmt.Sprintf("%.1f Gbps", bits/1e9)
	case bits >= 1e6:
		return fmt.Sprintf("%.1f Mbps", bits/1e6)
	case bits >= 1e3:
		return fmt.Sprintf("%.1f Kbps", bits/1e3)
	default:
		return fmt.Sprintf("%.0f bps", bits)
	}
}
