// Fabvis - Testbed Slice Topology Tool
//
// A CLI for editing and submitting experiment slice topologies:
//   - Draft-based editing (changes stay local until submit)
//   - Structural validation with errors and warnings
//   - Node, component, and network lifecycle management
//   - Shell sessions to provisioned nodes via the bastion
//
// OO CLI Pattern:
//
//	The -s flag selects the slice object; commands are methods on it:
//
//	fabvis -s <slice> <verb> [args]
//	        └───┬───┘  └──┬──┘
//	        Selection   Method
//
// Examples:
//
//	fabvis list                                  # All slices
//	fabvis -s exp1 create                        # New draft slice
//	fabvis -s exp1 add-node n1 --site STAR       # Add a node
//	fabvis -s exp1 add-component n1 nic1 --model NIC_Basic
//	fabvis -s exp1 add-net net1 --type L2Bridge --attach n1-nic1-p1
//	fabvis -s exp1 validate                      # Issue list
//	fabvis -s exp1 submit                        # Provision
//	fabvis -s exp1 ssh n1                        # Shell on a node
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fabvis/fabvis/pkg/config"
	"github.com/fabvis/fabvis/pkg/editor"
	"github.com/fabvis/fabvis/pkg/fabric"
	"github.com/fabvis/fabvis/pkg/util"
	"github.com/fabvis/fabvis/pkg/version"
)

var (
	// Object selector
	sliceName string // -s, --slice

	// Global option flags
	configPath string
	verbose    bool
	jsonOutput bool

	// Global state
	cfg  *config.Config
	ctrl fabric.Controller
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "fabvis",
	Short:             "Testbed Slice Topology Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Fabvis edits and submits experiment slice topologies.

The -s flag selects the slice object; commands are methods on that object.
Edits accumulate in a local draft until submit.

  fabvis -s <slice> <verb> [args]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		ctrl, err = buildController(cmd.Context())
		if err != nil {
			return fmt.Errorf("initializing controller: %w", err)
		}
		return nil
	},
}

// buildController wires the control framework client, layering the Redis
// site cache over it when configured.
func buildController(ctx context.Context) (fabric.Controller, error) {
	base := fabric.Controller(fabric.NewSimController())
	if cfg.RedisAddr == "" {
		return base, nil
	}
	cache, err := fabric.NewCache(ctx, cfg.RedisAddr, "", 0)
	if err != nil {
		util.Warnf("Site cache unavailable: %v", err)
		return base, nil
	}
	return fabric.WithCache(base, cache), nil
}

// requireSlice returns a loaded session for the selected slice.
func requireSlice(cmd *cobra.Command) (*editor.Session, error) {
	if sliceName == "" {
		return nil, fmt.Errorf("no slice selected: use -s <slice>")
	}
	s := editor.NewSession(ctrl, sliceName)
	if err := s.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return s, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sliceName, "slice", "s", "", "Slice name (object selector)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	for _, cmd := range []*cobra.Command{
		listCmd, showCmd, validateCmd, sitesCmd, graphCmd,
	} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "query", Title: "Query Operations:"},
		&cobra.Group{ID: "lifecycle", Title: "Slice Lifecycle:"},
		&cobra.Group{ID: "topology", Title: "Topology Editing:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{listCmd, showCmd, validateCmd, graphCmd, sitesCmd} {
		cmd.GroupID = "query"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{createCmd, submitCmd, refreshCmd, deleteCmd, sshCmd} {
		cmd.GroupID = "lifecycle"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		addNodeCmd, removeNodeCmd, updateNodeCmd,
		addComponentCmd, removeComponentCmd,
		addNetCmd, removeNetCmd, attachCmd, detachCmd,
	} {
		cmd.GroupID = "topology"
		rootCmd.AddCommand(cmd)
	}
	versionCmd.GroupID = "meta"
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fabvis " + version.Info())
	},
}
