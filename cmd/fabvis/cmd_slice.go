package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fabvis/fabvis/pkg/cli"
	"github.com/fabvis/fabvis/pkg/editor"
)

// ============================================================================
// Query verbs
// ============================================================================

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List slices",
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := ctrl.ListSlices(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(summaries)
		}

		table := cli.NewTable("NAME", "STATE", "NODES", "NETWORKS", "PENDING")
		for _, s := range summaries {
			table.Row(s.Name, cli.State(s.State),
				strconv.Itoa(s.NodeCount), strconv.Itoa(s.NetworkCount),
				cli.Dirty(s.Dirty))
		}
		table.Flush()
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the selected slice's topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		sl := s.Slice()
		if jsonOutput {
			return printJSON(sl)
		}

		fmt.Printf("%s  state=%s", cli.Bold(sl.Name), cli.State(sl.State))
		if sl.ID != "" {
			fmt.Printf("  id=%s", sl.ID)
		}
		if sl.Dirty {
			fmt.Printf("  %s", cli.Yellow("(unsubmitted changes)"))
		}
		fmt.Println()

		nodes := cli.NewTable("NODE", "SITE", "CORES", "RAM", "DISK", "IMAGE", "MGMT IP").WithPrefix("  ")
		for _, n := range sl.Nodes {
			nodes.Row(n.Name, n.Site, strconv.Itoa(n.Cores),
				strconv.Itoa(n.RAM)+"G", strconv.Itoa(n.Disk)+"G",
				n.Image, n.ManagementIP)
		}
		nodes.Flush()

		nets := cli.NewTable("NETWORK", "TYPE", "INTERFACES").WithPrefix("  ")
		for _, net := range sl.Networks {
			nets.Row(net.Name, net.Type, strings.Join(net.Interfaces, ", "))
		}
		nets.Flush()
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the selected slice",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		result := s.Validation()
		if jsonOutput {
			return printJSON(result)
		}

		for _, issue := range result.Issues {
			fmt.Printf("%s  %s\n", cli.Severity(issue.Severity), issue.Message)
			if issue.Remedy != "" {
				fmt.Printf("       %s\n", cli.Dim(issue.Remedy))
			}
		}
		if result.Valid {
			fmt.Println(cli.Green("Slice is valid."))
			return nil
		}
		return fmt.Errorf("%d error(s), %d warning(s)", result.ErrorCount(), result.WarningCount())
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Dump the derived graph model",
	Long: `Dump the renderable graph model derived from the slice: one element
per node and network plus one edge per attached interface. Mostly useful
for debugging hosts that embed the engine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		model := s.Model()
		if jsonOutput {
			return printJSON(model)
		}

		table := cli.NewTable("ID", "CLASS", "PARENT", "LABEL")
		for _, n := range model.Nodes {
			table.Row(n.ID, n.Class, n.Parent, strings.ReplaceAll(n.Label, "\n", " | "))
		}
		table.Flush()

		edges := cli.NewTable("EDGE", "SOURCE", "TARGET", "LABEL")
		for _, e := range model.Edges {
			edges.Row(e.ID, e.Source, e.Target, e.Label)
		}
		edges.Flush()
		return nil
	},
}

// ============================================================================
// Lifecycle verbs
// ============================================================================

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new draft slice",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sliceName == "" {
			return fmt.Errorf("no slice selected: use -s <slice>")
		}
		s := editor.NewSession(ctrl, sliceName)
		if err := s.Create(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Created draft slice %s\n", cli.Bold(sliceName))
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the selected slice for provisioning",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}

		gate := s.Gate()
		if gate.Warn {
			// Mirror the editor: an invalid draft is not silently shipped.
			fmt.Fprintln(os.Stderr, cli.Yellow("Slice has validation errors:"))
			for _, issue := range s.Validation().Issues {
				fmt.Fprintf(os.Stderr, "  %s  %s\n", cli.Severity(issue.Severity), issue.Message)
			}
			return fmt.Errorf("fix validation errors before submitting")
		}

		if err := s.Submit(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Submitted %s (%s), state now %s\n",
			cli.Bold(sliceName), gate.Intent, cli.State(s.Slice().State))
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-read the slice from the testbed, discarding local edits",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		if err := s.Refresh(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Refreshed %s, state %s\n", cli.Bold(sliceName), cli.State(s.Slice().State))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the selected slice",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sliceName == "" {
			return fmt.Errorf("no slice selected: use -s <slice>")
		}
		if err := ctrl.DeleteSlice(cmd.Context(), sliceName); err != nil {
			return err
		}
		fmt.Printf("Deleted slice %s\n", sliceName)
		return nil
	},
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
