package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fabvis/fabvis/pkg/cli"
	"github.com/fabvis/fabvis/pkg/editor"
	"github.com/fabvis/fabvis/pkg/fabric"
	"github.com/fabvis/fabvis/pkg/util"
)

// Flags shared by node verbs.
var (
	nodeSite  string
	nodeCores int
	nodeRAM   int
	nodeDisk  int
	nodeImage string

	compModel string

	netType    string
	netSubnet  string
	netGateway string
	netAttach  string
)

func init() {
	addNodeCmd.Flags().StringVar(&nodeSite, "site", "", "Site name (default: auto-select)")
	addNodeCmd.Flags().IntVar(&nodeCores, "cores", 0, "CPU cores")
	addNodeCmd.Flags().IntVar(&nodeRAM, "ram", 0, "RAM in GB")
	addNodeCmd.Flags().IntVar(&nodeDisk, "disk", 0, "Disk in GB")
	addNodeCmd.Flags().StringVar(&nodeImage, "image", "", "OS image")

	updateNodeCmd.Flags().StringVar(&nodeSite, "site", "", "Site name")
	updateNodeCmd.Flags().IntVar(&nodeCores, "cores", 0, "CPU cores")
	updateNodeCmd.Flags().IntVar(&nodeRAM, "ram", 0, "RAM in GB")
	updateNodeCmd.Flags().IntVar(&nodeDisk, "disk", 0, "Disk in GB")
	updateNodeCmd.Flags().StringVar(&nodeImage, "image", "", "OS image")

	addComponentCmd.Flags().StringVar(&compModel, "model", "", "Component model (see 'fabvis sites --models')")
	addComponentCmd.MarkFlagRequired("model")

	addNetCmd.Flags().StringVar(&netType, "type", "L2Bridge", "Network type")
	addNetCmd.Flags().StringVar(&netSubnet, "subnet", "", "Subnet CIDR (L3 networks)")
	addNetCmd.Flags().StringVar(&netGateway, "gateway", "", "Gateway address (L3 networks)")
	addNetCmd.Flags().StringVar(&netAttach, "attach", "", "Comma-separated interfaces to attach")
}

var addNodeCmd = &cobra.Command{
	Use:   "add-node <name>",
	Short: "Add a node to the draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		err = s.AddNode(cmd.Context(), fabric.NodeSpec{
			Name:  args[0],
			Site:  nodeSite,
			Cores: nodeCores,
			RAM:   nodeRAM,
			Disk:  nodeDisk,
			Image: nodeImage,
		})
		if err != nil {
			return err
		}
		n := s.Slice().GetNode(args[0])
		fmt.Printf("Added node %s @ %s (%dc / %dG / %dG)\n",
			cli.Bold(n.Name), n.Site, n.Cores, n.RAM, n.Disk)
		return nil
	},
}

var removeNodeCmd = &cobra.Command{
	Use:   "remove-node <name>",
	Short: "Remove a node (detaches its interfaces first)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		del := &editor.Command{
			Kind:    editor.CommandDelete,
			Targets: []editor.Target{{Type: editor.TargetNode, Name: args[0]}},
		}
		if err := s.ExecuteDelete(cmd.Context(), del); err != nil {
			return err
		}
		fmt.Printf("Removed node %s\n", args[0])
		return nil
	},
}

var updateNodeCmd = &cobra.Command{
	Use:   "update-node <name>",
	Short: "Change a node's site, sizing, or image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		var update fabric.NodeUpdate
		if cmd.Flags().Changed("site") {
			update.Site = &nodeSite
		}
		if cmd.Flags().Changed("cores") {
			update.Cores = &nodeCores
		}
		if cmd.Flags().Changed("ram") {
			update.RAM = &nodeRAM
		}
		if cmd.Flags().Changed("disk") {
			update.Disk = &nodeDisk
		}
		if cmd.Flags().Changed("image") {
			update.Image = &nodeImage
		}
		if err := s.UpdateNode(cmd.Context(), args[0], update); err != nil {
			return err
		}
		fmt.Printf("Updated node %s\n", args[0])
		return nil
	},
}

var addComponentCmd = &cobra.Command{
	Use:   "add-component <node> <name>",
	Short: "Attach a component (NIC, GPU, storage) to a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		err = s.AddComponent(cmd.Context(), args[0], fabric.ComponentSpec{
			Name:  args[1],
			Model: compModel,
		})
		if err != nil {
			return err
		}
		comp := s.Slice().GetNode(args[0]).GetComponent(args[1])
		fmt.Printf("Added %s %s to %s (%d interface(s))\n",
			comp.Type, cli.Bold(comp.Name), args[0], len(comp.Interfaces))
		return nil
	},
}

var removeComponentCmd = &cobra.Command{
	Use:   "remove-component <node> <name>",
	Short: "Remove a component from a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		if err := s.RemoveComponent(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed component %s from %s\n", args[1], args[0])
		return nil
	},
}

var addNetCmd = &cobra.Command{
	Use:   "add-net <name>",
	Short: "Create a network, optionally attaching interfaces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		ifaces := util.SplitCommaSeparated(netAttach)
		err = s.AddNetwork(cmd.Context(), fabric.NetworkSpec{
			Name:       args[0],
			Type:       netType,
			Subnet:     netSubnet,
			Gateway:    netGateway,
			Interfaces: ifaces,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added network %s (%s) with %d interface(s)\n",
			cli.Bold(args[0]), netType, len(ifaces))
		return nil
	},
}

var removeNetCmd = &cobra.Command{
	Use:   "remove-net <name>",
	Short: "Remove a network (its interfaces become dangling)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		del := &editor.Command{
			Kind:    editor.CommandDelete,
			Targets: []editor.Target{{Type: editor.TargetNetwork, Name: args[0]}},
		}
		if err := s.ExecuteDelete(cmd.Context(), del); err != nil {
			return err
		}
		fmt.Printf("Removed network %s\n", args[0])
		return nil
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach <interface> <network>",
	Short: "Attach a dangling interface to a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		if err := s.Attach(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Attached %s to %s\n", args[0], args[1])
		return nil
	},
}

var detachCmd = &cobra.Command{
	Use:   "detach <interface>",
	Short: "Detach an interface from its network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		if err := s.Detach(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Detached %s\n", args[0])
		return nil
	},
}
