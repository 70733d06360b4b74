package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fabvis/fabvis/pkg/fabric"
	"github.com/fabvis/fabvis/pkg/util"
)

var sshCmd = &cobra.Command{
	Use:   "ssh <node>",
	Short: "Open a shell on a provisioned node",
	Long: `Open an interactive shell on a provisioned node. When a bastion is
configured the connection hops through it to the node's management
address; otherwise the session comes from the controller directly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSlice(cmd)
		if err != nil {
			return err
		}
		nodeName := args[0]

		var stream io.ReadWriteCloser
		if cfg.Bastion.Host != "" {
			node := s.Slice().GetNode(nodeName)
			if node == nil {
				return fmt.Errorf("node '%s': %w", nodeName, util.ErrNotFound)
			}
			tunnel, err := fabric.NewTunnel(fabric.BastionConfig{
				Host:    cfg.Bastion.Host,
				User:    cfg.Bastion.User,
				KeyPath: cfg.Bastion.KeyPath,
			}, cfg.NodeKeyPath)
			if err != nil {
				return err
			}
			cols, rows := termSize()
			stream, err = tunnel.OpenShell(cmd.Context(), node.Username, node.ManagementIP, cols, rows)
			if err != nil {
				return err
			}
		} else {
			stream, err = s.OpenSession(cmd.Context(), nodeName)
			if err != nil {
				return err
			}
		}
		defer stream.Close()

		return interactiveShell(stream)
	},
}

// interactiveShell puts the local terminal in raw mode and pipes it to the
// remote stream until either side closes.
func interactiveShell(stream io.ReadWriteCloser) error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)
	}

	done := make(chan error, 2)
	go func() {
		_, err := io.Copy(stream, os.Stdin)
		done <- err
	}()
	go func() {
		_, err := io.Copy(os.Stdout, stream)
		done <- err
	}()

	if err := <-done; err != nil && err != io.EOF {
		return err
	}
	return nil
}

func termSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}
