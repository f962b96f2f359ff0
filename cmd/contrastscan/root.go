package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for contrastscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contrastscan",
		Short: "WCAG 2.1 contrast auditor for design document exports",
		Long: `contrastscan audits design document exports for WCAG 2.1 contrast compliance.

It resolves each text and vector element's effective foreground and background
colors by walking the document's scene graph, classifies elements into the
normal-text / large-text / ui-component threshold tiers, and groups failing
elements by color-pair signature so an operator can correct all of them at once.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewFixCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
