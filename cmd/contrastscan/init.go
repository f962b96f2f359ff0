package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/a11yscan/contrastscan/internal/config"
)

//go:embed templates/contrastscan.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new contrastscan configuration file",
		Long: `Initialize creates a new .contrastscan configuration file in the current directory.

The generated file includes:
- Default settings for traversal caps
- Commented examples for per-document configurations
- Documentation for all available options

Examples:
  # Create .contrastscan in current directory
  contrastscan init

  # Create config file at a specific path
  contrastscan init -o myconfig.yaml

  # Force overwrite existing file
  contrastscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/contrastscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure per-document settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Fallback page background color")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Selection of subtrees to audit")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Traversal caps per document")

	return nil
}
