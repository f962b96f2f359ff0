package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/a11yscan/contrastscan/internal/audit"
	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/fixer"
	"github.com/a11yscan/contrastscan/internal/log"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// NewFixCmd creates the fix command.
func NewFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [document.json]",
		Short: "Apply a bulk color fix to one contrast issue group",
		Long: `Fix rescans the document, locates one color-pair issue group, and
overwrites the colors of every element in that group at once.

The group is addressed by the key printed in scan reports:
foregroundHex|backgroundHex|isText|isLargeText. At least one of --fg
and --bg must be given. The corrected document is saved back in place
unless --output names a different file.

Examples:
  # Recolor the foreground of every node in a failing group
  contrastscan fix --group "#AAAAAA|#FFFFFF|true|false" --fg "#595959" landing-page.json

  # Repaint the background providers instead, saving to a new file
  contrastscan fix --group "#AAAAAA|#FFFFFF|true|false" --bg "#1E1E1E" -o fixed.json landing-page.json`,
		Args: cobra.ExactArgs(1),
		RunE: runFixCmd,
	}

	cmd.Flags().StringP("group", "g", "",
		"Issue group key from the scan report (required)")
	cmd.Flags().String("fg", "",
		"Replacement foreground hex color")
	cmd.Flags().String("bg", "",
		"Replacement background hex color")
	cmd.Flags().StringP("output", "o", "",
		"Write the corrected document to this path (default: in place)")
	cmd.Flags().StringP("page-background", "p", "",
		"Fallback page background hex color used during the rescan")

	if err := cmd.MarkFlagRequired("group"); err != nil {
		panic(err)
	}

	return cmd
}

// runFixCmd executes the fix command.
func runFixCmd(cmd *cobra.Command, args []string) error {
	documentPath := args[0]

	groupKey, err := cmd.Flags().GetString("group")
	if err != nil {
		return err
	}

	newFg, err := getHexFlag(cmd, "fg")
	if err != nil {
		return err
	}
	newBg, err := getHexFlag(cmd, "bg")
	if err != nil {
		return err
	}
	if newFg == nil && newBg == nil {
		return fmt.Errorf("nothing to apply: specify --fg, --bg, or both")
	}

	pageBg, err := getHexFlag(cmd, "page-background")
	if err != nil {
		return err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = documentPath
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	return runFix(cmd, documentPath, outputPath, groupKey, newFg, newBg, pageBg, logger)
}

// getHexFlag parses an optional hex color flag. An empty flag value
// yields nil.
func getHexFlag(cmd *cobra.Command, name string) (*wcag.Color, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	c, ok := wcag.ParseHex(raw)
	if !ok {
		return nil, fmt.Errorf("invalid --%s value %q: must be a #RRGGBB hex color", name, raw)
	}
	return &c, nil
}

// runFix rescans the document, finds the addressed group, and applies
// the fix.
func runFix(cmd *cobra.Command, documentPath, outputPath, groupKey string, newFg, newBg, pageBg *wcag.Color, logger *slog.Logger) error {
	doc, err := document.Load(documentPath)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	engine := audit.NewEngine(doc, audit.Options{
		PageBackground: pageBg,
		Logger:         logger,
	})

	// A fresh scan rebuilds the groups so the key addresses current
	// document state, not a stale report.
	auditReport := engine.Scan(nil)
	if auditReport.ErrorMessage != "" {
		return fmt.Errorf("scan failed: %s", auditReport.ErrorMessage)
	}

	issue := findGroup(auditReport, groupKey)
	if issue == nil {
		return fmt.Errorf("no issue group with key %q (run 'contrastscan scan' to list groups)", groupKey)
	}

	fx := fixer.New(doc, engine.Resolver(), fixer.WithLogger(logger))
	result, err := fx.Apply(cmd.Context(), issue, newFg, newBg)
	if err != nil {
		return fmt.Errorf("failed to apply fix: %w", err)
	}

	if err := doc.Save(outputPath); err != nil {
		return fmt.Errorf("fix applied but saving the document failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Fixed group %s: %d foregrounds recolored, %d backgrounds repainted, %d skipped\nSaved %s\n",
		groupKey, result.Foregrounds, result.Backgrounds, result.Skipped, outputPath)
	return nil
}

// findGroup locates an issue group by key across failing and passing
// groups. Passing groups are addressable too: an operator may want to
// push an AA-only pair up to AAA.
func findGroup(auditReport *model.AuditReport, groupKey string) *model.ContrastIssue {
	for _, issue := range auditReport.All() {
		if issue.GroupKey() == groupKey {
			return issue
		}
	}
	return nil
}
