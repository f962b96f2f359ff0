package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11yscan/contrastscan/internal/config"
	"github.com/a11yscan/contrastscan/internal/database"
	"github.com/a11yscan/contrastscan/internal/model"
)

// Constants for conformance direction and summary messages.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
	noFailuresMessage  = "No failures"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the
// history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [document.json]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the history database and shows:
- Issue groups that appeared since the last scan
- Issue groups that were resolved and no longer fail
- The change in failing group and element counts

The comparison requires at least two scans in the database for the
specified document. Use 'contrastscan scan' to perform scans.

Examples:
  # Compare the latest two scans of a document
  contrastscan compare landing-page.json

  # List all scan history for a document
  contrastscan compare --list landing-page.json

  # Compare with a specific historical scan by ID
  contrastscan compare --with-scan-id 5 landing-page.json

  # Compare with the first scan after a date
  contrastscan compare --since "2026-01-01" landing-page.json

  # Output comparison in JSON format
  contrastscan compare --json landing-page.json

  # List all documents with scan history
  contrastscan compare --list-documents`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified document")
	cmd.Flags().BoolP("list-documents", "L", false,
		"List all documents with scan history in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	// Database location
	cmd.Flags().String("db-dir", "",
		"Directory holding the history database (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listDocuments, err := cmd.Flags().GetBool("list-documents")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a bad
	// invocation never touches the lock.
	var documentPath string
	if !listDocuments {
		if len(args) == 0 {
			return errors.New("document path is required (use --list-documents to see available documents)")
		}
		documentPath = args[0]
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	cfg := config.NewConfig()
	cfg.DatabaseDir = dbDir

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DataDir(), opts)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if listDocuments {
		return listScannedDocuments(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, documentPath)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, documentPath, withScanID, sinceDate, jsonOutput)
}

// listScannedDocuments lists all documents that have scan records.
func listScannedDocuments(ctx context.Context, db *database.HistoryDB) error {
	documents, err := db.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(documents) == 0 {
		fmt.Println("No scanned documents found in the database.")
		fmt.Println("\nUse 'contrastscan scan <document.json>' to audit a document.")
		return nil
	}

	fmt.Printf("Scanned documents (%d):\n\n", len(documents))
	for _, doc := range documents {
		fmt.Printf("  • %s\n", doc)
	}
	fmt.Println("\nUse 'contrastscan compare --list <document>' to see scan history for a document.")

	return nil
}

// listScanHistory lists all scan records for a specific document.
func listScanHistory(ctx context.Context, db *database.HistoryDB, documentPath string) error {
	history, err := db.GetReportHistory(ctx, documentPath)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		fmt.Printf("No scan history found for %s\n", documentPath)
		fmt.Println("\nUse 'contrastscan scan' to audit this document.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", documentPath, len(history))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "Date", "Result")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range history {
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatResultSummary(meta),
		)
	}

	fmt.Println("\nUse 'contrastscan compare <document>' to compare the latest two scans.")
	fmt.Println("Use 'contrastscan compare --with-scan-id <id> <document>' to compare with a specific scan.")

	return nil
}

// formatResultSummary formats one history row into a short string.
func formatResultSummary(meta database.ReportMetadata) string {
	if meta.FailingGroups == 0 {
		if meta.Truncated {
			return noFailuresMessage + " (truncated)"
		}
		return noFailuresMessage
	}

	s := fmt.Sprintf("F:%d groups (%d elements) P:%d",
		meta.FailingGroups, meta.FailingElements, meta.PassingGroups)
	if meta.Truncated {
		s += " (truncated)"
	}
	return s
}

// runComparison performs the actual comparison between audit reports.
func runComparison(ctx context.Context, db *database.HistoryDB, documentPath string, withScanID int64, sinceDate string, jsonOutput bool) error {
	history, err := db.GetReportHistory(ctx, documentPath)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		return fmt.Errorf("no scan history found for %s", documentPath)
	}

	if len(history) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(history))
	}

	// The latest scan is always the current one.
	currentReport, err := db.GetReportByID(ctx, history[0].ID)
	if err != nil {
		return fmt.Errorf("failed to load latest scan: %w", err)
	}
	if currentReport == nil {
		return fmt.Errorf("latest scan (ID %d) disappeared from the database", history[0].ID)
	}

	previousID, err := selectPreviousScan(history, withScanID, sinceDate)
	if err != nil {
		return err
	}

	previousReport, err := db.GetReportByID(ctx, previousID)
	if err != nil {
		return fmt.Errorf("failed to load scan with ID %d: %w", previousID, err)
	}
	if previousReport == nil {
		return fmt.Errorf("scan with ID %d not found", previousID)
	}
	if previousReport.DocumentPath != documentPath {
		return fmt.Errorf("scan ID %d belongs to %s, not %s", previousID, previousReport.DocumentPath, documentPath)
	}

	comparison := compareReports(previousReport, currentReport)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// selectPreviousScan picks the baseline scan ID from the history
// metadata, which is ordered newest first.
func selectPreviousScan(history []database.ReportMetadata, withScanID int64, sinceDate string) (int64, error) {
	if withScanID > 0 {
		return withScanID, nil
	}

	if sinceDate != "" {
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return 0, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Iterate oldest first to find the earliest scan at or after
		// the date.
		for i := len(history) - 1; i >= 0; i-- {
			meta := history[i]
			if meta.Timestamp.After(parsedDate) || meta.Timestamp.Equal(parsedDate) {
				if meta.ID == history[0].ID {
					return 0, fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
				}
				return meta.ID, nil
			}
		}
		return 0, fmt.Errorf("no scans found since %s", sinceDate)
	}

	// Default: compare with the scan just before the latest.
	return history[1].ID, nil
}

// ComparisonResult holds the result of comparing two audit reports.
type ComparisonResult struct {
	// DocumentPath is the compared document.
	DocumentPath string `json:"document_path"`

	// PreviousScan contains metadata about the baseline scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the latest scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// NewGroups are issue groups failing now but not in the baseline.
	NewGroups []*model.ContrastIssue `json:"new_groups,omitempty"`

	// ResolvedGroups were failing in the baseline but pass or vanished.
	ResolvedGroups []*model.ContrastIssue `json:"resolved_groups,omitempty"`

	// UnchangedCount is the number of groups failing in both scans.
	UnchangedCount int `json:"unchanged_count"`

	// Change describes the overall conformance movement.
	Change ConformanceChange `json:"change"`
}

// ScanMetadata contains metadata about one scan for comparison display.
type ScanMetadata struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// FailingGroups is the number of color-pair groups failing AA.
	FailingGroups int `json:"failing_groups"`

	// PassingGroups is the number of groups meeting AA.
	PassingGroups int `json:"passing_groups"`

	// FailingElements is the number of elements inside failing groups.
	FailingElements int `json:"failing_elements"`

	// WorstRatio is the lowest contrast ratio among failing groups.
	WorstRatio float64 `json:"worst_ratio,omitempty"`
}

// ConformanceChange describes the movement between two scans.
type ConformanceChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// FailingGroupsDelta is the change in failing group count.
	FailingGroupsDelta int `json:"failing_groups_delta"`

	// FailingElementsDelta is the change in failing element count.
	FailingElementsDelta int `json:"failing_elements_delta"`
}

// compareReports compares two audit reports by issue group key.
func compareReports(previous, current *model.AuditReport) *ComparisonResult {
	result := &ComparisonResult{
		DocumentPath: current.DocumentPath,
		PreviousScan: scanMetadata(previous),
		CurrentScan:  scanMetadata(current),
	}

	previousGroups := make(map[string]*model.ContrastIssue, len(previous.Issues))
	for _, issue := range previous.Issues {
		previousGroups[issue.GroupKey()] = issue
	}
	currentGroups := make(map[string]*model.ContrastIssue, len(current.Issues))
	for _, issue := range current.Issues {
		currentGroups[issue.GroupKey()] = issue
	}

	// Preserve report order so the output is deterministic.
	for _, issue := range current.Issues {
		if _, exists := previousGroups[issue.GroupKey()]; !exists {
			result.NewGroups = append(result.NewGroups, issue)
		} else {
			result.UnchangedCount++
		}
	}
	for _, issue := range previous.Issues {
		if _, exists := currentGroups[issue.GroupKey()]; !exists {
			result.ResolvedGroups = append(result.ResolvedGroups, issue)
		}
	}

	result.Change = calculateChange(result.PreviousScan, result.CurrentScan)
	return result
}

// scanMetadata condenses one report for comparison display.
func scanMetadata(r *model.AuditReport) ScanMetadata {
	summary := model.NewSummary(r)
	return ScanMetadata{
		DateScanned:     r.DateScanned,
		FailingGroups:   summary.FailingGroups,
		PassingGroups:   summary.PassingGroups,
		FailingElements: summary.FailingElements,
		WorstRatio:      summary.WorstRatio,
	}
}

// calculateChange computes the conformance movement between two scans.
// Failing elements decide the direction; group count breaks ties, so
// splitting one failure across more color pairs still reads as a
// regression.
func calculateChange(previous, current ScanMetadata) ConformanceChange {
	change := ConformanceChange{
		FailingGroupsDelta:   current.FailingGroups - previous.FailingGroups,
		FailingElementsDelta: current.FailingElements - previous.FailingElements,
	}

	previousScore := previous.FailingElements*10 + previous.FailingGroups
	currentScore := current.FailingElements*10 + current.FailingGroups

	switch {
	case currentScore < previousScore:
		change.Direction = directionImproved
	case currentScore > previousScore:
		change.Direction = directionWorsened
	default:
		change.Direction = directionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable
// text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.DocumentPath)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nConformance: %s\n", formatDirection(result.Change.Direction))

	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	fmt.Println("\nSummary:")
	fmt.Printf("  %-18s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 53))
	fmt.Printf("  %-18s  %-10d  %-10d  %-10s\n", "Failing groups",
		result.PreviousScan.FailingGroups, result.CurrentScan.FailingGroups,
		formatDelta(result.Change.FailingGroupsDelta))
	fmt.Printf("  %-18s  %-10d  %-10d  %-10s\n", "Failing elements",
		result.PreviousScan.FailingElements, result.CurrentScan.FailingElements,
		formatDelta(result.Change.FailingElementsDelta))
	fmt.Printf("  %-18s  %-10d  %-10d  %-10s\n", "Passing groups",
		result.PreviousScan.PassingGroups, result.CurrentScan.PassingGroups,
		formatDelta(result.CurrentScan.PassingGroups-result.PreviousScan.PassingGroups))
	if result.PreviousScan.WorstRatio > 0 || result.CurrentScan.WorstRatio > 0 {
		fmt.Printf("  %-18s  %-10.2f  %-10.2f\n", "Worst ratio",
			result.PreviousScan.WorstRatio, result.CurrentScan.WorstRatio)
	}

	if len(result.NewGroups) > 0 {
		fmt.Printf("\nNew Failing Groups (%d):\n", len(result.NewGroups))
		for _, issue := range result.NewGroups {
			fmt.Printf("  [+] %s on %s (%s): ratio %.2f, %d elements\n",
				issue.ForegroundHex, issue.BackgroundHex, issue.ElementType,
				issue.Ratio, len(issue.NodeIDs))
		}
	}

	if len(result.ResolvedGroups) > 0 {
		fmt.Printf("\nResolved Groups (%d):\n", len(result.ResolvedGroups))
		for _, issue := range result.ResolvedGroups {
			fmt.Printf("  [-] %s on %s (%s): was ratio %.2f, %d elements\n",
				issue.ForegroundHex, issue.BackgroundHex, issue.ElementType,
				issue.Ratio, len(issue.NodeIDs))
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d failing groups\n", result.UnchangedCount)
	}

	return nil
}

// formatDirection formats the conformance direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (fewer failures)"
	case directionWorsened:
		return "WORSENED (more failures)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
