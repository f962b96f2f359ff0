package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/a11yscan/contrastscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and a pass/fail marker per color-pair group.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showPassing controls whether passing groups are listed in full.
	showPassing bool

	// verbose enables the per-group node ID listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowPassing configures the writer to list passing groups.
func WithShowPassing(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPassing = show
	}
}

// WithVerbose enables verbose output with per-group node listings.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		showPassing: false,
		verbose:     false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.AuditReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCounts(&sb, model.NewSummary(report))
	w.writeIssues(&sb, report)
	if w.showPassing {
		w.writePassed(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs the condensed summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Document:  %s\n", summary.DocumentPath))
	sb.WriteString(fmt.Sprintf("Scanned:   %s\n", summary.DateScanned.Format("2006-01-02 15:04:05 MST")))
	w.writeCounts(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      CONTRAST AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Document:       %s\n", report.DocumentPath))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Nodes Visited:  %d\n", report.VisitedNodes))
	sb.WriteString(fmt.Sprintf("Elements:       %d\n", report.CandidateCount))

	switch {
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.ErrorMessage))
	case report.Truncated:
		sb.WriteString("Status:         TRUNCATED (partial results)\n")
	default:
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeCounts writes the group count summary section.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  FAILING GROUPS:   %d\n", summary.FailingGroups))
	sb.WriteString(fmt.Sprintf("  PASSING GROUPS:   %d\n", summary.PassingGroups))
	sb.WriteString(fmt.Sprintf("  FAILING ELEMENTS: %d\n", summary.FailingElements))
	sb.WriteString(fmt.Sprintf("  AAA SHORTFALLS:   %d\n", summary.AAAShortfalls))
	if summary.WorstRatio > 0 {
		sb.WriteString(fmt.Sprintf("  WORST RATIO:      %.2f\n", summary.WorstRatio))
	}
	if summary.Truncated {
		sb.WriteString("\n  Results may be incomplete: a traversal limit was reached.\n")
	}
	sb.WriteString("\n")
}

// writeIssues writes the failing color-pair groups.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILING GROUPS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Issues) == 0 {
		sb.WriteString("  No contrast failures detected\n\n")
		return
	}

	for _, issue := range report.Issues {
		w.writeGroup(sb, issue, "!")
	}
}

// writePassed writes the passing color-pair groups.
func (w *SimpleWriter) writePassed(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PASSING GROUPS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Passed) == 0 {
		sb.WriteString("  No passing groups\n\n")
		return
	}

	for _, group := range report.Passed {
		w.writeGroup(sb, group, "+")
	}
}

// writeGroup writes one color-pair group with its conformance detail.
func (w *SimpleWriter) writeGroup(sb *strings.Builder, issue *model.ContrastIssue, marker string) {
	sb.WriteString(fmt.Sprintf("  [%s] %s on %s (%s)\n", marker, issue.ForegroundHex, issue.BackgroundHex, issue.ElementType))
	sb.WriteString(fmt.Sprintf("      Ratio: %.2f (AA requires %.1f)\n", issue.Ratio, issue.RequiredAA))
	if issue.RequiredAAA != nil {
		aaaStatus := "fail"
		if issue.PassAAA != nil && *issue.PassAAA {
			aaaStatus = "pass"
		}
		sb.WriteString(fmt.Sprintf("      AAA:   %s (requires %.1f)\n", aaaStatus, *issue.RequiredAAA))
	}
	sb.WriteString(fmt.Sprintf("      Elements: %d\n", len(issue.NodeIDs)))
	if w.verbose && len(issue.NodeIDs) > 0 {
		sb.WriteString(fmt.Sprintf("      Nodes: %s\n", strings.Join(issue.NodeIDs, ", ")))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by contrastscan\n")
	sb.WriteString("https://github.com/a11yscan/contrastscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
