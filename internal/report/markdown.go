package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/a11yscan/contrastscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := model.NewSummary(report)

	w.writeHeader(md, report)
	w.writeSummary(md, summary)
	w.writeGroups(md, "Failing Groups", report.Issues)
	w.writeGroups(md, "Passing Groups", report.Passed)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Contrast Audit Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Document", "`" + summary.DocumentPath + "`"},
			{"Scan Date", summary.DateScanned.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
	w.writeSummary(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AuditReport) {
	md.H1("Contrast Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Document", "`" + report.DocumentPath + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Nodes Visited", strconv.Itoa(report.VisitedNodes)},
			{"Elements Audited", strconv.Itoa(report.CandidateCount)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.AuditReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.Truncated {
		return "⚠️ Truncated (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the group count summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	worst := "-"
	if summary.WorstRatio > 0 {
		worst = fmt.Sprintf("%.2f", summary.WorstRatio)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"🔴 Failing groups", strconv.Itoa(summary.FailingGroups)},
			{"🟢 Passing groups", strconv.Itoa(summary.PassingGroups)},
			{"Failing elements", strconv.Itoa(summary.FailingElements)},
			{"AAA shortfalls", strconv.Itoa(summary.AAAShortfalls)},
			{"Worst ratio", worst},
		},
	})
	md.PlainText("")

	if summary.FailingGroups > 0 || summary.PassingGroups > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of group conformance.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Color-Pair Group Conformance"),
		piechart.WithShowData(true),
	)

	if summary.FailingGroups > 0 {
		chart.LabelAndIntValue("Failing AA", uint64(summary.FailingGroups))
	}
	if summary.AAAShortfalls > 0 {
		chart.LabelAndIntValue("AA only", uint64(summary.AAAShortfalls))
	}
	if fullPass := summary.PassingGroups - summary.AAAShortfalls; fullPass > 0 {
		chart.LabelAndIntValue("Passing", uint64(fullPass))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the summary.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.FailingGroups > 0:
		md.Cautionf(
			"Contrast failures detected! %d color pairing(s) covering %d element(s) fall below their AA threshold.",
			summary.FailingGroups,
			summary.FailingElements,
		)
	case summary.AAAShortfalls > 0:
		md.Importantf(
			"All groups meet AA, but %d group(s) fall short of the enhanced AAA tier.",
			summary.AAAShortfalls,
		)
	default:
		md.Tip("Every audited color pairing meets its AA threshold.")
	}
	if summary.Truncated {
		md.Warning("Results may be incomplete: a traversal limit was reached during the scan.")
	}
	md.PlainText("")
}

// writeGroups writes one table of color-pair groups.
func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, title string, groups []*model.ContrastIssue) {
	md.H2(title)
	md.PlainText("")

	if len(groups) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(groups))
	for i, g := range groups {
		aaa := "-"
		if g.RequiredAAA != nil {
			status := "❌"
			if g.PassAAA != nil && *g.PassAAA {
				status = "✅"
			}
			aaa = fmt.Sprintf("%s %.1f", status, *g.RequiredAAA)
		}

		rows[i] = []string{
			"`" + g.ForegroundHex + "`",
			"`" + g.BackgroundHex + "`",
			g.ElementType,
			fmt.Sprintf("%.2f", g.Ratio),
			fmt.Sprintf("%.1f", g.RequiredAA),
			aaa,
			strconv.Itoa(len(g.NodeIDs)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Foreground", "Background", "Type", "Ratio", "AA", "AAA", "Elements"},
		Rows:   rows,
	})
	md.PlainText("")

	// Node listings go behind a details fold so large groups don't
	// dominate the document.
	for _, g := range groups {
		if len(g.NodeIDs) > 0 {
			label := fmt.Sprintf("%s on %s nodes", g.ForegroundHex, g.BackgroundHex)
			md.Details(label, truncateString(strings.Join(g.NodeIDs, ", "), 2000))
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [contrastscan](https://github.com/a11yscan/contrastscan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
