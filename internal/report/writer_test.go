package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a11yscan/contrastscan/internal/model"
)

// sampleReport builds a report with one failing and one passing group.
func sampleReport() *model.AuditReport {
	aaa := 7.0
	failAAA := false
	passAAA := true

	report := model.NewAuditReport("designs/cards.json")
	report.DateScanned = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	report.VisitedNodes = 42
	report.CandidateCount = 7
	report.Issues = []*model.ContrastIssue{
		{
			ForegroundHex: "#AAAAAA",
			BackgroundHex: "#FFFFFF",
			Ratio:         2.32,
			RequiredAA:    4.5,
			RequiredAAA:   &aaa,
			PassAA:        false,
			PassAAA:       &failAAA,
			ElementType:   "normal-text",
			IsText:        true,
			NodeIDs:       []string{"1:2", "1:3", "1:4"},
		},
	}
	report.Passed = []*model.ContrastIssue{
		{
			ForegroundHex: "#000000",
			BackgroundHex: "#FFFFFF",
			Ratio:         21,
			RequiredAA:    4.5,
			RequiredAAA:   &aaa,
			PassAA:        true,
			PassAAA:       &passAAA,
			ElementType:   "normal-text",
			IsText:        true,
			NodeIDs:       []string{"1:9"},
		},
	}
	return report
}

func TestSimpleWriterWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := NewSimpleWriter(&buf)

	n, err := writer.Write(sampleReport())
	if err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"CONTRAST AUDIT REPORT",
		"designs/cards.json",
		"Status:         Complete",
		"FAILING GROUPS:   1",
		"PASSING GROUPS:   1",
		"FAILING ELEMENTS: 3",
		"WORST RATIO:      2.32",
		"[!] #AAAAAA on #FFFFFF (normal-text)",
		"Ratio: 2.32 (AA requires 4.5)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Passing groups and node listings are opt-in.
	if strings.Contains(out, "[+]") {
		t.Error("passing groups listed without WithShowPassing")
	}
	if strings.Contains(out, "Nodes: 1:2") {
		t.Error("node listing present without WithVerbose")
	}
}

func TestSimpleWriterOptions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := NewSimpleWriter(&buf, WithShowPassing(true), WithVerbose(true))

	if _, err := writer.Write(sampleReport()); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[+] #000000 on #FFFFFF") {
		t.Error("expected passing group listing")
	}
	if !strings.Contains(out, "Nodes: 1:2, 1:3, 1:4") {
		t.Error("expected verbose node listing")
	}
}

func TestSimpleWriterStatusLines(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*model.AuditReport)
		want   string
	}{
		{
			name:   "truncated scan",
			mutate: func(r *model.AuditReport) { r.Truncated = true },
			want:   "TRUNCATED (partial results)",
		},
		{
			name:   "failed scan",
			mutate: func(r *model.AuditReport) { r.ErrorMessage = "document not found" },
			want:   "ERROR - document not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			report := sampleReport()
			tc.mutate(report)

			var buf bytes.Buffer
			if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
				t.Fatalf("failed to write report: %v", err)
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Errorf("output missing %q", tc.want)
			}
		})
	}
}

func TestSimpleWriterWriteSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := NewSimpleWriter(&buf)

	if _, err := writer.WriteSummary(model.NewSummary(sampleReport())); err != nil {
		t.Fatalf("failed to write summary: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "designs/cards.json") {
		t.Error("summary missing document path")
	}
	if !strings.Contains(out, "FAILING GROUPS:   1") {
		t.Error("summary missing failing group count")
	}
	if strings.Contains(out, "CONTRAST AUDIT REPORT") {
		t.Error("summary should not include the full report header")
	}
}

func TestJSONWriterWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := NewJSONWriter(&buf)

	if _, err := writer.Write(sampleReport()); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	var decoded model.AuditReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.DocumentPath != "designs/cards.json" {
		t.Errorf("DocumentPath = %q, want designs/cards.json", decoded.DocumentPath)
	}
	if len(decoded.Issues) != 1 || decoded.Issues[0].ForegroundHex != "#AAAAAA" {
		t.Errorf("unexpected issues round trip: %+v", decoded.Issues)
	}

	// Compact output stays on one line (plus the trailing newline).
	if strings.Count(buf.String(), "\n") != 1 {
		t.Error("expected compact single-line JSON")
	}
}

func TestJSONWriterPrettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := NewJSONWriter(&buf, WithPrettyPrint())

	if _, err := writer.Write(sampleReport()); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  \"") {
		t.Error("expected indented JSON output")
	}
}

func TestFullJSONWriterWrapsMetadata(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := NewFullJSONWriter(&buf, "1.2.3")

	if _, err := writer.Write(sampleReport()); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	var wrapped JSONReport
	if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if wrapped.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", wrapped.Version)
	}
	if wrapped.Report == nil || wrapped.Report.DocumentPath != "designs/cards.json" {
		t.Error("wrapped report missing or wrong")
	}
	if wrapped.Summary == nil || wrapped.Summary.FailingGroups != 1 {
		t.Error("wrapped summary missing or wrong")
	}
}

func TestMarkdownWriterWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := NewMarkdownWriter(&buf)

	n, err := writer.Write(sampleReport())
	if err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	if n == 0 {
		t.Error("expected nonzero byte count")
	}

	out := buf.String()
	for _, want := range []string{
		"# Contrast Audit Report",
		"## Summary",
		"## Failing Groups",
		"## Passing Groups",
		"`#AAAAAA`",
		"2.32",
		"CAUTION",
		"pie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownWriterCleanReport(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	report.Issues = nil

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "TIP") {
		t.Error("expected tip alert for a clean report")
	}
	if strings.Contains(out, "CAUTION") {
		t.Error("unexpected caution alert for a clean report")
	}
}

func TestMarkdownWriterTruncatedWarning(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	report.Truncated = true

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}

	if !strings.Contains(buf.String(), "WARNING") {
		t.Error("expected warning alert for truncated results")
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonOut bytes.Buffer
	multi := NewMultiWriter(
		NewSimpleWriter(&text),
		NewJSONWriter(&jsonOut),
	)

	n, err := multi.Write(sampleReport())
	if err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	if n != text.Len()+jsonOut.Len() {
		t.Errorf("total = %d, want %d", n, text.Len()+jsonOut.Len())
	}
	if text.Len() == 0 || jsonOut.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "1:2", maxLen: 10, want: "1:2"},
		{name: "long string truncated", input: "abcdefghij", maxLen: 8, want: "abcde..."},
		{name: "tiny limit hard cut", input: "abcdefghij", maxLen: 2, want: "ab"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tc.input, tc.maxLen); got != tc.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}
