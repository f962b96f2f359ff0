package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/a11yscan/contrastscan/internal/database"
	"github.com/a11yscan/contrastscan/internal/model"
)

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare [document.json]" {
			t.Errorf("expected use 'compare [document.json]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has list flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list")
		if flag == nil {
			t.Fatal("expected list flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has list-documents flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-documents")
		if flag == nil {
			t.Fatal("expected list-documents flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("has with-scan-id flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("with-scan-id")
		if flag == nil {
			t.Fatal("expected with-scan-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has since flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("since")
		if flag == nil {
			t.Fatal("expected since flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// reportWithIssues builds an audit report carrying the given failing
// color pairs.
func reportWithIssues(documentPath string, scanned time.Time, pairs ...[2]string) *model.AuditReport {
	r := model.NewAuditReport(documentPath)
	r.DateScanned = scanned
	for _, pair := range pairs {
		r.Issues = append(r.Issues, &model.ContrastIssue{
			ForegroundHex: pair[0],
			BackgroundHex: pair[1],
			Ratio:         2.0,
			RequiredAA:    4.5,
			PassAA:        false,
			ElementType:   "normal-text",
			IsText:        true,
			NodeIDs:       []string{"1:2", "1:3"},
		})
	}
	return r
}

// TestCompareReports tests the group-key diff between two reports.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("detects new and resolved groups", func(t *testing.T) {
		t.Parallel()

		previous := reportWithIssues("page.json", now.Add(-time.Hour),
			[2]string{"#AAAAAA", "#FFFFFF"},
			[2]string{"#777777", "#888888"},
		)
		current := reportWithIssues("page.json", now,
			[2]string{"#AAAAAA", "#FFFFFF"},
			[2]string{"#123456", "#FFFFFF"},
		)

		result := compareReports(previous, current)

		if len(result.NewGroups) != 1 {
			t.Fatalf("expected 1 new group, got %d", len(result.NewGroups))
		}
		if result.NewGroups[0].ForegroundHex != "#123456" {
			t.Errorf("unexpected new group: %s", result.NewGroups[0].GroupKey())
		}
		if len(result.ResolvedGroups) != 1 {
			t.Fatalf("expected 1 resolved group, got %d", len(result.ResolvedGroups))
		}
		if result.ResolvedGroups[0].ForegroundHex != "#777777" {
			t.Errorf("unexpected resolved group: %s", result.ResolvedGroups[0].GroupKey())
		}
		if result.UnchangedCount != 1 {
			t.Errorf("expected 1 unchanged group, got %d", result.UnchangedCount)
		}
	})

	t.Run("clean current scan resolves everything", func(t *testing.T) {
		t.Parallel()

		previous := reportWithIssues("page.json", now.Add(-time.Hour),
			[2]string{"#AAAAAA", "#FFFFFF"},
		)
		current := reportWithIssues("page.json", now)

		result := compareReports(previous, current)

		if len(result.ResolvedGroups) != 1 {
			t.Errorf("expected 1 resolved group, got %d", len(result.ResolvedGroups))
		}
		if result.Change.Direction != directionImproved {
			t.Errorf("expected direction %q, got %q", directionImproved, result.Change.Direction)
		}
	})
}

// TestCalculateChange tests the conformance direction calculation.
func TestCalculateChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		previous      ScanMetadata
		current       ScanMetadata
		wantDirection string
	}{
		{
			name:          "fewer failing elements improves",
			previous:      ScanMetadata{FailingGroups: 2, FailingElements: 10},
			current:       ScanMetadata{FailingGroups: 2, FailingElements: 4},
			wantDirection: directionImproved,
		},
		{
			name:          "more failing elements worsens",
			previous:      ScanMetadata{FailingGroups: 1, FailingElements: 2},
			current:       ScanMetadata{FailingGroups: 1, FailingElements: 6},
			wantDirection: directionWorsened,
		},
		{
			name:          "same failures split across more groups worsens",
			previous:      ScanMetadata{FailingGroups: 1, FailingElements: 4},
			current:       ScanMetadata{FailingGroups: 3, FailingElements: 4},
			wantDirection: directionWorsened,
		},
		{
			name:          "identical scans are unchanged",
			previous:      ScanMetadata{FailingGroups: 2, FailingElements: 5},
			current:       ScanMetadata{FailingGroups: 2, FailingElements: 5},
			wantDirection: directionUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			change := calculateChange(tt.previous, tt.current)
			if change.Direction != tt.wantDirection {
				t.Errorf("direction = %q, want %q", change.Direction, tt.wantDirection)
			}
		})
	}
}

// TestSelectPreviousScan tests baseline selection from history metadata.
func TestSelectPreviousScan(t *testing.T) {
	t.Parallel()

	now := time.Now()
	history := []database.ReportMetadata{
		{ID: 30, Timestamp: now},
		{ID: 20, Timestamp: now.Add(-24 * time.Hour)},
		{ID: 10, Timestamp: now.Add(-48 * time.Hour)},
	}

	t.Run("defaults to second-latest scan", func(t *testing.T) {
		t.Parallel()
		id, err := selectPreviousScan(history, 0, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 20 {
			t.Errorf("expected ID 20, got %d", id)
		}
	})

	t.Run("explicit scan ID wins", func(t *testing.T) {
		t.Parallel()
		id, err := selectPreviousScan(history, 10, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 10 {
			t.Errorf("expected ID 10, got %d", id)
		}
	})

	t.Run("since picks the oldest matching scan", func(t *testing.T) {
		t.Parallel()
		since := now.Add(-30 * time.Hour).Format("2006-01-02")
		id, err := selectPreviousScan(history, 0, since)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != 20 {
			t.Errorf("expected ID 20, got %d", id)
		}
	})

	t.Run("since rejects invalid dates", func(t *testing.T) {
		t.Parallel()
		if _, err := selectPreviousScan(history, 0, "not-a-date"); err == nil {
			t.Error("expected error for invalid date")
		}
	})

	t.Run("since with no matching scan fails", func(t *testing.T) {
		t.Parallel()
		if _, err := selectPreviousScan(history, 0, "2999-01-01"); err == nil {
			t.Error("expected error when no scan matches")
		}
	})

	t.Run("since matching only the latest scan fails", func(t *testing.T) {
		t.Parallel()
		since := now.Add(-time.Hour).Format("2006-01-02")
		onlyLatest := []database.ReportMetadata{
			{ID: 30, Timestamp: now},
			{ID: 20, Timestamp: now.Add(-72 * time.Hour)},
		}
		if _, err := selectPreviousScan(onlyLatest, 0, since); err == nil {
			t.Error("expected error when only the latest scan matches")
		}
	})
}

// TestFormatResultSummary tests history row formatting.
func TestFormatResultSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta database.ReportMetadata
		want string
	}{
		{
			name: "clean scan",
			meta: database.ReportMetadata{},
			want: noFailuresMessage,
		},
		{
			name: "clean but truncated",
			meta: database.ReportMetadata{Truncated: true},
			want: noFailuresMessage + " (truncated)",
		},
		{
			name: "failing scan",
			meta: database.ReportMetadata{FailingGroups: 2, FailingElements: 7, PassingGroups: 3},
			want: "F:2 groups (7 elements) P:3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatResultSummary(tt.meta); got != tt.want {
				t.Errorf("formatResultSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFormatDelta tests delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{delta: 3, want: "+3"},
		{delta: -2, want: "-2"},
		{delta: 0, want: "0"},
	}

	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// TestFormatDirection tests direction formatting.
func TestFormatDirection(t *testing.T) {
	t.Parallel()

	if got := formatDirection(directionImproved); !strings.Contains(got, "IMPROVED") {
		t.Errorf("expected IMPROVED, got %q", got)
	}
	if got := formatDirection(directionWorsened); !strings.Contains(got, "WORSENED") {
		t.Errorf("expected WORSENED, got %q", got)
	}
	if got := formatDirection("anything else"); got != "UNCHANGED" {
		t.Errorf("expected UNCHANGED, got %q", got)
	}
}

// captureStdout runs fn while capturing standard output.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	if fnErr != nil {
		t.Fatalf("unexpected error: %v", fnErr)
	}
	return buf.String()
}

// TestOutputComparisonText tests the text renderer.
// Not parallel: it captures os.Stdout.
func TestOutputComparisonText(t *testing.T) {
	result := &ComparisonResult{
		DocumentPath: "page.json",
		PreviousScan: ScanMetadata{FailingGroups: 2, FailingElements: 5, WorstRatio: 1.8},
		CurrentScan:  ScanMetadata{FailingGroups: 1, FailingElements: 2, WorstRatio: 2.3},
		NewGroups: []*model.ContrastIssue{
			{ForegroundHex: "#123456", BackgroundHex: "#FFFFFF", ElementType: "normal-text", Ratio: 2.3, NodeIDs: []string{"1:9"}},
		},
		ResolvedGroups: []*model.ContrastIssue{
			{ForegroundHex: "#777777", BackgroundHex: "#888888", ElementType: "ui-component", Ratio: 1.8, NodeIDs: []string{"1:4"}},
		},
		UnchangedCount: 1,
		Change:         ConformanceChange{Direction: directionImproved, FailingGroupsDelta: -1, FailingElementsDelta: -3},
	}

	output := captureStdout(t, func() error {
		return outputComparisonText(result)
	})

	for _, want := range []string{
		"Scan Comparison: page.json",
		"IMPROVED",
		"New Failing Groups (1)",
		"#123456",
		"Resolved Groups (1)",
		"#777777",
		"Unchanged: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

// TestOutputComparisonJSON tests the JSON renderer.
// Not parallel: it captures os.Stdout.
func TestOutputComparisonJSON(t *testing.T) {
	result := &ComparisonResult{
		DocumentPath:   "page.json",
		UnchangedCount: 2,
		Change:         ConformanceChange{Direction: directionUnchanged},
	}

	output := captureStdout(t, func() error {
		return outputComparisonJSON(result)
	})

	var parsed ComparisonResult
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.DocumentPath != "page.json" {
		t.Errorf("expected document path 'page.json', got %q", parsed.DocumentPath)
	}
	if parsed.UnchangedCount != 2 {
		t.Errorf("expected unchanged count 2, got %d", parsed.UnchangedCount)
	}
}

// TestRunComparisonIntegration exercises comparison against a real
// history database.
// Not parallel: it captures os.Stdout.
func TestRunComparisonIntegration(t *testing.T) {
	dbDir := t.TempDir()
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	first := reportWithIssues("page.json", now.Add(-time.Hour),
		[2]string{"#AAAAAA", "#FFFFFF"},
		[2]string{"#777777", "#888888"},
	)
	second := reportWithIssues("page.json", now,
		[2]string{"#AAAAAA", "#FFFFFF"},
	)

	if _, err := db.SaveAuditReport(ctx, first); err != nil {
		t.Fatalf("failed to save first report: %v", err)
	}
	if _, err := db.SaveAuditReport(ctx, second); err != nil {
		t.Fatalf("failed to save second report: %v", err)
	}

	output := captureStdout(t, func() error {
		return runComparison(ctx, db, "page.json", 0, "", false)
	})

	if !strings.Contains(output, "IMPROVED") {
		t.Errorf("expected improved comparison, got:\n%s", output)
	}
	if !strings.Contains(output, "Resolved Groups (1)") {
		t.Errorf("expected one resolved group, got:\n%s", output)
	}
}
