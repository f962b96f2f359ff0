package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/a11yscan/contrastscan/internal/config"
	"github.com/a11yscan/contrastscan/internal/database"
	"github.com/a11yscan/contrastscan/internal/model"
)

// fixtureJSON is a minimal export: a white frame holding one gray text
// label that fails the normal-text AA threshold.
const fixtureJSON = `{
  "name": "fixture",
  "document": {
    "id": "0:0",
    "type": "PAGE",
    "children": [
      {
        "id": "1:1",
        "type": "FRAME",
        "absoluteBoundingBox": {"x": 0, "y": 0, "width": 200, "height": 100},
        "fills": [{"type": "SOLID", "color": {"r": 1, "g": 1, "b": 1}}],
        "children": [
          {
            "id": "1:2",
            "type": "TEXT",
            "fontSize": 16,
            "absoluteBoundingBox": {"x": 10, "y": 10, "width": 100, "height": 20},
            "fills": [{"type": "SOLID", "color": {"r": 0.6667, "g": 0.6667, "b": 0.6667}}]
          }
        ]
      }
    ]
  }
}`

// writeFixture writes the fixture document to a temp file.
func writeFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(fixtureJSON), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestAuditStepScansDocument(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)
	step := NewAuditStep(config.DocumentConfig{})

	if step.Name() != "contrast_audit" {
		t.Errorf("Name = %q, want contrast_audit", step.Name())
	}

	report := model.NewAuditReport(path)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("audit step failed: %v", err)
	}

	if len(report.Issues) != 1 {
		t.Fatalf("expected 1 failing group, got %d", len(report.Issues))
	}
	issue := report.Issues[0]
	if issue.ForegroundHex != "#AAAAAA" || issue.BackgroundHex != "#FFFFFF" {
		t.Errorf("unexpected pair: %s on %s", issue.ForegroundHex, issue.BackgroundHex)
	}
	if issue.ElementType != "normal-text" {
		t.Errorf("ElementType = %q, want normal-text", issue.ElementType)
	}
	if report.CandidateCount != 1 {
		t.Errorf("CandidateCount = %d, want 1", report.CandidateCount)
	}
	if report.Truncated {
		t.Error("unexpected truncation")
	}
}

func TestAuditStepSelection(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)
	step := NewAuditStep(config.DocumentConfig{Selection: []string{"1:2"}})

	report := model.NewAuditReport(path)
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("audit step failed: %v", err)
	}
	if report.CandidateCount != 1 {
		t.Errorf("CandidateCount = %d, want 1", report.CandidateCount)
	}
}

func TestAuditStepMissingDocument(t *testing.T) {
	t.Parallel()

	step := NewAuditStep(config.DocumentConfig{})
	report := model.NewAuditReport(filepath.Join(t.TempDir(), "missing.json"))

	if err := step.Do(context.Background(), report); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestAuditStepInvalidPageBackground(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)
	step := NewAuditStep(config.DocumentConfig{PageBackground: "not-a-color"})

	report := model.NewAuditReport(path)
	if err := step.Do(context.Background(), report); err == nil {
		t.Error("expected error for invalid page background")
	}
}

func TestPersistStep(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	step := NewPersistStep(db)
	if step.Name() != "persist_history" {
		t.Errorf("Name = %q, want persist_history", step.Name())
	}

	report := model.NewAuditReport("cards.json")
	report.Issues = []*model.ContrastIssue{{
		ForegroundHex: "#AAAAAA",
		BackgroundHex: "#FFFFFF",
		Ratio:         2.32,
		RequiredAA:    4.5,
		ElementType:   "normal-text",
		IsText:        true,
		NodeIDs:       []string{"1:2"},
	}}
	if err := step.Do(context.Background(), report); err != nil {
		t.Fatalf("persist step failed: %v", err)
	}

	stored, err := db.GetLatestReport(context.Background(), "cards.json")
	if err != nil {
		t.Fatalf("failed to read back report: %v", err)
	}
	if stored == nil || len(stored.Issues) != 1 {
		t.Error("expected persisted report with one issue")
	}
}

func TestPersistStepSkipsFailedScan(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	report := model.NewAuditReport("broken.json")
	report.ErrorMessage = "failed to load document"

	if err := NewPersistStep(db).Do(context.Background(), report); err != nil {
		t.Fatalf("persist step failed: %v", err)
	}

	stored, err := db.GetLatestReport(context.Background(), "broken.json")
	if err != nil {
		t.Fatalf("failed to query report: %v", err)
	}
	if stored != nil {
		t.Error("failed scan should not be persisted")
	}
}
