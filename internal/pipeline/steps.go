package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a11yscan/contrastscan/internal/audit"
	"github.com/a11yscan/contrastscan/internal/config"
	"github.com/a11yscan/contrastscan/internal/database"
	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// AuditStep loads the document named by the report and runs the
// contrast scan over it, merging the results into the report.
//
// Design decision: loading and scanning live in one step because a
// loaded document without a scan has no standalone value, and keeping
// them together means a pipeline over N documents never holds more
// than one parsed scene graph per worker.
type AuditStep struct {
	// settings carries the merged per-document scan settings.
	settings config.DocumentConfig

	// logger for structured logging.
	logger *slog.Logger
}

// AuditStepOption configures an AuditStep.
type AuditStepOption func(*AuditStep)

// WithAuditLogger sets a custom logger for the audit step.
func WithAuditLogger(logger *slog.Logger) AuditStepOption {
	return func(s *AuditStep) {
		s.logger = logger
	}
}

// NewAuditStep creates an audit step with the given per-document
// settings.
func NewAuditStep(settings config.DocumentConfig, opts ...AuditStepOption) *AuditStep {
	s := &AuditStep{
		settings: settings,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AuditStep) Name() string {
	return "contrast_audit"
}

// Do executes the audit step.
func (s *AuditStep) Do(ctx context.Context, report *model.AuditReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := document.Load(report.DocumentPath)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	opts := audit.Options{
		MaxVisits:     s.settings.MaxVisits,
		MaxCandidates: s.settings.MaxCandidates,
		Logger:        s.logger,
	}
	if s.settings.PageBackground != "" {
		bg, ok := wcag.ParseHex(s.settings.PageBackground)
		if !ok {
			return fmt.Errorf("invalid page background %q", s.settings.PageBackground)
		}
		opts.PageBackground = &bg
	}

	scanned := audit.NewEngine(doc, opts).Scan(s.settings.Selection)

	report.DateScanned = scanned.DateScanned
	report.Issues = scanned.Issues
	report.Passed = scanned.Passed
	report.Truncated = scanned.Truncated
	report.VisitedNodes = scanned.VisitedNodes
	report.CandidateCount = scanned.CandidateCount

	return nil
}

// PersistStep saves the completed report to the history database.
type PersistStep struct {
	// db is the history database receiving the report.
	db *database.HistoryDB

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a persist step writing to the given database.
func NewPersistStep(db *database.HistoryDB, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist_history"
}

// Do executes the persist step. Reports that failed to scan are not
// persisted: a failed run carries no comparable results.
func (s *PersistStep) Do(ctx context.Context, report *model.AuditReport) error {
	if report.ErrorMessage != "" {
		s.logger.Debug("skipping persist for failed scan",
			"document", report.DocumentPath,
			"error", report.ErrorMessage,
		)
		return nil
	}

	id, err := s.db.SaveAuditReport(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to persist report: %w", err)
	}

	s.logger.Debug("report persisted",
		"document", report.DocumentPath,
		"id", id,
	)
	return nil
}
