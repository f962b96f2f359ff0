package audit

import (
	"log/slog"

	"github.com/a11yscan/contrastscan/internal/collector"
	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/resolver"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// Engine runs contrast scans over one document. A scan is synchronous
// and non-suspending: it is a pure function of the current document
// snapshot, with no mutable state shared between calls beyond the
// per-call traversal counters inside the collector.
type Engine struct {
	doc       *document.Document
	resolver  *resolver.Resolver
	collector *collector.Collector
	logger    *slog.Logger
}

// Options configures an Engine.
type Options struct {
	// PageBackground overrides the fallback page background. Nil
	// defers to the document's own page fill, then white.
	PageBackground *wcag.Color

	// MaxVisits caps nodes touched per scan; zero keeps the default.
	MaxVisits int

	// MaxCandidates caps candidates per scan; zero keeps the default.
	MaxCandidates int

	// Logger for scan diagnostics; nil uses slog.Default.
	Logger *slog.Logger
}

// NewEngine creates an Engine for the given document.
func NewEngine(doc *document.Document, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var resolverOpts []resolver.Option
	if opts.PageBackground != nil {
		resolverOpts = append(resolverOpts, resolver.WithPageBackground(*opts.PageBackground))
	}
	res := resolver.New(doc, resolverOpts...)

	return &Engine{
		doc:      doc,
		resolver: res,
		collector: collector.New(res,
			collector.WithMaxVisits(opts.MaxVisits),
			collector.WithMaxCandidates(opts.MaxCandidates),
			collector.WithLogger(logger),
		),
		logger: logger,
	}
}

// Resolver exposes the engine's background resolver. The fix path uses
// the identity variant so that fixes repaint exactly the node the scan
// considered authoritative.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}

// Document returns the audited document.
func (e *Engine) Document() *document.Document {
	return e.doc
}

// Scan audits the subtrees rooted at the given selection (node
// identifiers; empty means the whole page) and returns a fresh report.
// The report replaces any previous one: issue records from an earlier
// scan must not be reused afterwards.
func (e *Engine) Scan(selection []string) *model.AuditReport {
	report := model.NewAuditReport(e.doc.Path)

	roots := e.doc.SelectionRoots(selection)
	candidates, stats := e.collector.Collect(roots)

	report.Issues, report.Passed = BuildIssues(candidates)
	report.Truncated = stats.Truncated
	report.VisitedNodes = stats.Visited
	report.CandidateCount = stats.Collected

	e.logger.Debug("scan complete",
		"document", e.doc.Path,
		"visited", stats.Visited,
		"candidates", stats.Collected,
		"failing_groups", len(report.Issues),
		"passing_groups", len(report.Passed),
		"truncated", stats.Truncated,
	)
	return report
}
