package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/a11yscan/contrastscan/internal/audit"
	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/fixer"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// Server serves one document's audit engine over HTTP. It holds at
// most one scan result at a time; scan replaces it, cancel discards it.
type Server struct {
	engine *audit.Engine
	fixer  *fixer.Fixer
	logger *slog.Logger

	// savePath, when set, persists the document after each successful
	// fix so corrections survive the process.
	savePath string

	// mu guards result. The engine itself is stateless per scan, but
	// the held result is shared between handlers.
	mu     sync.Mutex
	result *model.AuditReport
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSavePath persists the document to path after each applied fix.
func WithSavePath(path string) Option {
	return func(s *Server) {
		s.savePath = path
	}
}

// New creates a Server over the given document.
func New(doc *document.Document, engineOpts audit.Options, opts ...Option) *Server {
	engine := audit.NewEngine(doc, engineOpts)

	s := &Server{
		engine: engine,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.fixer = fixer.New(doc, engine.Resolver(), fixer.WithLogger(s.logger))
	return s
}

// Handler returns the HTTP handler implementing the message contract.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", s.handleScan)
		r.Get("/result", s.handleResult)
		r.Post("/fix", s.handleFix)
		r.Post("/cancel", s.handleCancel)
	})

	return r
}

// scanRequest is the optional scan payload.
type scanRequest struct {
	// Selection restricts the scan to the subtrees rooted at these
	// node identifiers. Empty means the whole page.
	Selection []string `json:"selection,omitempty"`
}

// scanResult is the scan-result wire payload.
type scanResult struct {
	Issues    []*model.ContrastIssue `json:"issues"`
	Passed    []*model.ContrastIssue `json:"passed"`
	All       []*model.ContrastIssue `json:"all"`
	Truncated bool                   `json:"truncated"`
}

// newScanResult builds the wire payload from a report.
func newScanResult(report *model.AuditReport) scanResult {
	return scanResult{
		Issues:    report.Issues,
		Passed:    report.Passed,
		All:       report.All(),
		Truncated: report.Truncated,
	}
}

// handleScan runs a scan and replaces the held result.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid scan request body")
		return
	}

	report := s.engine.Scan(req.Selection)

	s.mu.Lock()
	s.result = report
	s.mu.Unlock()

	s.logger.Debug("scan served",
		"failing_groups", len(report.Issues),
		"passing_groups", len(report.Passed),
		"truncated", report.Truncated,
	)
	writeJSON(w, http.StatusOK, newScanResult(report))
}

// handleResult returns the held scan result.
func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	result := s.result
	s.mu.Unlock()

	if result == nil {
		writeError(w, http.StatusNotFound, "no scan result held; run a scan first")
		return
	}
	writeJSON(w, http.StatusOK, newScanResult(result))
}

// fixRequest is the apply-fix wire payload. Replacement colors are
// nullable: a nil hex leaves that side untouched.
type fixRequest struct {
	Issue    *model.ContrastIssue `json:"issue"`
	NewFgHex *string              `json:"new_fg_hex"`
	NewBgHex *string              `json:"new_bg_hex"`
}

// fixApplied is the fix-applied wire payload.
type fixApplied struct {
	Foregrounds int `json:"foregrounds"`
	Backgrounds int `json:"backgrounds"`
	Skipped     int `json:"skipped"`
}

// handleFix applies a bulk color correction to an issue group. A fix
// is only accepted while a scan result is held and the posted issue's
// group is part of it: after cancel, before any scan, or once a newer
// scan replaced the groups, the request addresses an issue set the
// server no longer holds.
func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	var req fixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid fix request body")
		return
	}
	if req.Issue == nil {
		writeError(w, http.StatusBadRequest, "fix request carries no issue")
		return
	}

	s.mu.Lock()
	held := s.result
	s.mu.Unlock()
	if held == nil {
		writeError(w, http.StatusConflict, "no scan result held; issue groups from a prior scan cannot be fixed")
		return
	}
	if !holdsGroup(held, req.Issue.GroupKey()) {
		writeError(w, http.StatusConflict, "issue group not in the held scan result; rescan before fixing")
		return
	}

	newFg, ok := parseOptionalHex(req.NewFgHex)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid replacement foreground color")
		return
	}
	newBg, ok := parseOptionalHex(req.NewBgHex)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid replacement background color")
		return
	}

	result, err := s.fixer.Apply(r.Context(), req.Issue, newFg, newBg)
	if err != nil {
		if errors.Is(err, fixer.ErrNoReplacement) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.savePath != "" {
		if err := s.engine.Document().Save(s.savePath); err != nil {
			writeError(w, http.StatusInternalServerError, "fix applied but saving the document failed: "+err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, fixApplied{
		Foregrounds: result.Foregrounds,
		Backgrounds: result.Backgrounds,
		Skipped:     result.Skipped,
	})
}

// handleCancel discards the held scan result.
func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()

	s.logger.Debug("scan result invalidated")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// holdsGroup reports whether a report contains an issue group with the
// given key, failing or passing.
func holdsGroup(report *model.AuditReport, key string) bool {
	for _, issue := range report.All() {
		if issue.GroupKey() == key {
			return true
		}
	}
	return false
}

// parseOptionalHex parses a nullable hex color. A nil pointer is a
// valid "leave unchanged" value; a present but malformed hex is not.
func parseOptionalHex(hex *string) (*wcag.Color, bool) {
	if hex == nil {
		return nil, true
	}
	c, ok := wcag.ParseHex(*hex)
	if !ok {
		return nil, false
	}
	return &c, true
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}

// writeError writes a JSON error payload. Failures never cross this
// boundary as anything but data.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
