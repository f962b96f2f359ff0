package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/a11yscan/contrastscan/internal/wcag"
)

// Default configuration values.
// The traversal caps mirror the engine's protection against
// pathological documents: exceeding a cap truncates the result set
// rather than failing, and the operator is told results may be
// incomplete.
const (
	// DefaultMaxVisits caps the number of nodes touched per scan.
	// 5000 nodes covers realistic pages while bounding worst-case
	// traversal cost on adversarial or generated documents.
	DefaultMaxVisits = 5000

	// DefaultMaxCandidates caps the number of audited elements per
	// scan. 2000 candidates is far beyond what an operator can review
	// in one pass; anything larger only slows the scan down.
	DefaultMaxCandidates = 2000

	// DefaultPageBackground is assumed when neither the config file
	// nor the document supplies a page background. White matches the
	// default canvas of the design tools the export format comes from.
	DefaultPageBackground = "#FFFFFF"

	// DefaultBatchSize is the number of documents scanned
	// concurrently when multiple files are given. Scans are CPU-bound
	// and short; a small limit keeps memory in check on large batches.
	DefaultBatchSize = 4

	// DefaultServeAddr is the listen address of the serve command.
	// Loopback only: the serve boundary is a local panel protocol,
	// not a public API.
	DefaultServeAddr = "127.0.0.1:8675"

	// AppName is the application name used for XDG directory paths.
	AppName = "contrastscan"
)

// Config holds all options for a contrastscan run. It is populated
// from CLI flags and the optional config file, then passed through the
// application via dependency injection.
//
// Design decision: a single flat struct instead of nested sub-configs.
// The number of options is manageable, and nesting would add
// complexity without benefit.
type Config struct {
	// DocumentPaths are the document export files to audit.
	DocumentPaths []string

	// Selection restricts the audit to the subtrees rooted at these
	// node identifiers. Empty means the whole page.
	Selection []string

	// PageBackground is the fallback background hex color. Empty
	// defers to the document's own page fill, then
	// DefaultPageBackground.
	PageBackground string

	// MaxVisits caps nodes touched per scan.
	MaxVisits int

	// MaxCandidates caps audited elements per scan.
	MaxCandidates int

	// BatchSize is the number of concurrent document scans.
	BatchSize int

	// Verbose enables slog.LevelDebug output. When false, only
	// warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is an explicit config file path. If empty, the
	// tool searches for .contrastscan in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// File holds settings loaded from the config file, if any.
	File *File

	// JSONReport selects JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	MarkdownReport bool

	// OutputPath writes the report to a file instead of stdout.
	OutputPath string

	// NoHistory disables persisting scan results to the history
	// database.
	NoHistory bool

	// DatabaseDir is the directory holding the history database.
	// Empty uses the XDG data directory.
	DatabaseDir string

	// ServeAddr is the listen address for the serve command.
	ServeAddr string
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		MaxVisits:     DefaultMaxVisits,
		MaxCandidates: DefaultMaxCandidates,
		BatchSize:     DefaultBatchSize,
		ServeAddr:     DefaultServeAddr,
	}
}

// Validate checks the configuration for contradictions. It returns
// sentinel errors so callers can use errors.Is.
func (c *Config) Validate() error {
	if len(c.DocumentPaths) == 0 {
		return ErrNoDocument
	}
	if c.MaxVisits <= 0 || c.MaxCandidates <= 0 {
		return ErrInvalidLimit
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.PageBackground != "" {
		if _, ok := wcag.ParseHex(c.PageBackground); !ok {
			return ErrInvalidPageBackground
		}
	}
	return nil
}

// DocumentSettings returns the merged per-document settings for path,
// combining CLI flags with the config file. Flags win over the file;
// the file's per-document section wins over its defaults.
func (c *Config) DocumentSettings(path string) DocumentConfig {
	var merged DocumentConfig
	if c.File != nil {
		merged = c.File.ForDocument(path)
	}
	if c.PageBackground != "" {
		merged.PageBackground = c.PageBackground
	}
	if len(c.Selection) > 0 {
		merged.Selection = c.Selection
	}
	if merged.MaxVisits == 0 {
		merged.MaxVisits = c.MaxVisits
	}
	if merged.MaxCandidates == 0 {
		merged.MaxCandidates = c.MaxCandidates
	}
	return merged
}

// DataDir returns the directory for the history database, creating
// nothing: callers decide when to create it.
func (c *Config) DataDir() string {
	if c.DatabaseDir != "" {
		return c.DatabaseDir
	}
	return filepath.Join(xdg.DataHome, AppName)
}
