package config

import "errors"

// Configuration validation errors.
//
// Design decision: package-level sentinel errors rather than error
// instances created inside Validate(), so callers can use errors.Is()
// for programmatic handling while keeping human-readable messages.
var (
	// ErrNoDocument is returned when no document file is specified.
	ErrNoDocument = errors.New("no document specified: provide a document export file")

	// ErrInvalidLimit is returned when a traversal cap is not
	// positive. A cap of zero would make every scan empty.
	ErrInvalidLimit = errors.New("invalid traversal limit: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not
	// positive. A batch size of zero would scan nothing.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidPageBackground is returned when the page background
	// override is not a 6-digit hex color.
	ErrInvalidPageBackground = errors.New("invalid page background: must be a #RRGGBB hex color")
)
