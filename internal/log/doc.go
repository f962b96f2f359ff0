// Package log provides the logging setup for contrastscan, built on
// top of the standard slog package.
//
// Audit scans routinely log document fragments: node fill lists,
// selection identifier sets, grouped issue payloads. A single debug
// line carrying a serialized subtree can make verbose output
// unreadable. The TruncatingHandler caps oversized string attributes
// before they reach the underlying handler, so verbose mode stays
// usable on large documents.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Debug("selection resolved",
//	    "roots", hugeIDList, // truncated past the cap
//	)
//	slog.SetDefault(logger)
package log
