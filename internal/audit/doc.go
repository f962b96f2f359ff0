// Package audit classifies collected contrast tuples against their
// WCAG thresholds and aggregates them into grouped issue records. The
// Engine ties the collector and the builder into one synchronous scan
// over a document snapshot.
package audit
