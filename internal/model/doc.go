// Package model defines the data structures shared across the audit
// engine: grouped contrast issues, the per-document audit report, and
// the summary derived from it for human-readable output.
//
// Everything here is a derived, non-persisted aggregate: a report is
// constructed fresh on every scan and replaced wholesale by the next
// one. Stale issue objects referencing node identifiers from a prior
// scan must not be reused after a new scan completes.
package model
