// Package server exposes the audit engine over HTTP for an interactive
// panel. It implements the scan / scan-result / apply-fix / fix-applied
// / cancel message contract: a scan produces a held result, the panel
// reads or fixes against it, and cancel invalidates it so stale issue
// groups from a prior scan are never reused.
//
// Design decision: the server binds to loopback by default and carries
// no authentication. It is a local presentation-layer boundary, not a
// public API; anything reaching it already has the operator's files.
package server
