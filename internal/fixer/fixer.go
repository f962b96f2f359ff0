// Package fixer applies bulk color corrections to every element of a
// grouped contrast issue. It is the one potentially-suspending part of
// the system: each node lookup may suspend while the host resolves a
// stable identifier to a live node handle.
package fixer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/resolver"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// ErrNoReplacement is returned when a fix request carries neither a
// replacement foreground nor a replacement background.
var ErrNoReplacement = errors.New("fix request has no replacement color")

// DefaultConcurrency bounds the number of in-flight per-node
// operations. The operations are logically independent (each touches
// only its own node and its own background provider), so no ordering
// is guaranteed between different node identifiers.
const DefaultConcurrency = 8

// Fixer applies corrections against one document using the same
// resolver the scan used, so the background fix repaints exactly the
// node the scan considered authoritative.
type Fixer struct {
	doc         *document.Document
	resolver    *resolver.Resolver
	concurrency int
	logger      *slog.Logger
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithConcurrency bounds concurrent per-node operations. Non-positive
// values keep the default.
func WithConcurrency(n int) Option {
	return func(f *Fixer) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fixer) {
		f.logger = logger
	}
}

// New creates a Fixer for the given document and resolver.
func New(doc *document.Document, res *resolver.Resolver, opts ...Option) *Fixer {
	f := &Fixer{
		doc:         doc,
		resolver:    res,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Result summarizes a bulk fix. Per-node failures are not surfaced
// individually; nodes that disappeared between scan and fix, or whose
// background provider cannot be found, are counted as skipped.
type Result struct {
	// Foregrounds is the number of nodes whose fills were recolored.
	Foregrounds int

	// Backgrounds is the number of background providers repainted.
	Backgrounds int

	// Skipped is the number of node identifiers that could not be
	// applied at all.
	Skipped int
}

// Apply overwrites colors across every contributing node of an issue.
//
// For each node identifier: if newFg is set, the color of every
// visible solid paint in the node's fill list is overwritten
// (non-solid and invisible paints untouched); if newBg is set, the
// resolver's identity variant finds the authoritative
// background-providing node and that node's first solid paint is
// overwritten (or created when none exists).
//
// This is best effort: a stale identifier or missing provider skips
// that node silently. All per-node tasks complete (or are skipped)
// before Apply returns, which is the aggregate "fix applied"
// acknowledgment. Context cancellation is the only error.
func (f *Fixer) Apply(ctx context.Context, issue *model.ContrastIssue, newFg, newBg *wcag.Color) (Result, error) {
	if newFg == nil && newBg == nil {
		return Result{}, ErrNoReplacement
	}

	var foregrounds, backgrounds, skipped atomic.Int64

	// All fill mutations are serialized under one mutex. Two nodes in a
	// group can resolve to the same background provider, and a group
	// member can itself be another member's provider (a fg==bg group
	// always has this shape), so a foreground recolor and a provider
	// repaint may target the same node from different tasks.
	var fillMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, nodeID := range issue.NodeIDs {
		g.Go(func() error {
			node, err := f.doc.LookupNode(ctx, nodeID)
			if err != nil {
				if errors.Is(err, document.ErrNodeNotFound) {
					// The node disappeared between scan and fix.
					f.logger.Debug("fix skipped stale node", "node_id", nodeID)
					skipped.Add(1)
					return nil
				}
				return err
			}

			applied := false
			if newFg != nil {
				fillMu.Lock()
				recolored := node.RecolorVisibleSolids(*newFg)
				fillMu.Unlock()
				if recolored > 0 {
					foregrounds.Add(1)
					applied = true
				}
			}
			if newBg != nil {
				if provider := f.resolver.ResolveNode(node); provider != nil {
					fillMu.Lock()
					provider.RecolorFirstSolid(*newBg)
					fillMu.Unlock()
					backgrounds.Add(1)
					applied = true
				} else {
					f.logger.Debug("fix found no background provider", "node_id", nodeID)
				}
			}
			if !applied {
				skipped.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{
		Foregrounds: int(foregrounds.Load()),
		Backgrounds: int(backgrounds.Load()),
		Skipped:     int(skipped.Load()),
	}
	f.logger.Info("fix applied",
		"group", issue.GroupKey(),
		"foregrounds", result.Foregrounds,
		"backgrounds", result.Backgrounds,
		"skipped", result.Skipped,
	)
	return result, nil
}
