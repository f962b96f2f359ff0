// Package collector walks selected subtrees of a document, identifies
// audit candidates (text layers and vector-like shapes), and pairs
// each candidate's foreground color with its resolved background.
//
// The walk is synchronous and bounded: a pathological or adversarial
// document cannot make it run unbounded work, because shared visit and
// candidate caps abort the traversal and truncate the result set
// instead of failing.
package collector

import (
	"log/slog"

	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/resolver"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// Default traversal limits. Exceeding either truncates the result set;
// it is never an error.
const (
	// DefaultMaxVisits caps the number of nodes touched per Collect
	// call, shared across all selected subtrees.
	DefaultMaxVisits = 5000

	// DefaultMaxCandidates caps the number of candidates yielded per
	// Collect call.
	DefaultMaxCandidates = 2000
)

// Candidate is one element eligible for contrast evaluation, with its
// effective colors and WCAG category already attached.
type Candidate struct {
	// Node is the audited element.
	Node *document.Node

	// Foreground is the element's first visible solid fill color.
	Foreground wcag.Color

	// Background is the element's resolved effective background.
	Background wcag.Color

	// Category carries the thresholds the element must meet.
	Category wcag.Category
}

// Stats describes how far a traversal got.
type Stats struct {
	// Visited is the number of nodes touched, counting invisible
	// nodes (the counter increments before the visibility check).
	Visited int

	// Collected is the number of candidates yielded.
	Collected int

	// Truncated reports that a limit aborted the walk and remaining
	// subtrees were abandoned. Already-collected candidates are kept.
	Truncated bool
}

// Collector drives the candidate walk for one document snapshot.
type Collector struct {
	resolver      *resolver.Resolver
	maxVisits     int
	maxCandidates int
	logger        *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithMaxVisits overrides the visit cap. Non-positive values keep the
// default.
func WithMaxVisits(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxVisits = n
		}
	}
}

// WithMaxCandidates overrides the candidate cap. Non-positive values
// keep the default.
func WithMaxCandidates(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxCandidates = n
		}
	}
}

// WithLogger sets a custom logger for traversal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// New creates a Collector using the given background resolver.
func New(res *resolver.Resolver, opts ...Option) *Collector {
	c := &Collector{
		resolver:      res,
		maxVisits:     DefaultMaxVisits,
		maxCandidates: DefaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// walkState is the explicit traversal context threaded through the
// recursive walk. The counters span the whole Collect call, not one
// subtree, so multiple concurrent scans never interfere: each call
// owns its own state.
type walkState struct {
	visited    int
	candidates []Candidate
	truncated  bool
}

// Collect walks each selected root depth-first and returns one
// candidate per text or vector-like element that carries a visible
// solid fill. Candidates appear in traversal order.
//
// Once either the visit cap or the candidate cap is reached the walk
// aborts immediately: the current and all remaining subtrees are
// abandoned and Stats.Truncated is set.
func (c *Collector) Collect(roots []*document.Node) ([]Candidate, Stats) {
	state := &walkState{}
	for _, root := range roots {
		if state.truncated {
			break
		}
		c.walk(root, state)
	}

	stats := Stats{
		Visited:   state.visited,
		Collected: len(state.candidates),
		Truncated: state.truncated,
	}
	if stats.Truncated {
		c.logger.Warn("traversal truncated, results may be incomplete",
			"visited", stats.Visited,
			"collected", stats.Collected,
		)
	}
	return state.candidates, stats
}

// walk visits one node and, unless the node is a collected candidate,
// its children in z-order.
func (c *Collector) walk(n *document.Node, state *walkState) {
	if n == nil || state.truncated {
		return
	}

	// Limits are checked on entry, so truncation fires only when a
	// node beyond the cap actually exists: a walk that lands exactly
	// on a cap with nothing left is complete, not truncated.
	if len(state.candidates) >= c.maxCandidates || state.visited >= c.maxVisits {
		state.truncated = true
		return
	}

	// The visit counts even when the node turns out to be invisible.
	state.visited++

	// An invisible node and everything it contains is skipped.
	if !n.Visible {
		return
	}

	if n.Kind.IsCandidate() {
		// A candidate with no visible solid fill contributes no
		// contrast data and is skipped, children included.
		fg, ok := n.FirstVisibleSolid()
		if !ok {
			return
		}
		state.candidates = append(state.candidates, Candidate{
			Node:       n,
			Foreground: fg,
			Background: c.resolver.Resolve(n),
			Category:   c.classify(n),
		})
		return
	}

	// Containers (and unknown kinds) are not candidates themselves;
	// their children are traversed in z-order.
	for _, child := range n.Children {
		if state.truncated {
			return
		}
		c.walk(child, state)
	}
}

// classify maps a candidate node to its WCAG category.
func (c *Collector) classify(n *document.Node) wcag.Category {
	if n.Kind == document.KindText {
		return wcag.Classify(true, n.FontSize, n.FontStyle)
	}
	return wcag.Classify(false, nil, "")
}
