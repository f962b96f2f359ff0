// Package resolver determines the effective background of a scene
// graph element. The document model has no explicit background
// attribute, so the background is abstracted as a deterministic,
// bounded, ancestor-then-sibling search.
//
// The search has two variants that must stay behaviorally consistent:
// one returning the identity of the background-providing node (used by
// the fix path, which repaints exactly that node) and one returning
// its color. Consistency is by construction: the color variant is
// derived from the identity variant.
package resolver

import (
	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// Search bounds. These keep resolution cheap and deterministic on
// pathological documents; exceeding a bound falls back to the page
// background rather than failing.
const (
	// MaxAncestorDepth is the maximum number of parent hops inspected
	// during the ancestor search.
	MaxAncestorDepth = 10

	// MaxSiblingScan is the maximum number of lower z-order siblings
	// inspected during the sibling search.
	MaxSiblingScan = 20
)

// Resolver finds effective background colors within one document.
type Resolver struct {
	// pageBackground is the fallback when both searches are
	// exhausted. Precedence at construction: explicit configuration,
	// then the page root's own fill, then white.
	pageBackground wcag.Color
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPageBackground overrides the fallback page background color.
// The host's true page background, when known, should be supplied
// here; white is assumed otherwise.
func WithPageBackground(c wcag.Color) Option {
	return func(r *Resolver) {
		r.pageBackground = c
	}
}

// New creates a Resolver for the given document. Without an explicit
// WithPageBackground option, the page root's first visible solid fill
// is used when present, and white when not.
func New(doc *document.Document, opts ...Option) *Resolver {
	r := &Resolver{pageBackground: wcag.White}
	if doc != nil {
		if bg, ok := doc.PageBackground(); ok {
			r.pageBackground = bg
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageBackground returns the configured fallback color.
func (r *Resolver) PageBackground() wcag.Color {
	return r.pageBackground
}

// ResolveNode returns the node that supplies the element's effective
// background, or nil when no candidate is found and the page
// background applies. This is the identity variant used by the fix
// path.
//
// Search order:
//  1. An element with no resolvable absolute bounds has no geometric
//     context: nothing wins, the page background applies.
//  2. Ancestor search: walk parent links upward from the direct
//     parent, at most MaxAncestorDepth hops, and return the first
//     ancestor carrying a visible solid fill. This models painter's
//     order fill stacking within a container; only the first visible
//     solid paint is considered, stacked partially-opaque fills are
//     not composited.
//  3. Sibling search: among the element's immediate siblings, scan
//     backward in z-order from the element's index, at most
//     MaxSiblingScan siblings. A sibling wins if it is visible, its
//     bounding box strictly overlaps the element's, and it carries a
//     visible solid fill.
func (r *Resolver) ResolveNode(el *document.Node) *document.Node {
	if el == nil || el.Bounds == nil {
		return nil
	}

	// Ancestor search.
	depth := 0
	for p := el.Parent; p != nil && depth < MaxAncestorDepth; p = p.Parent {
		depth++
		if p.HasVisibleSolid() {
			return p
		}
	}

	// Sibling search, scanning backward from just below the element.
	if el.Parent == nil {
		return nil
	}
	idx := el.Index()
	if idx < 0 {
		return nil
	}
	scanned := 0
	for i := idx - 1; i >= 0 && scanned < MaxSiblingScan; i-- {
		scanned++
		sibling := el.Parent.Children[i]
		if !sibling.Visible || sibling.Bounds == nil {
			continue
		}
		if !sibling.Bounds.Overlaps(*el.Bounds) {
			continue
		}
		if sibling.HasVisibleSolid() {
			return sibling
		}
	}
	return nil
}

// Resolve returns the element's effective background color. It is a
// total function: when ResolveNode finds no provider, the page
// background is returned, so resolution never fails.
func (r *Resolver) Resolve(el *document.Node) wcag.Color {
	provider := r.ResolveNode(el)
	if provider == nil {
		return r.pageBackground
	}
	c, ok := provider.FirstVisibleSolid()
	if !ok {
		// ResolveNode only returns nodes with a visible solid fill;
		// guard anyway so Resolve stays total.
		return r.pageBackground
	}
	return c
}
