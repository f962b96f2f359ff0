package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/a11yscan/contrastscan/internal/wcag"
)

// Sentinel errors for document operations.
var (
	// ErrNodeNotFound is returned when a node identifier does not
	// resolve to a live node. The fix path treats this as a silent
	// per-node skip: the node disappeared between scan and fix.
	ErrNodeNotFound = errors.New("node not found in document")

	// ErrDuplicateNodeID is returned when a document file contains
	// two nodes with the same identifier. The node index requires
	// identifiers to be unique.
	ErrDuplicateNodeID = errors.New("duplicate node identifier in document")

	// ErrNoRoot is returned when a document file has no root node.
	ErrNoRoot = errors.New("document has no root node")
)

// Document is a loaded scene graph plus the index needed to resolve
// stable node identifiers back to live nodes.
type Document struct {
	// Root is the page root of the node tree.
	Root *Node

	// Name is the document's display name from the export file, if any.
	// Save re-emits it so a fix run does not strip it.
	Name string

	// Path is the file the document was loaded from, if any.
	Path string

	// index maps node identifiers to nodes for the fix path.
	index map[string]*Node
}

// New builds a Document around an already-constructed node tree,
// linking parent pointers and indexing nodes by identifier.
// It returns ErrDuplicateNodeID if two nodes share an identifier and
// ErrNoRoot if root is nil.
func New(root *Node) (*Document, error) {
	if root == nil {
		return nil, ErrNoRoot
	}
	d := &Document{
		Root:  root,
		index: make(map[string]*Node),
	}
	if err := d.link(root, nil); err != nil {
		return nil, err
	}
	return d, nil
}

// link sets parent pointers and fills the identifier index.
func (d *Document) link(n *Node, parent *Node) error {
	n.Parent = parent
	if n.ID != "" {
		if _, exists := d.index[n.ID]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
		}
		d.index[n.ID] = n
	}
	for _, child := range n.Children {
		if err := d.link(child, n); err != nil {
			return err
		}
	}
	return nil
}

// NodeByID returns the node with the given identifier, or nil when the
// identifier is unknown. This is the synchronous convenience used
// inside a scan, where the document snapshot cannot change underfoot.
func (d *Document) NodeByID(id string) *Node {
	return d.index[id]
}

// LookupNode resolves a stable node identifier to a live node handle.
//
// This is the host-provider boundary of the fix path: the lookup may
// suspend in a real host, so it takes a context and returns an error.
// The in-memory implementation only honors cancellation and reports
// ErrNodeNotFound for stale identifiers.
func (d *Document) LookupNode(ctx context.Context, id string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return n, nil
}

// NodeCount returns the number of indexed nodes.
func (d *Document) NodeCount() int {
	return len(d.index)
}

// SelectionRoots maps a list of selected node identifiers to live
// nodes, preserving order and silently dropping unknown identifiers.
// With no identifiers, the selection defaults to the page root: the
// whole document is audited.
func (d *Document) SelectionRoots(ids []string) []*Node {
	if len(ids) == 0 {
		return []*Node{d.Root}
	}
	roots := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n := d.index[id]; n != nil {
			roots = append(roots, n)
		}
	}
	return roots
}

// PageBackground returns the page root's own background color when the
// root carries a visible solid fill. ok=false means the document
// supplies no page background and the caller falls back to its
// configured default.
func (d *Document) PageBackground() (wcag.Color, bool) {
	if d.Root == nil {
		return wcag.Color{}, false
	}
	return d.Root.FirstVisibleSolid()
}
