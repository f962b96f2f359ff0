// Package document models the layered scene graph of a design
// document and provides the host-document boundary of the audit
// engine: loading a serialized document, looking nodes up by their
// stable identifiers, and writing corrected fill paints back.
//
// The node graph is a finite rooted tree reachable from a Page root.
// Each node has at most one parent; children are ordered by z-order
// (later entries render on top). The engine never assumes the tree is
// well formed beyond what Load validates: traversal limits elsewhere
// protect against adversarial or huge documents.
package document
