package document

import "github.com/a11yscan/contrastscan/internal/wcag"

// NodeKind is the closed set of node types in the scene graph.
//
// Design decision: a tagged enum with exhaustive switches rather than
// open-ended string inspection, so adding a new shape kind is a
// compile-time-checked change everywhere kinds are handled.
type NodeKind int

const (
	// KindUnknown is an unrecognized type tag in the document file.
	// Unknown nodes are never audit candidates, but their children are
	// still traversed so a new container type cannot hide content.
	KindUnknown NodeKind = iota

	// KindPage is the document root.
	KindPage

	// KindFrame is a layout container.
	KindFrame

	// KindGroup is a grouping container.
	KindGroup

	// KindComponent is a reusable component definition.
	KindComponent

	// KindInstance is an instantiated component.
	KindInstance

	// KindText is a text layer. Text nodes carry a font size and a
	// font style name.
	KindText

	// KindVector is a freeform vector shape.
	KindVector

	// KindBooleanOperation is a boolean combination of shapes.
	KindBooleanOperation

	// KindStar is a star shape.
	KindStar

	// KindLine is a line shape.
	KindLine

	// KindEllipse is an ellipse shape.
	KindEllipse

	// KindPolygon is a regular polygon shape.
	KindPolygon

	// KindRectangle is a plain rectangle shape.
	KindRectangle
)

// kindNames maps kinds to the type tags used in the document file.
var kindNames = map[NodeKind]string{
	KindPage:             "PAGE",
	KindFrame:            "FRAME",
	KindGroup:            "GROUP",
	KindComponent:        "COMPONENT",
	KindInstance:         "INSTANCE",
	KindText:             "TEXT",
	KindVector:           "VECTOR",
	KindBooleanOperation: "BOOLEAN_OPERATION",
	KindStar:             "STAR",
	KindLine:             "LINE",
	KindEllipse:          "ELLIPSE",
	KindPolygon:          "POLYGON",
	KindRectangle:        "RECTANGLE",
}

// kindByName is the inverse of kindNames, built once at init.
var kindByName = func() map[string]NodeKind {
	m := make(map[string]NodeKind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the document-file type tag for the kind.
func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseNodeKind maps a document-file type tag to a NodeKind.
// Unrecognized tags map to KindUnknown rather than failing the load.
func ParseNodeKind(name string) NodeKind {
	if k, ok := kindByName[name]; ok {
		return k
	}
	return KindUnknown
}

// IsCandidate reports whether nodes of this kind are eligible for
// contrast evaluation (text layers and vector-like shapes).
func (k NodeKind) IsCandidate() bool {
	switch k {
	case KindText, KindVector, KindBooleanOperation, KindStar,
		KindLine, KindEllipse, KindPolygon, KindRectangle:
		return true
	case KindUnknown, KindPage, KindFrame, KindGroup, KindComponent, KindInstance:
		return false
	default:
		return false
	}
}

// IsContainer reports whether nodes of this kind exist to hold
// children rather than render content themselves.
func (k NodeKind) IsContainer() bool {
	switch k {
	case KindPage, KindFrame, KindGroup, KindComponent, KindInstance:
		return true
	default:
		return false
	}
}

// PaintType is the closed set of fill paint types.
type PaintType int

const (
	// PaintUnknown is an unrecognized paint type tag.
	PaintUnknown PaintType = iota

	// PaintSolid is an opaque single-color fill. Only solid paints
	// carry a usable Color.
	PaintSolid

	// PaintGradient is a gradient fill of any flavor.
	PaintGradient

	// PaintImage is an image fill.
	PaintImage
)

// String returns the document-file paint type tag.
func (p PaintType) String() string {
	switch p {
	case PaintSolid:
		return "SOLID"
	case PaintGradient:
		return "GRADIENT"
	case PaintImage:
		return "IMAGE"
	default:
		return "UNKNOWN"
	}
}

// ParsePaintType maps a document-file paint tag to a PaintType.
// Gradient subtypes (linear, radial, angular, diamond) all map to
// PaintGradient; the audit only distinguishes solid from non-solid.
func ParsePaintType(name string) PaintType {
	switch name {
	case "SOLID":
		return PaintSolid
	case "GRADIENT", "GRADIENT_LINEAR", "GRADIENT_RADIAL", "GRADIENT_ANGULAR", "GRADIENT_DIAMOND":
		return PaintGradient
	case "IMAGE":
		return PaintImage
	default:
		return PaintUnknown
	}
}

// Paint is one entry in a node's ordered fill list.
type Paint struct {
	// Type distinguishes solid fills from gradients and images.
	Type PaintType

	// Visible is the paint's own visibility toggle, independent of
	// the node's visibility.
	Visible bool

	// Color is meaningful only for solid paints.
	Color wcag.Color
}

// Rect is an axis-aligned bounding box in absolute document space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlaps reports whether two rectangles geometrically intersect.
// Touching edges do NOT count: the comparison is strict, so two boxes
// sharing only a border line never overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Node is one entry in the scene graph.
type Node struct {
	// ID is the node's unique stable identifier.
	ID string

	// Kind is the node's type tag.
	Kind NodeKind

	// Visible is the node's visibility flag. Invisible nodes and
	// everything they contain are excluded from the audit.
	Visible bool

	// Fills is the ordered list of fill paints, bottom-most first.
	Fills []Paint

	// FontSize is the text node's font size, or nil when the size is
	// not a single determinate value (mixed across the text run).
	// Only meaningful for KindText.
	FontSize *float64

	// FontStyle is the text node's style name ("Bold", "Regular", ...).
	// Only meaningful for KindText.
	FontStyle string

	// Bounds is the resolved absolute bounding box, or nil when the
	// node is not laid out.
	Bounds *Rect

	// Parent is the owning node; nil for the page root.
	Parent *Node

	// Children are the node's children in z-order: later entries
	// render on top of earlier ones.
	Children []*Node
}

// FirstVisibleSolid returns the color of the first visible solid paint
// in paint-list order, or ok=false when the node has none. This is the
// single notion of "the node's color" used by both foreground
// extraction and background resolution.
func (n *Node) FirstVisibleSolid() (wcag.Color, bool) {
	for _, p := range n.Fills {
		if p.Visible && p.Type == PaintSolid {
			return p.Color, true
		}
	}
	return wcag.Color{}, false
}

// HasVisibleSolid reports whether the node has at least one visible
// solid fill paint.
func (n *Node) HasVisibleSolid() bool {
	_, ok := n.FirstVisibleSolid()
	return ok
}

// RecolorVisibleSolids overwrites the color of every visible solid
// paint in the node's fill list. Non-solid and invisible paints are
// left untouched. Returns the number of paints changed.
func (n *Node) RecolorVisibleSolids(c wcag.Color) int {
	changed := 0
	for i := range n.Fills {
		if n.Fills[i].Visible && n.Fills[i].Type == PaintSolid {
			n.Fills[i].Color = c
			changed++
		}
	}
	return changed
}

// RecolorFirstSolid overwrites the first solid paint's color, or
// appends a new visible solid paint when the node has no solid fill at
// all. Used by the fix path to repaint a background-providing node.
func (n *Node) RecolorFirstSolid(c wcag.Color) {
	for i := range n.Fills {
		if n.Fills[i].Type == PaintSolid {
			n.Fills[i].Color = c
			return
		}
	}
	n.Fills = append(n.Fills, Paint{Type: PaintSolid, Visible: true, Color: c})
}

// Index returns the node's position among its parent's children, or
// -1 for the root or a detached node.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, sibling := range n.Parent.Children {
		if sibling == n {
			return i
		}
	}
	return -1
}
