package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/a11yscan/contrastscan/internal/wcag"
)

// jsonNode is the on-disk shape of a node in a document export.
// Visibility flags are pointers because an omitted flag means visible,
// which a plain bool cannot express.
type jsonNode struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Visible   *bool       `json:"visible,omitempty"`
	Fills     []jsonPaint `json:"fills,omitempty"`
	FontSize  *float64    `json:"fontSize,omitempty"`
	FontStyle string      `json:"fontStyle,omitempty"`
	Bounds    *Rect       `json:"absoluteBoundingBox,omitempty"`
	Children  []jsonNode  `json:"children,omitempty"`
}

// jsonPaint is the on-disk shape of a fill paint.
type jsonPaint struct {
	Type    string     `json:"type"`
	Visible *bool      `json:"visible,omitempty"`
	Color   *jsonColor `json:"color,omitempty"`
}

// jsonColor matches the export's 0..1 channel encoding.
type jsonColor struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// jsonDocument is the top-level shape of a document export file.
type jsonDocument struct {
	Name string    `json:"name,omitempty"`
	Root *jsonNode `json:"document"`
}

// Load reads a document export file and builds the linked, indexed
// scene graph.
func Load(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided document path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes a document export from r and builds the scene graph.
func Parse(r io.Reader) (*Document, error) {
	var jd jsonDocument
	if err := json.NewDecoder(r).Decode(&jd); err != nil {
		return nil, fmt.Errorf("failed to decode document JSON: %w", err)
	}
	if jd.Root == nil {
		return nil, ErrNoRoot
	}
	doc, err := New(fromJSONNode(jd.Root))
	if err != nil {
		return nil, err
	}
	doc.Name = jd.Name
	return doc, nil
}

// fromJSONNode converts the on-disk node shape to the runtime tree.
func fromJSONNode(jn *jsonNode) *Node {
	n := &Node{
		ID:        jn.ID,
		Kind:      ParseNodeKind(jn.Type),
		Visible:   jn.Visible == nil || *jn.Visible,
		FontSize:  jn.FontSize,
		FontStyle: jn.FontStyle,
		Bounds:    jn.Bounds,
	}
	if len(jn.Fills) > 0 {
		n.Fills = make([]Paint, 0, len(jn.Fills))
		for _, jp := range jn.Fills {
			p := Paint{
				Type:    ParsePaintType(jp.Type),
				Visible: jp.Visible == nil || *jp.Visible,
			}
			if jp.Color != nil {
				p.Color = wcag.Color{R: jp.Color.R, G: jp.Color.G, B: jp.Color.B}
			}
			n.Fills = append(n.Fills, p)
		}
	}
	if len(jn.Children) > 0 {
		n.Children = make([]*Node, 0, len(jn.Children))
		for i := range jn.Children {
			n.Children = append(n.Children, fromJSONNode(&jn.Children[i]))
		}
	}
	return n
}

// toJSONNode converts a runtime node back to the on-disk shape.
// Visibility flags are only emitted when false, keeping saved files
// close to the original export.
func toJSONNode(n *Node) jsonNode {
	jn := jsonNode{
		ID:        n.ID,
		Type:      n.Kind.String(),
		FontSize:  n.FontSize,
		FontStyle: n.FontStyle,
		Bounds:    n.Bounds,
	}
	if !n.Visible {
		v := false
		jn.Visible = &v
	}
	for _, p := range n.Fills {
		jp := jsonPaint{Type: p.Type.String()}
		if !p.Visible {
			v := false
			jp.Visible = &v
		}
		if p.Type == PaintSolid {
			jp.Color = &jsonColor{R: p.Color.R, G: p.Color.G, B: p.Color.B}
		}
		jn.Fills = append(jn.Fills, jp)
	}
	for _, child := range n.Children {
		jn.Children = append(jn.Children, toJSONNode(child))
	}
	return jn
}

// Save writes the document back to path as indented JSON, creating
// parent directories as needed. Used by the fix path to persist
// corrected fills.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // user-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create document file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	root := toJSONNode(d.Root)
	if err := enc.Encode(jsonDocument{Name: d.Name, Root: &root}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
