package fixer

import (
	"context"
	"errors"
	"testing"

	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/model"
	"github.com/a11yscan/contrastscan/internal/resolver"
	"github.com/a11yscan/contrastscan/internal/wcag"
)

// fixture builds a card with two labels over a shared background
// rectangle, plus a gradient-only decoration.
func fixture(t *testing.T) (*document.Document, *Fixer) {
	t.Helper()

	gray := mustParse(t, "#888888")
	card := mustParse(t, "#F0F0F0")

	root := &document.Node{
		ID: "page", Kind: document.KindPage, Visible: true,
		Children: []*document.Node{{
			ID: "frame", Kind: document.KindFrame, Visible: true,
			Children: []*document.Node{
				{
					ID: "card", Kind: document.KindRectangle, Visible: true,
					Bounds: &document.Rect{X: 0, Y: 0, Width: 200, Height: 100},
					Fills:  []document.Paint{{Type: document.PaintSolid, Visible: true, Color: card}},
				},
				{
					ID: "label-1", Kind: document.KindText, Visible: true,
					Bounds: &document.Rect{X: 10, Y: 10, Width: 80, Height: 16},
					Fills: []document.Paint{
						{Type: document.PaintSolid, Visible: true, Color: gray},
						{Type: document.PaintSolid, Visible: false, Color: gray},
					},
				},
				{
					ID: "label-2", Kind: document.KindText, Visible: true,
					Bounds: &document.Rect{X: 10, Y: 40, Width: 80, Height: 16},
					Fills:  []document.Paint{{Type: document.PaintSolid, Visible: true, Color: gray}},
				},
			},
		}},
	}
	doc, err := document.New(root)
	if err != nil {
		t.Fatalf("document.New error = %v", err)
	}
	return doc, New(doc, resolver.New(doc))
}

// issueFor builds a grouped issue referencing the given nodes.
func issueFor(nodeIDs ...string) *model.ContrastIssue {
	return &model.ContrastIssue{
		ForegroundHex: "#888888",
		BackgroundHex: "#F0F0F0",
		IsText:        true,
		NodeIDs:       nodeIDs,
	}
}

// TestApplyForegroundOnly tests that a fg-only fix recolors every
// visible solid paint of each member and never touches the background
// provider.
func TestApplyForegroundOnly(t *testing.T) {
	t.Parallel()

	doc, f := fixture(t)
	newFg := mustParse(t, "#111111")
	cardBefore, _ := doc.NodeByID("card").FirstVisibleSolid()

	result, err := f.Apply(context.Background(), issueFor("label-1", "label-2"), &newFg, nil)
	if err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	if result.Foregrounds != 2 || result.Backgrounds != 0 || result.Skipped != 0 {
		t.Errorf("result = %+v, expected 2 foregrounds only", result)
	}

	for _, id := range []string{"label-1", "label-2"} {
		if c, _ := doc.NodeByID(id).FirstVisibleSolid(); c != newFg {
			t.Errorf("%s foreground = %v, expected %v", id, c.Hex(), newFg.Hex())
		}
	}

	// The invisible solid paint on label-1 is untouched.
	if got := doc.NodeByID("label-1").Fills[1].Color; got == newFg {
		t.Error("invisible paint must not be recolored")
	}

	// Background provider untouched by a fg-only fix.
	if cardAfter, _ := doc.NodeByID("card").FirstVisibleSolid(); cardAfter != cardBefore {
		t.Error("background provider was modified by a fg-only fix")
	}
}

// TestApplyBackground tests that a bg fix repaints the node the
// resolver's identity variant names, once per member.
func TestApplyBackground(t *testing.T) {
	t.Parallel()

	doc, f := fixture(t)
	newBg := mustParse(t, "#222244")

	result, err := f.Apply(context.Background(), issueFor("label-1", "label-2"), nil, &newBg)
	if err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	// Both labels resolve to the same card; it is repainted twice with
	// the same color, which is idempotent.
	if result.Backgrounds != 2 {
		t.Errorf("Backgrounds = %d, expected 2", result.Backgrounds)
	}
	if c, _ := doc.NodeByID("card").FirstVisibleSolid(); c != newBg {
		t.Errorf("card fill = %v, expected %v", c.Hex(), newBg.Hex())
	}
	// Labels keep their own fills.
	if c, _ := doc.NodeByID("label-1").FirstVisibleSolid(); c.Hex() != "#888888" {
		t.Error("fg changed by a bg-only fix")
	}
}

// TestApplySelfProvidingGroup tests a group where one member is
// another member's background provider, the shape every fg==bg group
// has. The member's foreground recolor and the provider repaint then
// target the same node from different tasks; run with -race this
// verifies both mutations are serialized.
func TestApplySelfProvidingGroup(t *testing.T) {
	t.Parallel()

	gray := mustParse(t, "#777777")
	root := &document.Node{
		ID: "page", Kind: document.KindPage, Visible: true,
		Children: []*document.Node{{
			// No fill on the frame, so rect-b's background resolves to
			// its sibling rect-a rather than an ancestor.
			ID: "frame", Kind: document.KindFrame, Visible: true,
			Children: []*document.Node{
				{
					ID: "rect-a", Kind: document.KindRectangle, Visible: true,
					Bounds: &document.Rect{X: 0, Y: 0, Width: 200, Height: 100},
					Fills:  []document.Paint{{Type: document.PaintSolid, Visible: true, Color: gray}},
				},
				{
					ID: "rect-b", Kind: document.KindRectangle, Visible: true,
					Bounds: &document.Rect{X: 20, Y: 20, Width: 80, Height: 40},
					Fills:  []document.Paint{{Type: document.PaintSolid, Visible: true, Color: gray}},
				},
			},
		}},
	}
	doc, err := document.New(root)
	if err != nil {
		t.Fatalf("document.New error = %v", err)
	}
	f := New(doc, resolver.New(doc))

	issue := &model.ContrastIssue{
		ForegroundHex: "#777777",
		BackgroundHex: "#777777",
		NodeIDs:       []string{"rect-a", "rect-b"},
	}
	newFg := mustParse(t, "#111111")
	newBg := mustParse(t, "#EEEEEE")

	result, err := f.Apply(context.Background(), issue, &newFg, &newBg)
	if err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	// rect-a has no provider of its own; only rect-b's bg is repainted.
	if result.Foregrounds != 2 || result.Backgrounds != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v, expected 2 foregrounds and 1 background", result)
	}

	if c, _ := doc.NodeByID("rect-b").FirstVisibleSolid(); c != newFg {
		t.Errorf("rect-b fill = %v, expected %v", c.Hex(), newFg.Hex())
	}
	// rect-a receives both its own foreground recolor and rect-b's
	// provider repaint; task order decides which lands last, but the
	// original color must be gone either way.
	if c, _ := doc.NodeByID("rect-a").FirstVisibleSolid(); c != newFg && c != newBg {
		t.Errorf("rect-a fill = %v, expected one of the replacement colors", c.Hex())
	}
}

// TestApplySkipsStaleNodes tests the best-effort contract: a node that
// disappeared between scan and fix is silently skipped.
func TestApplySkipsStaleNodes(t *testing.T) {
	t.Parallel()

	_, f := fixture(t)
	newFg := mustParse(t, "#111111")

	result, err := f.Apply(context.Background(), issueFor("label-1", "gone:1"), &newFg, nil)
	if err != nil {
		t.Fatalf("Apply error = %v, stale nodes must not fail the fix", err)
	}
	if result.Foregrounds != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, expected 1 applied and 1 skipped", result)
	}
}

// TestApplyRequiresReplacement tests the empty-request sentinel.
func TestApplyRequiresReplacement(t *testing.T) {
	t.Parallel()

	_, f := fixture(t)
	if _, err := f.Apply(context.Background(), issueFor("label-1"), nil, nil); !errors.Is(err, ErrNoReplacement) {
		t.Errorf("Apply without colors = %v, expected ErrNoReplacement", err)
	}
}

// TestApplyCancelled tests context cancellation surfacing.
func TestApplyCancelled(t *testing.T) {
	t.Parallel()

	_, f := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	newFg := mustParse(t, "#111111")
	if _, err := f.Apply(ctx, issueFor("label-1"), &newFg, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Apply with cancelled context = %v, expected context.Canceled", err)
	}
}

// mustParse decodes a hex color or fails the test.
func mustParse(t *testing.T, hex string) wcag.Color {
	t.Helper()
	c, ok := wcag.ParseHex(hex)
	if !ok {
		t.Fatalf("bad hex in test: %q", hex)
	}
	return c
}
