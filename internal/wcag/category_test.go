package wcag

import "testing"

// TestClassify tests the category precedence rules.
func TestClassify(t *testing.T) {
	t.Parallel()

	size := func(v float64) *float64 { return &v }

	testCases := []struct {
		name      string
		text      bool
		fontSize  *float64
		fontStyle string
		wantKind  ElementKind
		wantAA    float64
		wantAAA   float64 // 0 means no AAA tier
	}{
		{"non-text element", false, nil, "", KindUIComponent, 3, 0},
		{"non-text ignores size", false, size(30), "Bold", KindUIComponent, 3, 0},
		{"20px regular is large", true, size(20), "Regular", KindLargeText, 3, 4.5},
		{"18px exactly is large", true, size(18), "Light", KindLargeText, 3, 4.5},
		{"15px bold is large", true, size(15), "Bold", KindLargeText, 3, 4.5},
		{"14px exactly bold is large", true, size(14), "Bold", KindLargeText, 3, 4.5},
		{"15px regular is normal", true, size(15), "Regular", KindNormalText, 4.5, 7},
		{"13px bold is normal", true, size(13), "Bold", KindNormalText, 4.5, 7},
		{"16px regular is normal", true, size(16), "Regular", KindNormalText, 4.5, 7},
		{"case-insensitive weight match", true, size(15), "SEMIBOLD itaLIC", KindLargeText, 3, 4.5},
		{"black weight counts as bold", true, size(15), "Black", KindLargeText, 3, 4.5},
		{"heavy weight counts as bold", true, size(14), "Heavy Italic", KindLargeText, 3, 4.5},
		{"extrabold counts as bold", true, size(14), "ExtraBold", KindLargeText, 3, 4.5},
		{"indeterminate size is conservative", true, nil, "Bold", KindNormalText, 4.5, 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.text, tc.fontSize, tc.fontStyle)
			if got.Kind != tc.wantKind {
				t.Errorf("Kind = %v, expected %v", got.Kind, tc.wantKind)
			}
			if got.RequiredAA != tc.wantAA {
				t.Errorf("RequiredAA = %v, expected %v", got.RequiredAA, tc.wantAA)
			}
			if tc.wantAAA == 0 {
				if got.RequiredAAA != nil {
					t.Errorf("RequiredAAA = %v, expected nil", *got.RequiredAAA)
				}
			} else {
				if got.RequiredAAA == nil {
					t.Fatalf("RequiredAAA = nil, expected %v", tc.wantAAA)
				}
				if *got.RequiredAAA != tc.wantAAA {
					t.Errorf("RequiredAAA = %v, expected %v", *got.RequiredAAA, tc.wantAAA)
				}
			}
		})
	}
}

// TestElementKindString tests the report identifiers.
func TestElementKindString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind     ElementKind
		expected string
	}{
		{KindNormalText, "normal-text"},
		{KindLargeText, "large-text"},
		{KindUIComponent, "ui-component"},
		{ElementKind(999), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.kind.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.kind.String(), tc.expected)
			}
		})
	}
}

// TestCategoryTextFlags tests the IsText/IsLargeText helpers used by
// the grouping key.
func TestCategoryTextFlags(t *testing.T) {
	t.Parallel()

	size := func(v float64) *float64 { return &v }

	normal := Classify(true, size(12), "Regular")
	if !normal.IsText() || normal.IsLargeText() {
		t.Errorf("normal text flags wrong: IsText=%v IsLargeText=%v", normal.IsText(), normal.IsLargeText())
	}

	large := Classify(true, size(24), "Regular")
	if !large.IsText() || !large.IsLargeText() {
		t.Errorf("large text flags wrong: IsText=%v IsLargeText=%v", large.IsText(), large.IsLargeText())
	}

	ui := Classify(false, nil, "")
	if ui.IsText() || ui.IsLargeText() {
		t.Errorf("ui-component flags wrong: IsText=%v IsLargeText=%v", ui.IsText(), ui.IsLargeText())
	}
}
