package wcag

import "strings"

// ElementKind identifies which WCAG 2.1 success criterion applies to
// an audited element.
//
// Design decision: a closed iota enum with a String() method, rather
// than free-form strings, so that switches over kinds are exhaustive
// and adding a kind is a compile-time-checked change.
type ElementKind int

const (
	// KindNormalText is text below the large-text thresholds.
	// Required contrast: 4.5:1 (AA), 7:1 (AAA).
	KindNormalText ElementKind = iota

	// KindLargeText is text at least 18px, or at least 14px with a
	// bold-equivalent weight. Required contrast: 3:1 (AA), 4.5:1 (AAA).
	KindLargeText

	// KindUIComponent is a non-text graphical element (icon, shape).
	// Required contrast: 3:1 (AA). WCAG defines no enhanced AAA tier
	// for non-text content.
	KindUIComponent
)

// String returns the identifier used in reports and wire payloads.
func (k ElementKind) String() string {
	switch k {
	case KindNormalText:
		return "normal-text"
	case KindLargeText:
		return "large-text"
	case KindUIComponent:
		return "ui-component"
	default:
		return "unknown"
	}
}

// Thresholds for the WCAG 2.1 contrast success criteria (1.4.3, 1.4.6,
// 1.4.11).
const (
	// LargeTextMinSize is the font size at which any weight qualifies
	// as large text. Sizes are assumed already normalized to the same
	// px-equivalent scale as this threshold.
	LargeTextMinSize = 18.0

	// BoldLargeTextMinSize is the font size at which a bold-equivalent
	// weight qualifies as large text.
	BoldLargeTextMinSize = 14.0
)

// boldMarkers are the style-name substrings treated as bold-equivalent
// weights. Matching is case-insensitive.
var boldMarkers = []string{"bold", "black", "heavy", "extrabold"}

// Category carries the contrast thresholds an element must meet.
type Category struct {
	// Kind is the WCAG element category.
	Kind ElementKind

	// RequiredAA is the minimum contrast ratio for AA conformance.
	RequiredAA float64

	// RequiredAAA is the minimum ratio for AAA conformance, or nil
	// when no enhanced tier is defined (non-text elements).
	RequiredAAA *float64
}

// IsText reports whether the category applies to a text element.
func (c Category) IsText() bool {
	return c.Kind == KindNormalText || c.Kind == KindLargeText
}

// IsLargeText reports whether the category is the relaxed large-text tier.
func (c Category) IsLargeText() bool {
	return c.Kind == KindLargeText
}

// Classify determines the WCAG category of an element.
//
// For text elements, fontSize is the element's single determinate font
// size, or nil when the size is not a single value (mixed across a
// text run). An indeterminate size classifies conservatively as NOT
// large, failing open to the stricter normal-text thresholds.
//
// Precedence, per WCAG 2.1:
//  1. non-text        -> ui-component, AA 3:1, no AAA tier
//  2. size >= 18      -> large-text, any weight
//  3. size >= 14+bold -> large-text
//  4. otherwise       -> normal-text
func Classify(text bool, fontSize *float64, fontStyle string) Category {
	if !text {
		return Category{Kind: KindUIComponent, RequiredAA: 3}
	}
	if fontSize != nil {
		size := *fontSize
		if size >= LargeTextMinSize || (size >= BoldLargeTextMinSize && isBoldStyle(fontStyle)) {
			return Category{Kind: KindLargeText, RequiredAA: 3, RequiredAAA: ratio(4.5)}
		}
	}
	return Category{Kind: KindNormalText, RequiredAA: 4.5, RequiredAAA: ratio(7)}
}

// isBoldStyle reports whether the style name contains a bold-equivalent
// weight marker.
func isBoldStyle(style string) bool {
	lower := strings.ToLower(style)
	for _, marker := range boldMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ratio returns a pointer to a threshold value for nullable AAA fields.
func ratio(v float64) *float64 {
	return &v
}
