package model

import "fmt"

// ContrastIssue is one group of elements sharing a color-pair
// signature. A single record aggregates every audited element whose
// quantized foreground/background hex pair and text category match, so
// an operator can correct all of them at once.
//
// Lifecycle: constructed when its signature is first seen during
// grouping; subsequent matching elements only append to NodeIDs. All
// other fields are fixed from the first occurrence: later tuples with
// the same signature but a marginally different floating-point ratio
// do not re-average the stored ratio.
type ContrastIssue struct {
	// ForegroundHex is the 8-bit quantized foreground color.
	ForegroundHex string `json:"foreground_hex"`

	// BackgroundHex is the 8-bit quantized effective background color.
	BackgroundHex string `json:"background_hex"`

	// Ratio is the computed contrast ratio, always >= 1.
	Ratio float64 `json:"ratio"`

	// RequiredAA is the minimum ratio for AA conformance.
	RequiredAA float64 `json:"required_aa"`

	// RequiredAAA is the minimum ratio for AAA conformance, or nil
	// when no enhanced tier is defined (non-text elements).
	RequiredAAA *float64 `json:"required_aaa"`

	// PassAA reports whether Ratio meets RequiredAA.
	PassAA bool `json:"pass_aa"`

	// PassAAA reports whether Ratio meets RequiredAAA, or nil when
	// RequiredAAA is nil.
	PassAAA *bool `json:"pass_aaa"`

	// ElementType is "normal-text", "large-text", or "ui-component".
	ElementType string `json:"element_type"`

	// IsText reports whether the group contains text elements.
	IsText bool `json:"is_text"`

	// IsLargeText reports whether the group is the large-text tier.
	IsLargeText bool `json:"is_large_text"`

	// NodeIDs are the contributing element identifiers, in the order
	// they were encountered during traversal. Order carries no
	// meaning beyond determinism.
	NodeIDs []string `json:"node_ids"`
}

// GroupKey returns the deduplication key for the issue's signature.
// The key is the exact literal concatenation
// foregroundHex|backgroundHex|isText|isLargeText; colors are quantized
// to 8-bit hex before keying, so two raw colors that round to the same
// hex collapse into one group.
func (i *ContrastIssue) GroupKey() string {
	return GroupKey(i.ForegroundHex, i.BackgroundHex, i.IsText, i.IsLargeText)
}

// GroupKey builds the grouping key from its parts.
func GroupKey(fgHex, bgHex string, isText, isLargeText bool) string {
	return fmt.Sprintf("%s|%s|%t|%t", fgHex, bgHex, isText, isLargeText)
}
