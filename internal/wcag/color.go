package wcag

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an immutable sRGB color with channels in [0, 1].
// There is no alpha channel: node opacity and visibility are separate
// boolean attributes in the document model and are never blended into
// the color itself.
//
// Design decision: channels are stored as float64 in the sRGB (gamma
// encoded) space rather than pre-linearized, because the document
// format carries sRGB values and linearization is only needed when
// computing luminance. Hex encoding is a derived, lossy (8-bit per
// channel) representation used for display and grouping keys.
type Color struct {
	R float64
	G float64
	B float64
}

// White is the default page background when the document supplies none.
var White = Color{R: 1, G: 1, B: 1}

// Black is the darkest representable color.
var Black = Color{R: 0, G: 0, B: 0}

// Linearize converts a single sRGB channel value in [0, 1] to linear
// light using the piecewise sRGB transfer function defined by WCAG 2.1.
func Linearize(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the perceptually weighted brightness of the
// color after sRGB linearization. 0 is black, 1 is white.
func RelativeLuminance(c Color) float64 {
	return 0.2126*Linearize(c.R) + 0.7152*Linearize(c.G) + 0.0722*Linearize(c.B)
}

// ContrastRatio computes the WCAG contrast ratio of two relative
// luminances. The result is in [1, 21] and the function is symmetric
// in its arguments by construction.
func ContrastRatio(l1, l2 float64) float64 {
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// Contrast is a convenience wrapper computing the contrast ratio of
// two colors directly.
func Contrast(fg, bg Color) float64 {
	return ContrastRatio(RelativeLuminance(fg), RelativeLuminance(bg))
}

// Hex returns the color as an uppercase "#RRGGBB" string with each
// channel rounded to the nearest of 256 levels. Two colors that differ
// only below the 8-bit quantization step encode identically.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", quantize(c.R), quantize(c.G), quantize(c.B))
}

// quantize rounds a [0,1] channel to the nearest 8-bit level, clamping
// out-of-range input.
func quantize(c float64) uint8 {
	v := math.Round(c * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ParseHex decodes a "#RRGGBB" or "RRGGBB" string into a Color.
// Only exactly six hex digits (with an optional leading '#') are
// accepted; 3-digit shorthand, alpha channels, and named colors are
// unsupported and report ok=false. Malformed input is a sentinel,
// never an error.
func ParseHex(s string) (Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{
		R: float64(v>>16&0xFF) / 255,
		G: float64(v>>8&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}, true
}
