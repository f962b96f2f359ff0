// Package wcag implements the color mathematics and element
// classification rules of WCAG 2.1 contrast checking.
//
// The package has two halves:
//   - Color math: sRGB linearization, relative luminance, contrast
//     ratio, and the 8-bit hex encoding used for display and grouping.
//   - Category classification: deciding whether an element is normal
//     text, large text, or a non-text UI component, and which AA/AAA
//     thresholds apply to it.
//
// Everything here is a pure function of its inputs. Malformed input
// (an unparseable hex string) is reported with an ok=false sentinel,
// never an error or panic.
package wcag
