// Package main provides the entry point for the contrastscan CLI.
//
// contrastscan audits design document exports for WCAG 2.1 contrast
// compliance. It resolves each text and vector element's effective
// foreground/background pair, groups failures by color-pair signature,
// and can bulk-correct colors across a group.
//
// Usage:
//
//	contrastscan scan <document.json>
//	contrastscan fix --group <key> --fg <hex> <document.json>
//
// See --help for all available options.
package main

// main is the entry point for contrastscan.
func main() {
	Execute()
}
