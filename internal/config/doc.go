// Package config holds runtime configuration for contrastscan.
//
// Configuration comes from two places: CLI flags populate a flat
// Config struct that is passed through the application by dependency
// injection (never global state), and an optional .contrastscan YAML
// file supplies defaults plus per-document overrides such as the page
// background color and the audited selection.
package config
