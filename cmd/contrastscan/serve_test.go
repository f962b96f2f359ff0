package main

import (
	"testing"

	"github.com/a11yscan/contrastscan/internal/config"
)

// TestNewServeCmd tests the serve command creation. The message
// contract itself is covered by the server package tests.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve [document.json]" {
			t.Errorf("expected use 'serve [document.json]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has addr flag with loopback default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("addr")
		if flag == nil {
			t.Fatal("expected addr flag")
		}
		if flag.Shorthand != "a" {
			t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultServeAddr {
			t.Errorf("expected default %q, got %q", config.DefaultServeAddr, flag.DefValue)
		}
	})

	t.Run("has save flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("save")
		if flag == nil {
			t.Fatal("expected save flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has audit option flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("page-background") == nil {
			t.Error("expected page-background flag")
		}
		if cmd.Flags().Lookup("max-visits") == nil {
			t.Error("expected max-visits flag")
		}
		if cmd.Flags().Lookup("max-candidates") == nil {
			t.Error("expected max-candidates flag")
		}
	})

	t.Run("requires exactly one argument", func(t *testing.T) {
		t.Parallel()
		cmd := NewServeCmd()
		cmd.SetArgs([]string{})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error without a document argument")
		}
	})

	t.Run("rejects missing document", func(t *testing.T) {
		t.Parallel()
		cmd := NewServeCmd()
		cmd.SetArgs([]string{"/nonexistent/document.json"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing document")
		}
	})
}
