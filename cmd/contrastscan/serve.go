package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/a11yscan/contrastscan/internal/audit"
	"github.com/a11yscan/contrastscan/internal/config"
	"github.com/a11yscan/contrastscan/internal/document"
	"github.com/a11yscan/contrastscan/internal/log"
	"github.com/a11yscan/contrastscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [document.json]",
		Short: "Serve the audit panel API for one document",
		Long: `Serve loads a document export and exposes the panel message contract
over HTTP on the loopback interface:

  POST /api/v1/scan    run a scan (optionally scoped to a selection)
  GET  /api/v1/result  fetch the held scan result
  POST /api/v1/fix     apply a bulk fix to one issue group
  POST /api/v1/cancel  discard the held result

A fix is only accepted while a scan result is held; cancelling
invalidates the held issues so stale fixes cannot be applied.

Examples:
  # Serve on the default loopback address
  contrastscan serve landing-page.json

  # Persist every applied fix back to the export file
  contrastscan serve --save landing-page.json

  # Serve on a different port with a dark page background
  contrastscan serve --addr 127.0.0.1:9000 -p "#1E1E1E" landing-page.json`,
		Args: cobra.ExactArgs(1),
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServeAddr,
		"Listen address for the panel API")
	cmd.Flags().Bool("save", false,
		"Save the document back to its file after each applied fix")
	cmd.Flags().StringP("page-background", "p", "",
		"Fallback page background hex color (e.g., #1E1E1E)")
	cmd.Flags().Int("max-visits", config.DefaultMaxVisits,
		"Maximum number of nodes visited per scan")
	cmd.Flags().Int("max-candidates", config.DefaultMaxCandidates,
		"Maximum number of elements audited per scan")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	documentPath := args[0]

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}
	pageBg, err := getHexFlag(cmd, "page-background")
	if err != nil {
		return err
	}
	maxVisits, err := cmd.Flags().GetInt("max-visits")
	if err != nil {
		return err
	}
	maxCandidates, err := cmd.Flags().GetInt("max-candidates")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	doc, err := document.Load(documentPath)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	serverOpts := []server.Option{server.WithLogger(logger)}
	if save {
		serverOpts = append(serverOpts, server.WithSavePath(documentPath))
	}

	srv := server.New(doc, audit.Options{
		PageBackground: pageBg,
		MaxVisits:      maxVisits,
		MaxCandidates:  maxCandidates,
		Logger:         logger,
	}, serverOpts...)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("panel API listening", "addr", addr, "document", documentPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", documentPath, addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCh:
		logger.Info("received shutdown signal, stopping server...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
