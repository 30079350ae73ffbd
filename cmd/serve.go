// =============================================================================
// Payroll to pain.001 Converter - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the upload page and the
// HTTP API.
//
// COMMAND USAGE:
//   payroll-pain001 serve [flags]
//
// FLAGS:
//   --port : Listen port (overrides PORT and server.port)
//
// ROUTES:
//   GET  /                 Upload page
//   GET  /static/*         Page assets
//   POST /upload           Convert a spreadsheet, answer with the XML
//   GET  /download-sample  Template spreadsheet
//   GET  /health           Liveness
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payroll-pain001/internal/api"
	"github.com/ginjaninja78/payroll-pain001/internal/api/handlers"
	"github.com/ginjaninja78/payroll-pain001/internal/bankcode"
	"github.com/ginjaninja78/payroll-pain001/internal/converter"
	"github.com/ginjaninja78/payroll-pain001/pkg/utils"
)

// servePort overrides server.port when set.
var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload page and HTTP API",
	Long: `The serve command starts the HTTP service. Users upload a payroll
spreadsheet together with the batch metadata and receive the pain.001
document as a download.

Uploads are kept under upload_dir only while they are converted. Files left
behind by an earlier run are removed at startup.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(
		&servePort,
		"port",
		"",
		"Listen port (overrides PORT and server.port)",
	)
}

// runServe wires the service together and blocks until the listener fails.
func runServe() error {
	cfg := mainConfig

	// =========================================================================
	// STEP 1: PREPARE THE UPLOAD DIRECTORY
	// =========================================================================

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	store := utils.NewTempStore(cfg.UploadDir)
	removed, err := store.CleanStale(cfg.StaleAge())
	if err != nil {
		logger.Warn("failed to clean stale uploads", zap.Error(err))
	} else if removed > 0 {
		logger.Info("removed stale uploads", zap.Int("count", removed))
	}

	// =========================================================================
	// STEP 2: LOAD THE BANK CODE TABLE
	// =========================================================================

	table, err := bankcode.LoadOrDefault(cfg.BankCodesFile)
	if err != nil {
		return fmt.Errorf("failed to load bank codes: %w", err)
	}
	logger.Info("bank code table loaded", zap.Int("prefixes", table.Len()))

	// =========================================================================
	// STEP 3: BUILD THE ROUTER
	// =========================================================================

	gin.SetMode(cfg.Server.Mode)

	conv := converter.NewFromConfig(cfg, table, logger)
	handler := handlers.NewPayrollHandler(conv, store, handlers.Options{
		SampleFile:     cfg.SampleFile,
		OutputFileName: cfg.OutputFileName,
	}, logger)

	router, err := api.NewRouter(handler, logger, cfg.Server.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	// =========================================================================
	// STEP 4: LISTEN
	// =========================================================================

	port := cfg.ListenPort()
	if servePort != "" {
		port = servePort
	}

	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
