// =============================================================================
// Payroll to pain.001 Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (payroll-pain001)
//   ├── serveCmd   (payroll-pain001 serve)
//   ├── convertCmd (payroll-pain001 convert)
//   ├── sampleCmd  (payroll-pain001 sample)
//   ├── banksCmd   (payroll-pain001 banks)
//   └── versionCmd (payroll-pain001 version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the main configuration (--config)
//   2. Builds the zap logger from log_level and log_format
//   3. Hands the logger to the response helpers
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payroll-pain001/internal/api/responses"
	"github.com/ginjaninja78/payroll-pain001/internal/config"
	"github.com/ginjaninja78/payroll-pain001/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// mainConfig and logger are set by initRuntime before a subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "payroll-pain001",
	Short: "Payroll to pain.001 Converter - Turn payroll spreadsheets into bank transfer files",
	Long: `Payroll to pain.001 Converter reads a payroll spreadsheet (one row per
employee) and produces an ISO 20022 pain.001.001.03 credit transfer document
that the bank accepts for bulk salary payments.

Key Features:
  - Excel (.xlsx) and CSV input
  - Creditor agent BIC resolved from the RIB bank prefix
  - Web upload page and HTTP API
  - Concurrent batch conversion from the command line

Example Usage:
  payroll-pain001 serve                            # Start the upload service
  payroll-pain001 convert --file janvier.xlsx \
      --msg-id M1 --pmt-inf-id PAIE-01 \
      --exec-date 2024-02-01 --type SALAIRE        # Convert one file
  payroll-pain001 sample --output modele.xlsx      # Write the template`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	// Without a subcommand, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: path to the main configuration file. The default file
	// may be absent, in which case the built-in defaults apply.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	// --verbose flag: enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initRuntime loads the configuration and builds the logger.
func initRuntime(cmd *cobra.Command) error {
	// An explicitly named config file must exist.
	missingOK := !cmd.Flags().Changed("config")

	cfg, err := config.LoadOrDefault(cfgFile, missingOK)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	l, err := logging.New(level, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mainConfig = cfg
	logger = l
	responses.InitLogger(l)

	logger.Debug("configuration loaded",
		zap.String("config_file", cfgFile),
		zap.String("upload_dir", cfg.UploadDir),
		zap.String("bank_codes_file", cfg.BankCodesFile),
	)
	return nil
}
