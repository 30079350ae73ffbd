// =============================================================================
// Payroll to pain.001 Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration from
// a YAML file and filling in defaults for everything left unset.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): server, directories, logging, originator
//   2. Bank Code Table (configs/bank_codes.yaml): RIB prefix -> BIC, loaded
//      by the bankcode package from bank_codes_file
//
// DEPLOYMENT CONSTANTS:
//   The originator block holds the values the bank expects on every message
//   (initiating party, debtor account, debtor agent). They are deployment
//   settings rather than per-request input.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
	"github.com/ginjaninja78/payroll-pain001/internal/xmlwriter"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// Server contains the HTTP listener settings.
	Server ServerConfig `yaml:"server"`

	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// UploadDir is where uploaded spreadsheets are stored while they are
	// converted. Every upload gets its own uniquely named file.
	// Default: "./uploads"
	UploadDir string `yaml:"upload_dir"`

	// StaleUploadAge is the age after which leftover uploads are removed at
	// startup, as a Go duration string.
	// Default: "1h"
	StaleUploadAge string `yaml:"stale_upload_age"`

	// SampleFile is the template spreadsheet offered at /download-sample.
	// When the file does not exist a sample is generated on the fly.
	// Default: "./sample_excel.xlsx"
	SampleFile string `yaml:"sample_file"`

	// BankCodesFile is the YAML bank code table. Empty means the table
	// embedded in the binary.
	BankCodesFile string `yaml:"bank_codes_file"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFileName is the attachment name of the generated document.
	// Default: "output.xml"
	OutputFileName string `yaml:"output_file_name"`

	// DefaultCurrency applies to rows without a currency column.
	// Default: "MAD"
	DefaultCurrency string `yaml:"default_currency"`

	// Originator holds the debtor-side constants of every message.
	Originator OriginatorConfig `yaml:"originator"`

	// CSVSettings controls parsing of .csv uploads.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the zap encoder: "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`
}

// ServerConfig holds the HTTP settings.
type ServerConfig struct {
	// Port is the listen port. The PORT environment variable wins.
	// Default: "4000"
	Port string `yaml:"port"`

	// MaxUploadBytes caps the size of a single upload.
	// Default: 10 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Mode is the gin mode: "debug", "release" or "test".
	// Default: "release"
	Mode string `yaml:"mode"`
}

// OriginatorConfig holds the debtor-side values of the payment message.
type OriginatorConfig struct {
	// Name is written to InitgPty/Nm and Dbtr/Nm.
	// Default: "AXV"
	Name string `yaml:"name"`

	// MessageIDPrefix is prepended to the payment information id to form
	// GrpHdr/MsgId.
	// Default: "AXV "
	MessageIDPrefix string `yaml:"message_id_prefix"`

	// DebtorAccount is written to DbtrAcct/Id/Othr/Id.
	// Default: "013780100000000018617511MAD"
	DebtorAccount string `yaml:"debtor_account"`

	// DebtorAgentBIC is written to DbtrAgt/FinInstnId/BIC.
	// Default: "BMCIMAMC"
	DebtorAgentBIC string `yaml:"debtor_agent_bic"`

	// AccountCurrency is written to DbtrAcct/Ccy and CdtrAcct/Ccy.
	// Default: "MAD"
	AccountCurrency string `yaml:"account_currency"`
}

// CSVSettings contains settings for parsing CSV uploads.
type CSVSettings struct {
	// Delimiter is the field separator.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file.
	// Supported: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultMainConfig returns a configuration with every default applied.
func DefaultMainConfig() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads configPath, or returns the defaults when the file does
// not exist and missingOK is set.
func LoadOrDefault(configPath string, missingOK bool) (*MainConfig, error) {
	config, err := LoadMainConfig(configPath)
	if err != nil && missingOK && errors.Is(err, os.ErrNotExist) {
		return DefaultMainConfig(), nil
	}
	return config, err
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.Server.Port == "" {
		config.Server.Port = "4000"
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = 10 << 20
	}
	if config.Server.Mode == "" {
		config.Server.Mode = "release"
	}
	if config.UploadDir == "" {
		config.UploadDir = "./uploads"
	}
	if config.StaleUploadAge == "" {
		config.StaleUploadAge = "1h"
	}
	if config.SampleFile == "" {
		config.SampleFile = "./sample_excel.xlsx"
	}
	if config.OutputFileName == "" {
		config.OutputFileName = "output.xml"
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = types.DefaultCurrency
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}

	// Originator defaults.
	if config.Originator.Name == "" {
		config.Originator.Name = xmlwriter.DefaultOriginatorName
	}
	if config.Originator.MessageIDPrefix == "" {
		config.Originator.MessageIDPrefix = xmlwriter.DefaultMessageIDPrefix
	}
	if config.Originator.DebtorAccount == "" {
		config.Originator.DebtorAccount = xmlwriter.DefaultDebtorAccount
	}
	if config.Originator.DebtorAgentBIC == "" {
		config.Originator.DebtorAgentBIC = xmlwriter.DefaultDebtorAgentBIC
	}
	if config.Originator.AccountCurrency == "" {
		config.Originator.AccountCurrency = xmlwriter.DefaultAccountCurrency
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if _, err := time.ParseDuration(config.StaleUploadAge); err != nil {
		return fmt.Errorf("stale_upload_age: %w", err)
	}

	if config.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}

	switch strings.ToLower(config.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", config.LogFormat)
	}

	switch strings.ToUpper(strings.ReplaceAll(config.CSVSettings.Encoding, "_", "-")) {
	case "UTF-8", "UTF8", "ISO-8859-1", "LATIN1", "WINDOWS-1252", "CP1252":
	default:
		return fmt.Errorf("csv_settings.encoding %q is not supported", config.CSVSettings.Encoding)
	}

	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// StaleAge returns StaleUploadAge as a duration.
func (c *MainConfig) StaleAge() time.Duration {
	d, err := time.ParseDuration(c.StaleUploadAge)
	if err != nil {
		return time.Hour
	}
	return d
}

// ListenPort returns the port to listen on, honouring the PORT variable.
func (c *MainConfig) ListenPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return c.Server.Port
}

// EnsureDirectories creates the upload directory.
func (c *MainConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.UploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.UploadDir, err)
	}
	return nil
}

// GenerateOptions maps the originator settings onto document options.
func (c *MainConfig) GenerateOptions() xmlwriter.GenerateOptions {
	options := xmlwriter.DefaultGenerateOptions()
	options.OriginatorName = c.Originator.Name
	options.MessageIDPrefix = c.Originator.MessageIDPrefix
	options.DebtorAccount = c.Originator.DebtorAccount
	options.DebtorAgentBIC = c.Originator.DebtorAgentBIC
	options.AccountCurrency = c.Originator.AccountCurrency
	return options
}
