// =============================================================================
// Payroll to pain.001 Converter - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   payroll-pain001 version
//
// OUTPUT:
//   Payroll to pain.001 Converter
//   Version:     1.0.0
//   Build Date:  2024-01-01
//   Go Version:  go1.24.0
//   Message:     pain.001.001.03
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-pain001/internal/xmlwriter"
)

// These variables are set at build time using ldflags:
//   go build -ldflags "-X 'github.com/ginjaninja78/payroll-pain001/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and message schema.`,

	// The version needs no configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },

	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Payroll to pain.001 Converter")
		fmt.Printf("Version:     %s\n", Version)
		fmt.Printf("Build Date:  %s\n", BuildDate)
		fmt.Printf("Go Version:  %s\n", runtime.Version())
		fmt.Printf("Message:     %s\n", strings.TrimPrefix(xmlwriter.Namespace, "urn:iso:std:iso:20022:tech:xsd:"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
