// =============================================================================
// Payroll to pain.001 Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   payroll-pain001 serve     - Start the upload page and HTTP API
//   payroll-pain001 convert   - Convert spreadsheets from the command line
//   payroll-pain001 sample    - Write the template spreadsheet
//   payroll-pain001 banks     - Show the bank code table
//   payroll-pain001 version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Conversion pipeline, HTTP API, configuration
//   - pkg/           : Shared file utilities
//   - web/           : Embedded upload page
//   - configs/       : Example configuration and bank code table
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payroll-pain001/cmd"
)

func main() {
	cmd.Execute()
}
