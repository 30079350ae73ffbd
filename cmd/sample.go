// =============================================================================
// Payroll to pain.001 Converter - Sample Command
// =============================================================================
//
// This file defines the 'sample' command, which writes the template
// spreadsheet users fill in before uploading.
//
// COMMAND USAGE:
//   payroll-pain001 sample [--output sample_excel.xlsx]
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-pain001/internal/xlsxparser"
)

// sampleOutput is the path the template is written to.
var sampleOutput string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write the template payroll spreadsheet",
	Long: `The sample command writes a workbook with the expected header row
(prenom, nom, rib, bic, currency, salaire) and a few example employees.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSample(sampleOutput)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "sample_excel.xlsx", "Path of the workbook to write")
}

func writeSample(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := xlsxparser.WriteSample(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write sample: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	fmt.Printf("Sample written to %s\n", path)
	return nil
}
