// =============================================================================
// Payroll to pain.001 Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts payroll
// spreadsheets on disk without going through the HTTP service.
//
// COMMAND USAGE:
//   payroll-pain001 convert [flags]
//
// FLAGS:
//   --file         : Spreadsheet to convert (repeatable)
//   --input-dir    : Convert every .xlsx and .csv file in this directory
//   --msg-id       : Message identifier (required)
//   --pmt-inf-id   : Payment information identifier (required)
//   --exec-date    : Requested execution date, YYYY-MM-DD (required)
//   --type         : Remittance type (required)
//   --output-dir   : Where documents are written (default: current directory)
//   --output       : Output file name format
//   --dry-run      : Convert without writing documents
//   --summary      : Write a processing summary to the output directory
//   --issues-log   : Write the warnings of each file next to its document
//
// PROCESSING PIPELINE:
//   1. Collect the input files
//   2. Load the bank code table
//   3. Name every output; inputs that would share one fail
//   4. For each remaining file (concurrently):
//      a. Read the rows (XLSX or CSV)
//      b. Build the transactions and resolve the bank codes
//      c. Render the pain.001 document
//      d. Write the output file
//   5. Print and optionally write the summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payroll-pain001/internal/bankcode"
	"github.com/ginjaninja78/payroll-pain001/internal/converter"
	"github.com/ginjaninja78/payroll-pain001/internal/types"
	"github.com/ginjaninja78/payroll-pain001/internal/validation"
	"github.com/ginjaninja78/payroll-pain001/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// convertFlags holds the flags of the convert command.
var convertFlags struct {
	files        []string
	inputDir     string
	meta         types.BatchMetadata
	outputDir    string
	outputFormat string
	dryRun       bool
	summary      bool
	issuesLog    bool
}

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert payroll spreadsheets to pain.001 documents",
	Long: `The convert command reads one or more payroll spreadsheets and writes one
pain.001.001.03 document per file. The batch metadata given on the command
line applies to every file.

Files are converted concurrently. A file that fails does not stop the
others; the command exits with an error when any file failed.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert()
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringArrayVar(&convertFlags.files, "file", nil, "Spreadsheet to convert (repeatable)")
	flags.StringVar(&convertFlags.inputDir, "input-dir", "", "Convert every .xlsx and .csv file in this directory")
	flags.StringVar(&convertFlags.meta.MessageID, "msg-id", "", "Message identifier")
	flags.StringVar(&convertFlags.meta.PaymentInfoID, "pmt-inf-id", "", "Payment information identifier")
	flags.StringVar(&convertFlags.meta.RequestedExecutionDate, "exec-date", "", "Requested execution date (YYYY-MM-DD)")
	flags.StringVar(&convertFlags.meta.RemittanceType, "type", "", "Remittance type")
	flags.StringVar(&convertFlags.outputDir, "output-dir", ".", "Directory the documents are written to")
	flags.StringVar(&convertFlags.outputFormat, "output", "{original}_{pmtinfid}.xml",
		"Output file name format ({original}, {pmtinfid}, {timestamp}, {date}, {uuid})")
	flags.BoolVar(&convertFlags.dryRun, "dry-run", false, "Convert without writing documents")
	flags.BoolVar(&convertFlags.summary, "summary", false, "Write a processing summary to the output directory")
	flags.BoolVar(&convertFlags.issuesLog, "issues-log", false, "Write the warnings of each file next to its document")

	for _, name := range []string{"msg-id", "pmt-inf-id", "exec-date", "type"} {
		_ = convertCmd.MarkFlagRequired(name)
	}
}

// fileResult is the outcome of converting one input file.
type fileResult struct {
	inputFile  string
	outputFile string
	result     *converter.Result
	err        error
	duration   time.Duration
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert orchestrates the batch conversion.
func runConvert() error {
	startTime := time.Now()
	cfg := mainConfig

	// =========================================================================
	// STEP 1: COLLECT INPUT FILES
	// =========================================================================

	inputFiles, err := collectInputFiles(convertFlags.files, convertFlags.inputDir)
	if err != nil {
		return err
	}
	if len(inputFiles) == 0 {
		return fmt.Errorf("%w: give --file or --input-dir", converter.ErrNoInput)
	}

	fmt.Printf("Found %d file(s) to convert\n", len(inputFiles))

	// =========================================================================
	// STEP 2: LOAD THE BANK CODE TABLE
	// =========================================================================

	table, err := bankcode.LoadOrDefault(cfg.BankCodesFile)
	if err != nil {
		return fmt.Errorf("failed to load bank codes: %w", err)
	}

	if !convertFlags.dryRun {
		if err := os.MkdirAll(convertFlags.outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// =========================================================================
	// STEP 3: CONVERT FILES CONCURRENTLY
	// =========================================================================
	// Each file is converted in its own goroutine. The converter keeps no
	// per-batch state, so one instance serves all of them.

	conv := converter.NewFromConfig(cfg, table, logger)

	var wg sync.WaitGroup
	results := make(chan fileResult, len(inputFiles))

	outputs, collisions := planOutputs(inputFiles)
	for _, r := range collisions {
		results <- r
	}

	for _, file := range inputFiles {
		outputFile, ok := outputs[file]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(path, outputFile string) {
			defer wg.Done()
			results <- convertOne(conv, path, outputFile)
		}(file, outputFile)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}

	for r := range results {
		if r.err != nil {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.inputFile,
				ErrorMessage: r.err.Error(),
				ErrorType:    converter.Kind(r.err),
			})
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(r.inputFile), r.err)
			continue
		}

		stats := r.result.Stats
		summary.SuccessfulFiles++
		summary.TotalRows += stats.Rows
		summary.UnresolvedBankCodes += stats.UnresolvedBankCodes
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   r.inputFile,
			OutputFile:  r.outputFile,
			Rows:        stats.Rows,
			ControlSum:  stats.Totals.ControlSumText(),
			Unresolved:  stats.UnresolvedBankCodes,
			ProcessTime: r.duration,
		})
		fmt.Printf("  ✓ %s -> %s (%d rows, %s)\n",
			filepath.Base(r.inputFile), r.outputFile, stats.Rows, stats.Totals.ControlSumText())
	}
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Conversion Complete ===")
	fmt.Printf("Total files:       %d\n", summary.TotalFiles)
	fmt.Printf("Successful:        %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:            %d\n", summary.FailedFiles)
	fmt.Printf("Unresolved banks:  %d\n", summary.UnresolvedBankCodes)
	fmt.Printf("Time elapsed:      %s\n", summary.EndTime.Sub(startTime))

	if convertFlags.summary && !convertFlags.dryRun {
		path, err := utils.WriteSummaryLog(summary, convertFlags.outputDir)
		if err != nil {
			logger.Warn("failed to write summary", zap.Error(err))
		} else {
			fmt.Printf("Summary written to %s\n", path)
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// planOutputs names the document of every input before any conversion
// starts. Inputs whose name is already taken by an earlier input get no
// output path and are returned as failed results.
func planOutputs(inputFiles []string) (map[string]string, []fileResult) {
	outputs := make(map[string]string, len(inputFiles))
	owners := make(map[string]string, len(inputFiles))
	var collisions []fileResult

	for _, path := range inputFiles {
		outputFile := filepath.Join(convertFlags.outputDir, utils.GenerateOutputFileName(convertFlags.outputFormat, map[string]string{
			"original": utils.BaseName(path),
			"pmtinfid": convertFlags.meta.PaymentInfoID,
		}))

		key := filepath.Clean(outputFile)
		if owner, taken := owners[key]; taken {
			collisions = append(collisions, fileResult{
				inputFile:  path,
				outputFile: outputFile,
				err:        fmt.Errorf("%w: output %s is already used by %s", converter.ErrDelivery, outputFile, owner),
			})
			continue
		}

		owners[key] = path
		outputs[path] = outputFile
	}

	return outputs, collisions
}

// convertOne converts a single file and writes its document to outputFile.
func convertOne(conv *converter.Converter, path, outputFile string) fileResult {
	start := time.Now()
	out := fileResult{inputFile: path, outputFile: outputFile}

	result, err := conv.ConvertFile(path, convertFlags.meta)
	if err != nil {
		out.err = err
		return out
	}
	out.result = result

	if convertFlags.dryRun {
		out.duration = time.Since(start)
		return out
	}

	if err := converter.WriteDocument(out.outputFile, result.Document); err != nil {
		out.err = err
		return out
	}

	if convertFlags.issuesLog && len(result.Issues) > 0 {
		logPath := strings.TrimSuffix(out.outputFile, filepath.Ext(out.outputFile)) + "_issues.txt"
		if err := validation.WriteIssueLog(result.Issues, logPath); err != nil {
			logger.Warn("failed to write issue log", zap.String("file", path), zap.Error(err))
		}
	}

	out.duration = time.Since(start)
	return out
}

// collectInputFiles merges the --file arguments with the files discovered in
// inputDir, dropping duplicates.
func collectInputFiles(files []string, inputDir string) ([]string, error) {
	var all []string
	seen := make(map[string]bool)

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if !seen[abs] {
			seen[abs] = true
			all = append(all, path)
		}
	}

	for _, f := range files {
		add(f)
	}

	if inputDir != "" {
		discovered, err := utils.DiscoverInputFiles(inputDir)
		if err != nil {
			return nil, err
		}
		if len(discovered) == 0 && len(files) == 0 {
			return nil, fmt.Errorf("%w: no .xlsx or .csv files in %s", converter.ErrNoInput, inputDir)
		}
		for _, f := range discovered {
			add(f)
		}
	}

	return all, nil
}
