// =============================================================================
// Payroll to pain.001 Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the entire
// pipeline for a single upload, from spreadsheet bytes to the pain.001
// document.
//
// CONVERSION PIPELINE:
//   1. Check the batch metadata
//   2. Read the rows from the XLSX or CSV content
//   3. Transform each row into a canonical transaction
//   4. Aggregate the batch totals
//   5. Inspect the transactions for unresolved bank codes
//   6. Generate the XML document
//
// CONCURRENCY:
//   A Converter holds only immutable state (the bank code table, the
//   document options and the CSV settings). Any number of goroutines may
//   call Convert on the same Converter; each call builds its own batch and
//   document buffer.
//
// =============================================================================

package converter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/payroll-pain001/internal/config"
	"github.com/ginjaninja78/payroll-pain001/internal/csvparser"
	"github.com/ginjaninja78/payroll-pain001/internal/types"
	"github.com/ginjaninja78/payroll-pain001/internal/validation"
	"github.com/ginjaninja78/payroll-pain001/internal/xlsxparser"
	"github.com/ginjaninja78/payroll-pain001/internal/xmlwriter"
)

// xlsxMagic is the ZIP local file header every XLSX workbook starts with.
var xlsxMagic = []byte("PK\x03\x04")

// oleMagic starts legacy binary .xls workbooks.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting one upload.
type Result struct {
	// Document is the rendered pain.001 XML.
	Document []byte

	// Batch is the batch the document was rendered from.
	Batch types.Batch

	// Issues holds the warnings found in the metadata and the rows.
	Issues []*validation.Issue

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Rows is the number of data rows read.
	Rows int

	// UnresolvedBankCodes is the number of rows whose bank code could not be
	// resolved from the account prefix.
	UnresolvedBankCodes int

	// Totals are the batch totals written to the document.
	Totals types.BatchTotals

	// ProcessingTime is the time taken to convert the upload.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter converts payroll spreadsheets into pain.001 documents.
type Converter struct {
	transformer *Transformer
	options     xmlwriter.GenerateOptions
	csvSettings config.CSVSettings
	logger      *zap.Logger

	// now returns the creation time written to the group header.
	now func() time.Time
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - resolver: The bank code table used for rows without a bic.
//   - options: The document generation options.
//   - csvSettings: How to read CSV uploads.
//   - defaultCurrency: The currency of rows without a currency column.
//   - logger: The logger; nil disables logging.
//
// RETURNS:
//   - A new Converter instance.
func New(resolver Resolver, options xmlwriter.GenerateOptions, csvSettings config.CSVSettings, defaultCurrency string, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		transformer: NewTransformer(resolver, defaultCurrency),
		options:     options,
		csvSettings: csvSettings,
		logger:      logger,
		now:         time.Now,
	}
}

// NewFromConfig creates a Converter from the application configuration.
func NewFromConfig(cfg *config.MainConfig, resolver Resolver, logger *zap.Logger) *Converter {
	return New(resolver, cfg.GenerateOptions(), cfg.CSVSettings, cfg.DefaultCurrency, logger)
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// ConvertFile reads the spreadsheet at path and converts it.
func (c *Converter) ConvertFile(path string, meta types.BatchMetadata) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoInput, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	return c.ConvertBytes(data, filepath.Base(path), meta)
}

// ConvertReader reads an uploaded spreadsheet and converts it. filename is
// only used to recognise CSV uploads.
func (c *Converter) ConvertReader(r io.Reader, filename string, meta types.BatchMetadata) (*Result, error) {
	if r == nil {
		return nil, ErrNoInput
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	return c.ConvertBytes(data, filename, meta)
}

// ConvertBytes converts spreadsheet content that is already in memory.
func (c *Converter) ConvertBytes(data []byte, filename string, meta types.BatchMetadata) (*Result, error) {
	// Metadata is checked before the content is parsed.
	if err := metadataError(validation.ValidateMetadata(meta)); err != nil {
		return nil, err
	}

	rows, err := c.ReadRecords(data, filename)
	if err != nil {
		return nil, err
	}

	return c.Convert(rows, meta)
}

// Convert runs the pipeline on rows that have already been read.
//
// RETURNS:
//   - A Result holding the document, the warnings and the statistics.
//   - An error wrapping ErrMissingMetadata or ErrSerialization.
func (c *Converter) Convert(rows []types.RawRecord, meta types.BatchMetadata) (*Result, error) {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: CHECK METADATA
	// =========================================================================

	issues := validation.ValidateMetadata(meta)
	if err := metadataError(issues); err != nil {
		return nil, err
	}

	c.logger.Debug("converting batch",
		zap.String("msg_id", meta.MessageID),
		zap.String("pmt_inf_id", meta.PaymentInfoID),
		zap.Int("rows", len(rows)),
	)

	// =========================================================================
	// STEP 2: TRANSFORM ROWS
	// =========================================================================

	transactions := c.transformer.TransformAll(rows, meta.PaymentInfoID)

	// =========================================================================
	// STEP 3: AGGREGATE
	// =========================================================================

	batch := types.Batch{
		Metadata:     meta,
		Transactions: transactions,
		Totals:       Aggregate(transactions),
		CreatedAt:    c.now(),
	}

	// =========================================================================
	// STEP 4: INSPECT TRANSACTIONS
	// =========================================================================
	// Unresolved bank codes are reported, never fatal.

	issues = append(issues, validation.InspectTransactions(transactions)...)
	for _, issue := range issues {
		if issue.Rule == validation.RuleResolutionMiss {
			c.logger.Warn("bank code not resolved",
				zap.String("pmt_inf_id", meta.PaymentInfoID),
				zap.Int("position", issue.Position),
				zap.String("rib", issue.Value),
			)
		}
	}

	// =========================================================================
	// STEP 5: GENERATE XML DOCUMENT
	// =========================================================================

	document, err := xmlwriter.GenerateWithOptions(batch, c.options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result := &Result{
		Document: document,
		Batch:    batch,
		Issues:   issues,
		Stats: ProcessingStats{
			Rows:                len(rows),
			UnresolvedBankCodes: validation.CountRule(issues, validation.RuleResolutionMiss),
			Totals:              batch.Totals,
			ProcessingTime:      time.Since(startTime),
		},
	}

	c.logger.Info("batch converted",
		zap.String("pmt_inf_id", meta.PaymentInfoID),
		zap.Int("rows", result.Stats.Rows),
		zap.String("ctrl_sum", batch.Totals.ControlSumText()),
		zap.Int("unresolved", result.Stats.UnresolvedBankCodes),
		zap.Duration("duration", result.Stats.ProcessingTime),
	)

	return result, nil
}

// ReadRecords extracts the rows from XLSX or CSV content. XLSX is recognised
// by its content, CSV by the .csv or .txt extension of filename.
func (c *Converter) ReadRecords(data []byte, filename string) ([]types.RawRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrUnreadableInput)
	}

	switch {
	case bytes.HasPrefix(data, xlsxMagic):
		rows, err := xlsxparser.ReadRecords(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
		}
		return rows, nil

	case bytes.HasPrefix(data, oleMagic):
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save as .xlsx", ErrUnreadableInput)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		rows, err := csvparser.ReadRecords(bytes.NewReader(data), c.csvSettings)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
		}
		return rows, nil
	}

	return nil, fmt.Errorf("%w: %q is not an XLSX or CSV file", ErrUnreadableInput, filename)
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteDocument writes a rendered document to path.
func WriteDocument(path string, document []byte) error {
	if err := os.WriteFile(path, document, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// metadataError returns ErrMissingMetadata, naming the empty fields, when
// the metadata issues contain an error.
func metadataError(issues []*validation.Issue) error {
	result := validation.Summarize(issues)
	if result.IsValid {
		return nil
	}

	missing := make([]string, 0, result.ErrorCount)
	for _, issue := range result.Issues {
		if issue.Severity == validation.SeverityError {
			missing = append(missing, issue.Field)
		}
	}
	return fmt.Errorf("%w: %s", ErrMissingMetadata, strings.Join(missing, ", "))
}
