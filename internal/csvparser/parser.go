// =============================================================================
// Payroll to pain.001 Converter - CSV Parser Module
// =============================================================================
//
// This module reads payroll rows from CSV uploads, for payroll systems that
// export text rather than workbooks. The first row holds the column headers,
// exactly as in the XLSX sheet, and each following row becomes one record.
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, tab, pipe)
//   - UTF-8 (with or without BOM), ISO-8859-1 and Windows-1252 input
//   - Lenient quoting and ragged rows, as produced by spreadsheet exports
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/payroll-pain001/internal/config"
	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadRecords reads CSV content and returns one record per non-empty row.
//
// PARAMETERS:
//   - r: The CSV content.
//   - settings: The delimiter and encoding to use.
//
// RETURNS:
//   - The records keyed by lower-cased header.
//   - An error if the encoding is unknown or the content is not valid CSV.
//
// PARSING PROCESS:
//   1. Decode the input to UTF-8 (dropping a UTF-8 byte order mark)
//   2. Configure the CSV reader with the delimiter
//   3. Read all rows
//   4. Key every data row by the header row
func ReadRecords(r io.Reader, settings config.CSVSettings) ([]types.RawRecord, error) {
	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	reader := transform.NewReader(bufio.NewReader(r), decoder)

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return types.RecordsFromRows(allRows), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	// Handle special cases for common delimiters.
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	// Trim leading space from fields.
	reader.TrimLeadingSpace = true
}

// decoderFor returns the decoder for a configured encoding name.
func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "ISO-8859-1", "LATIN1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252.NewDecoder(), nil
	}
	return nil, fmt.Errorf("unsupported CSV encoding %q", name)
}
