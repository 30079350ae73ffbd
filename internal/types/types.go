// =============================================================================
// Payroll to pain.001 Converter - Shared Types
// =============================================================================
//
// This package contains the data model shared by the pipeline stages. It is
// kept free of dependencies on the other internal packages so that:
//   - converter
//   - validation
//   - xmlwriter
//   - xlsxparser / csvparser
// can all import it without creating import cycles.
//
// DATA FLOW:
//   RawRecord (one spreadsheet row, untyped)
//     -> Transaction (one canonical credit transfer)
//     -> Batch (metadata + transactions + totals)
//     -> pain.001 document bytes
//
// =============================================================================

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// Unknown is the placeholder written when an account or bank code cannot be
// determined for a row.
const Unknown = "UNKNOWN"

// DefaultCurrency is used when a row has no currency column value.
const DefaultCurrency = "MAD"

// Column names read from the uploaded spreadsheet. Headers are lower-cased
// by the parsers before they become RawRecord keys.
const (
	FieldBIC       = "bic"
	FieldRIB       = "rib"
	FieldCurrency  = "currency"
	FieldFirstName = "prenom"
	FieldLastName  = "nom"
	FieldSalary    = "salaire"
)

// =============================================================================
// RAW RECORD
// =============================================================================

// RawRecord is one input row keyed by column header. Values come from
// spreadsheets, CSV files or JSON and carry no enforced type, so every read
// goes through one of the total extractors below.
type RawRecord map[string]any

// Text returns the value of key as a string. Missing keys and nil values
// yield "". Numbers are formatted without exponent or trailing zeros.
func (r RawRecord) Text(key string) string {
	value, ok := r[key]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case decimal.Decimal:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Amount returns the value of key as a decimal. The boolean is false when the
// key is missing, empty or not numeric; the returned amount is then zero.
//
// Strings may use either '.' or ',' as the decimal separator and may contain
// spaces as thousands separators ("1 500,50").
func (r RawRecord) Amount(key string) (decimal.Decimal, bool) {
	value, ok := r[key]
	if !ok || value == nil {
		return decimal.Zero, false
	}

	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	}

	text := strings.TrimSpace(r.Text(key))
	if text == "" {
		return decimal.Zero, false
	}
	if d, err := decimal.NewFromString(text); err == nil {
		return d, true
	}

	// Second attempt with European formatting.
	cleaned := strings.Map(func(c rune) rune {
		if c == ' ' || c == '\u00a0' {
			return -1
		}
		return c
	}, text)
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	if d, err := decimal.NewFromString(cleaned); err == nil {
		return d, true
	}

	return decimal.Zero, false
}

// RecordsFromRows turns a header row plus data rows into records. Both the
// XLSX and the CSV readers go through it so that rows are keyed and skipped
// the same way.
//
// Header cells are trimmed and lower-cased; columns with an empty header are
// ignored. Empty cells are left out of the record so that they read as
// missing. Rows whose cells are all blank are skipped.
func RecordsFromRows(rows [][]string) []RawRecord {
	if len(rows) == 0 {
		return []RawRecord{}
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(RawRecord, len(headers))
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			record[headers[i]] = cell
		}

		// Skip empty rows.
		if len(record) == 0 {
			continue
		}
		records = append(records, record)
	}

	return records
}

// =============================================================================
// CANONICAL TRANSACTION
// =============================================================================

// BICSource records how a transaction's creditor bank code was obtained.
type BICSource string

const (
	// BICSupplied means the row carried a bic value, used verbatim.
	BICSupplied BICSource = "supplied"

	// BICResolved means the code came from the account-prefix table.
	BICResolved BICSource = "resolved"

	// BICUnknown means the placeholder was used.
	BICUnknown BICSource = "unknown"
)

// Transaction is one credit transfer in the output document.
type Transaction struct {
	// Position is the 1-based ordinal of the source row within the batch.
	Position int

	// EndToEndID is "<PaymentInfoID>-<position padded to 5 digits>".
	EndToEndID string

	// Currency is the instructed amount currency.
	Currency string

	// CreditorName is the normalized "prenom nom".
	CreditorName string

	// CreditorAccount is the RIB without whitespace, or Unknown.
	CreditorAccount string

	// CreditorBIC is the creditor agent bank code, or Unknown.
	CreditorBIC string

	// BICSource tells where CreditorBIC came from.
	BICSource BICSource

	// Amount is the instructed amount, rendered as given.
	Amount decimal.Decimal
}

// =============================================================================
// BATCH
// =============================================================================

// BatchMetadata is supplied by the caller alongside the rows.
type BatchMetadata struct {
	MessageID              string `json:"msg_id" form:"msg_id"`
	PaymentInfoID          string `json:"PmtInfId" form:"PmtInfId"`
	RequestedExecutionDate string `json:"ReqdExctnDt" form:"ReqdExctnDt"`
	RemittanceType         string `json:"type" form:"type"`
}

// BatchTotals are derived from the transactions of one batch.
type BatchTotals struct {
	TransactionCount int
	ControlSum       decimal.Decimal
}

// ControlSumText renders the control sum with exactly two fractional digits.
func (t BatchTotals) ControlSumText() string {
	return t.ControlSum.StringFixed(2)
}

// Batch is everything the document serializer needs.
type Batch struct {
	Metadata     BatchMetadata
	Transactions []Transaction
	Totals       BatchTotals

	// CreatedAt is the upload time written to the group header.
	CreatedAt time.Time
}
