// =============================================================================
// Payroll to pain.001 Converter - Row Transformation Engine
// =============================================================================
//
// This module turns one untyped spreadsheet row into one canonical credit
// transfer. Transformation never fails: every missing or malformed value has
// a documented fallback, and problems surface later as validation warnings.
//
// FIELD RULES:
//   EndToEndID       <PmtInfId>-<position, zero padded to 5 digits>
//   Currency         row "currency", else the default currency (MAD)
//   CreditorAccount  row "rib" with all whitespace removed, else UNKNOWN
//   CreditorBIC      row "bic" when present, else resolved from the first
//                    three RIB characters, else UNKNOWN
//   CreditorName     normalized "prenom" + " " + normalized "nom", trailing
//                    spaces removed
//   Amount           row "salaire" as a decimal, 0 when absent or not numeric
//
// =============================================================================

package converter

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/payroll-pain001/internal/bankcode"
	"github.com/ginjaninja78/payroll-pain001/internal/normalize"
	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// EndToEndIDWidth is the zero-padded width of the position suffix.
const EndToEndIDWidth = 5

// Resolver maps an account number to its bank code.
type Resolver interface {
	Resolve(account string) (string, bool)
}

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer converts raw rows into transactions. It holds no mutable state
// and can be shared between goroutines.
type Transformer struct {
	resolver        Resolver
	defaultCurrency string
}

// NewTransformer creates a Transformer. An empty defaultCurrency means MAD.
func NewTransformer(resolver Resolver, defaultCurrency string) *Transformer {
	if defaultCurrency == "" {
		defaultCurrency = types.DefaultCurrency
	}
	return &Transformer{
		resolver:        resolver,
		defaultCurrency: defaultCurrency,
	}
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform converts one row.
//
// PARAMETERS:
//   - raw: The row, keyed by lower-cased header.
//   - position: The 1-based position of the row within the batch.
//   - paymentInfoID: The batch's payment information id.
//
// RETURNS:
//   - The canonical transaction.
func (t *Transformer) Transform(raw types.RawRecord, position int, paymentInfoID string) types.Transaction {
	tx := types.Transaction{
		Position:   position,
		EndToEndID: paymentInfoID + "-" + PadLeft(strconv.Itoa(position), EndToEndIDWidth, '0'),
		Currency:   t.defaultCurrency,
	}

	if currency := strings.TrimSpace(raw.Text(types.FieldCurrency)); currency != "" {
		tx.Currency = currency
	}

	// Account and bank code.
	account := bankcode.Compact(raw.Text(types.FieldRIB))
	if account != "" {
		tx.CreditorAccount = account
	} else {
		tx.CreditorAccount = types.Unknown
	}

	tx.CreditorBIC, tx.BICSource = t.bankCode(raw, account)

	// Creditor name.
	name := normalize.Name(raw.Text(types.FieldFirstName)) + " " + normalize.Name(raw.Text(types.FieldLastName))
	tx.CreditorName = strings.TrimRight(name, " ")

	// Amount. Missing or non-numeric values count as zero.
	amount, _ := raw.Amount(types.FieldSalary)
	tx.Amount = amount

	return tx
}

// TransformAll converts rows in order, assigning positions 1..N.
func (t *Transformer) TransformAll(rows []types.RawRecord, paymentInfoID string) []types.Transaction {
	transactions := make([]types.Transaction, 0, len(rows))
	for i, row := range rows {
		transactions = append(transactions, t.Transform(row, i+1, paymentInfoID))
	}
	return transactions
}

// bankCode picks the creditor BIC for a row.
func (t *Transformer) bankCode(raw types.RawRecord, account string) (string, types.BICSource) {
	// A blank bic counts as absent; any other value is used verbatim.
	if bic := raw.Text(types.FieldBIC); strings.TrimSpace(bic) != "" {
		return bic, types.BICSupplied
	}

	if account != "" && t.resolver != nil {
		if code, ok := t.resolver.Resolve(account); ok {
			return code, types.BICResolved
		}
	}

	return types.Unknown, types.BICUnknown
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	padding := make([]rune, length-len(s))
	for i := range padding {
		padding[i] = padChar
	}
	return string(padding) + s
}
