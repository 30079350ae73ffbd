// =============================================================================
// Payroll to pain.001 Converter - Validation Engine
// =============================================================================
//
// This module checks a batch before and after the rows are transformed:
//   - Batch metadata: every field must be present (fatal)
//   - Transactions: rows whose bank code or account could not be determined,
//     empty names and non-positive amounts (warnings)
//
// ERROR HANDLING:
//   - Issues are collected, not returned as they are found
//   - Each issue includes its context (position, field, value)
//   - Errors stop the conversion; warnings are reported and the document is
//     still produced with the UNKNOWN placeholders
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleRequired          = "required"
	RuleDateFormat        = "date_format"
	RuleResolutionMiss    = "resolution_miss"
	RuleMissingAccount    = "missing_account"
	RuleMissingName       = "missing_name"
	RuleNonPositiveAmount = "non_positive_amount"
)

// ExecutionDateLayout is the ISO date expected in ReqdExctnDt.
const ExecutionDateLayout = "2006-01-02"

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Issue is a single validation finding.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the name of the offending field.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable description.
	Message string

	// Position is the 1-based row position, or 0 for batch-level issues.
	Position int
}

// Error implements the error interface.
func (e *Issue) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("[%s] Field '%s': %s (value: '%s')",
			strings.ToUpper(e.Severity), e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity), e.Position, e.Field, e.Message, e.Value)
}

// Result summarizes a list of issues.
type Result struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Issues contains every issue, warnings included.
	Issues []*Issue

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

// Summarize counts issues by severity.
func Summarize(issues []*Issue) *Result {
	result := &Result{
		IsValid: true,
		Issues:  issues,
	}

	for _, issue := range issues {
		if issue.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false
		} else {
			result.WarningCount++
		}
	}

	return result
}

// =============================================================================
// BATCH METADATA
// =============================================================================

// ValidateMetadata checks that every metadata field is present. Values are
// otherwise opaque; an execution date that is not YYYY-MM-DD only yields a
// warning.
func ValidateMetadata(meta types.BatchMetadata) []*Issue {
	issues := make([]*Issue, 0)

	fields := []struct {
		name  string
		value string
	}{
		{"msg_id", meta.MessageID},
		{"PmtInfId", meta.PaymentInfoID},
		{"ReqdExctnDt", meta.RequestedExecutionDate},
		{"type", meta.RemittanceType},
	}

	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			issues = append(issues, &Issue{
				Severity: SeverityError,
				Field:    field.name,
				Value:    field.value,
				Rule:     RuleRequired,
				Message:  "Field is required",
			})
		}
	}

	date := strings.TrimSpace(meta.RequestedExecutionDate)
	if date != "" {
		if _, err := time.Parse(ExecutionDateLayout, date); err != nil {
			issues = append(issues, &Issue{
				Severity: SeverityWarning,
				Field:    "ReqdExctnDt",
				Value:    meta.RequestedExecutionDate,
				Rule:     RuleDateFormat,
				Message:  fmt.Sprintf("Value is not a %s date", ExecutionDateLayout),
			})
		}
	}

	return issues
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// InspectTransactions reports rows that will be sent with placeholders or
// suspicious values. It never returns errors, only warnings.
func InspectTransactions(transactions []types.Transaction) []*Issue {
	issues := make([]*Issue, 0)

	for _, tx := range transactions {
		if tx.CreditorAccount == types.Unknown {
			issues = append(issues, &Issue{
				Severity: SeverityWarning,
				Field:    types.FieldRIB,
				Rule:     RuleMissingAccount,
				Message:  "No account number; creditor account and bank code set to " + types.Unknown,
				Position: tx.Position,
			})
		} else if tx.BICSource == types.BICUnknown {
			issues = append(issues, &Issue{
				Severity: SeverityWarning,
				Field:    types.FieldRIB,
				Value:    tx.CreditorAccount,
				Rule:     RuleResolutionMiss,
				Message:  "No bank code known for the account prefix",
				Position: tx.Position,
			})
		}

		if tx.CreditorName == "" {
			issues = append(issues, &Issue{
				Severity: SeverityWarning,
				Field:    "name",
				Rule:     RuleMissingName,
				Message:  "Creditor name is empty after normalization",
				Position: tx.Position,
			})
		}

		if !tx.Amount.IsPositive() {
			issues = append(issues, &Issue{
				Severity: SeverityWarning,
				Field:    types.FieldSalary,
				Value:    tx.Amount.String(),
				Rule:     RuleNonPositiveAmount,
				Message:  "Amount is not positive",
				Position: tx.Position,
			})
		}
	}

	return issues
}

// CountRule returns the number of issues with the given rule.
func CountRule(issues []*Issue, rule string) int {
	count := 0
	for _, issue := range issues {
		if issue.Rule == rule {
			count++
		}
	}
	return count
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatIssues formats issues for display or logging.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(issues)))

	for i, issue := range issues {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, issue.Error()))
	}

	return builder.String()
}

// WriteIssueLog writes the formatted issues to filePath.
func WriteIssueLog(issues []*Issue, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create issue log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatIssues(issues)); err != nil {
		return fmt.Errorf("failed to write issue log: %w", err)
	}
	return writer.Flush()
}
