package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name     string
		meta     types.BatchMetadata
		required []string
		warnings int
	}{
		{
			name: "complete",
			meta: types.BatchMetadata{MessageID: "M", PaymentInfoID: "P", RequestedExecutionDate: "2024-02-01", RemittanceType: "SALAIRE"},
		},
		{
			name:     "all missing",
			meta:     types.BatchMetadata{},
			required: []string{"msg_id", "PmtInfId", "ReqdExctnDt", "type"},
		},
		{
			name:     "blank counts as missing",
			meta:     types.BatchMetadata{MessageID: "  ", PaymentInfoID: "P", RequestedExecutionDate: "2024-02-01", RemittanceType: "T"},
			required: []string{"msg_id"},
		},
		{
			name:     "unusual date is only a warning",
			meta:     types.BatchMetadata{MessageID: "M", PaymentInfoID: "P", RequestedExecutionDate: "01/02/2024", RemittanceType: "T"},
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateMetadata(tt.meta)
			result := Summarize(issues)

			var fields []string
			for _, issue := range issues {
				if issue.Rule == RuleRequired {
					fields = append(fields, issue.Field)
				}
			}
			assert.Equal(t, tt.required, fields)
			assert.Equal(t, len(tt.required), result.ErrorCount)
			assert.Equal(t, tt.warnings, result.WarningCount)
			assert.Equal(t, len(tt.required) == 0, result.IsValid)
		})
	}
}

func TestInspectTransactions(t *testing.T) {
	txs := []types.Transaction{
		{Position: 1, CreditorName: "Jean", CreditorAccount: "013780", CreditorBIC: "BMCIMAMC", BICSource: types.BICResolved, Amount: decimal.NewFromInt(10)},
		{Position: 2, CreditorName: "Ali", CreditorAccount: "999780", CreditorBIC: types.Unknown, BICSource: types.BICUnknown, Amount: decimal.NewFromInt(10)},
		{Position: 3, CreditorName: "", CreditorAccount: types.Unknown, CreditorBIC: types.Unknown, BICSource: types.BICUnknown, Amount: decimal.Zero},
		{Position: 4, CreditorName: "Sara", CreditorAccount: "999780", CreditorBIC: "XXXXMAMC", BICSource: types.BICSupplied, Amount: decimal.NewFromInt(5)},
	}

	issues := InspectTransactions(txs)

	assert.Equal(t, 1, CountRule(issues, RuleResolutionMiss))
	assert.Equal(t, 1, CountRule(issues, RuleMissingAccount))
	assert.Equal(t, 1, CountRule(issues, RuleMissingName))
	assert.Equal(t, 1, CountRule(issues, RuleNonPositiveAmount))

	for _, issue := range issues {
		assert.Equal(t, SeverityWarning, issue.Severity)
		assert.NotEqual(t, 1, issue.Position)
		assert.NotEqual(t, 4, issue.Position)
	}

	result := Summarize(issues)
	assert.True(t, result.IsValid)
	assert.Equal(t, 4, result.WarningCount)
}

func TestIssue_Error(t *testing.T) {
	rowIssue := &Issue{Severity: SeverityWarning, Field: "rib", Value: "999", Message: "No bank code", Position: 3}
	assert.Equal(t, "[WARNING] Row 3, Field 'rib': No bank code (value: '999')", rowIssue.Error())

	batchIssue := &Issue{Severity: SeverityError, Field: "type", Message: "Field is required"}
	assert.Equal(t, "[ERROR] Field 'type': Field is required (value: '')", batchIssue.Error())
}

func TestWriteIssueLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.log")
	issues := []*Issue{{Severity: SeverityWarning, Field: "rib", Message: "No bank code", Position: 2}}

	require.NoError(t, WriteIssueLog(issues, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1 issue(s)")
	assert.Contains(t, string(data), "Row 2")

	assert.Equal(t, "No validation issues.", FormatIssues(nil))
}
