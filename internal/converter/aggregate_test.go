package converter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		count   int
		ctrlSum string
	}{
		{name: "empty", amounts: nil, count: 0, ctrlSum: "0.00"},
		{name: "exact decimal sum", amounts: []string{"0.1", "0.2"}, count: 2, ctrlSum: "0.30"},
		{name: "zeros count", amounts: []string{"1500.5", "0", "1500"}, count: 3, ctrlSum: "3000.50"},
		{name: "half rounds away from zero", amounts: []string{"1.005"}, count: 1, ctrlSum: "1.01"},
		{name: "many small amounts", amounts: []string{"0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01"}, count: 10, ctrlSum: "0.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := make([]types.Transaction, 0, len(tt.amounts))
			for _, a := range tt.amounts {
				txs = append(txs, types.Transaction{Amount: decimal.RequireFromString(a)})
			}

			totals := Aggregate(txs)
			assert.Equal(t, tt.count, totals.TransactionCount)
			assert.Equal(t, tt.ctrlSum, totals.ControlSumText())
		})
	}
}
