package converter

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// Aggregate counts the transactions and sums their amounts exactly. The sum
// is rounded to two decimals only when it is rendered.
func Aggregate(transactions []types.Transaction) types.BatchTotals {
	sum := decimal.Zero
	for _, tx := range transactions {
		sum = sum.Add(tx.Amount)
	}

	return types.BatchTotals{
		TransactionCount: len(transactions),
		ControlSum:       sum,
	}
}
