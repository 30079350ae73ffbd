package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRawRecord_Text(t *testing.T) {
	record := RawRecord{
		"string":  "Ali",
		"float":   1500.5,
		"whole":   float64(2000),
		"int":     42,
		"number":  json.Number("12.30"),
		"decimal": decimal.RequireFromString("7.25"),
		"nil":     nil,
		"bool":    true,
	}

	tests := []struct {
		key  string
		want string
	}{
		{"string", "Ali"},
		{"float", "1500.5"},
		{"whole", "2000"},
		{"int", "42"},
		{"number", "12.30"},
		{"decimal", "7.25"},
		{"nil", ""},
		{"missing", ""},
		{"bool", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, record.Text(tt.key))
		})
	}
}

func TestRawRecord_Amount(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{"float", 1500.5, "1500.5", true},
		{"int", 3000, "3000", true},
		{"plain string", "2500.75", "2500.75", true},
		{"padded string", "  100 ", "100", true},
		{"european format", "1 500,50", "1500.5", true},
		{"non-breaking space", "2\u00a0000", "2000", true},
		{"decimal", decimal.RequireFromString("9.99"), "9.99", true},
		{"text", "abc", "0", false},
		{"empty", "", "0", false},
		{"nil", nil, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RawRecord{FieldSalary: tt.value}.Amount(FieldSalary)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, ok := RawRecord{}.Amount(FieldSalary)
	assert.False(t, ok)
}

func TestRecordsFromRows(t *testing.T) {
	rows := [][]string{
		{" Prenom ", "NOM", "", "Salaire"},
		{"Ali", "Benani", "ignored", "1500"},
		{"", "", "", ""},
		{"Sara", "", "", "2000", "extra"},
		{"   "},
	}

	records := RecordsFromRows(rows)

	assert.Equal(t, []RawRecord{
		{"prenom": "Ali", "nom": "Benani", "salaire": "1500"},
		{"prenom": "Sara", "salaire": "2000"},
	}, records)

	assert.Empty(t, RecordsFromRows(nil))
	assert.NotNil(t, RecordsFromRows(nil))
	assert.Empty(t, RecordsFromRows([][]string{{"prenom", "nom"}}))
}

func TestBatchTotals_ControlSumText(t *testing.T) {
	assert.Equal(t, "0.00", BatchTotals{}.ControlSumText())
	assert.Equal(t, "3500.50", BatchTotals{ControlSum: decimal.RequireFromString("3500.5")}.ControlSumText())
}
