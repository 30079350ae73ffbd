package xlsxparser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// buildWorkbook writes rows to the first sheet of a new workbook.
func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadRecords(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{" Prenom", "NOM", "Rib", "salaire", "extra"},
		{"Jean", "Dupont", "013 780100000123", 1500.5, "x"},
		{"", "", "", "", ""},
		{"Amina", "Alaoui", "", "", ""},
	})

	records, err := ReadRecords(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Jean", first.Text(types.FieldFirstName))
	assert.Equal(t, "Dupont", first.Text(types.FieldLastName))
	assert.Equal(t, "013 780100000123", first.Text(types.FieldRIB))
	assert.Equal(t, "x", first.Text("extra"))

	amount, ok := first.Amount(types.FieldSalary)
	assert.True(t, ok)
	assert.Equal(t, "1500.5", amount.String())

	second := records[1]
	assert.Equal(t, "Amina", second.Text(types.FieldFirstName))
	_, present := second[types.FieldRIB]
	assert.False(t, present)
	_, ok = second.Amount(types.FieldSalary)
	assert.False(t, ok)
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	buf := buildWorkbook(t, [][]any{{"prenom", "nom", "salaire"}})

	records, err := ReadRecords(buf)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadRecords_NotAWorkbook(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("prenom,nom\nJean,Dupont\n"))
	assert.Error(t, err)
}

func TestWriteSample(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSample(&buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, SampleHeaders, rows[0])

	styleID, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	// The sample must be accepted by the reader it is meant for.
	records, err := ReadRecords(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "013780100000123", records[0].Text(types.FieldRIB))
	assert.Equal(t, "CIHMMAMC", records[1].Text(types.FieldBIC))
}
