package converter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payroll-pain001/internal/bankcode"
	"github.com/ginjaninja78/payroll-pain001/internal/config"
	"github.com/ginjaninja78/payroll-pain001/internal/types"
	"github.com/ginjaninja78/payroll-pain001/internal/validation"
)

var fixedTime = time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)

// painDocument holds the fields the pipeline tests check.
type painDocument struct {
	MsgID   string `xml:"CstmrCdtTrfInitn>GrpHdr>MsgId"`
	CreDtTm string `xml:"CstmrCdtTrfInitn>GrpHdr>CreDtTm"`
	NbOfTxs string `xml:"CstmrCdtTrfInitn>GrpHdr>NbOfTxs"`
	CtrlSum string `xml:"CstmrCdtTrfInitn>GrpHdr>CtrlSum"`
	Txs     []struct {
		EndToEndID string `xml:"PmtId>EndToEndId"`
		Amount     string `xml:"Amt>InstdAmt"`
		BIC        string `xml:"CdtrAgt>FinInstnId>BIC"`
		Name       string `xml:"Cdtr>Nm"`
		Account    string `xml:"CdtrAcct>Id>Othr>Id"`
		Ustrd      string `xml:"RmtInf>Ustrd"`
	} `xml:"CstmrCdtTrfInitn>PmtInf>CdtTrfTxInf"`
}

func newTestConverter(t *testing.T) *Converter {
	t.Helper()
	table, err := bankcode.Default()
	require.NoError(t, err)

	c := NewFromConfig(config.DefaultMainConfig(), table, nil)
	c.now = func() time.Time { return fixedTime }
	return c
}

func testMetadata(pmtInfID string) types.BatchMetadata {
	return types.BatchMetadata{
		MessageID:              "MSG-" + pmtInfID,
		PaymentInfoID:          pmtInfID,
		RequestedExecutionDate: "2024-02-01",
		RemittanceType:         "SALAIRE",
	}
}

func parseDocument(t *testing.T, data []byte) painDocument {
	t.Helper()
	var doc painDocument
	require.NoError(t, xml.Unmarshal(data, &doc))
	return doc
}

func workbook(t *testing.T, rows [][]any) []byte {
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
	return buf.Bytes()
}

func TestConvert_EndToEnd(t *testing.T) {
	c := newTestConverter(t)

	rows := []types.RawRecord{
		{"prenom": "Jean", "nom": "Dupont", "rib": "013 780100000123", "salaire": "1500.50"},
		{"prenom": "Amina", "nom": "Alaoui", "rib": "999780100000123", "salaire": 1500},
		{"prenom": "Sans", "nom": "Compte"},
	}

	result, err := c.Convert(rows, testMetadata("PMT-001"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.Rows)
	assert.Equal(t, 1, result.Stats.UnresolvedBankCodes)
	assert.Equal(t, 3, result.Stats.Totals.TransactionCount)
	assert.Equal(t, "3000.50", result.Stats.Totals.ControlSumText())
	assert.Equal(t, 1, validation.CountRule(result.Issues, validation.RuleMissingAccount))

	doc := parseDocument(t, result.Document)
	assert.Equal(t, "AXV PMT-001", doc.MsgID)
	assert.Equal(t, "2024-01-31T09:30:00.000Z", doc.CreDtTm)
	assert.Equal(t, "3", doc.NbOfTxs)
	assert.Equal(t, "3000.50", doc.CtrlSum)

	require.Len(t, doc.Txs, 3)
	assert.Equal(t, "PMT-001-00001", doc.Txs[0].EndToEndID)
	assert.Equal(t, "BMCIMAMC", doc.Txs[0].BIC)
	assert.Equal(t, "013780100000123", doc.Txs[0].Account)
	assert.Equal(t, "Jean Dupont", doc.Txs[0].Name)
	assert.Equal(t, "1500.5", doc.Txs[0].Amount)
	assert.Equal(t, "SALAIRE", doc.Txs[0].Ustrd)

	assert.Equal(t, types.Unknown, doc.Txs[1].BIC)
	assert.Equal(t, "999780100000123", doc.Txs[1].Account)

	assert.Equal(t, types.Unknown, doc.Txs[2].BIC)
	assert.Equal(t, types.Unknown, doc.Txs[2].Account)
	assert.Equal(t, "0", doc.Txs[2].Amount)
}

func TestConvert_EmptyRows(t *testing.T) {
	result, err := newTestConverter(t).Convert(nil, testMetadata("EMPTY"))
	require.NoError(t, err)

	doc := parseDocument(t, result.Document)
	assert.Equal(t, "0", doc.NbOfTxs)
	assert.Equal(t, "0.00", doc.CtrlSum)
	assert.Empty(t, doc.Txs)
}

func TestConvert_AdversarialText(t *testing.T) {
	meta := testMetadata("PMT-X")
	meta.RemittanceType = "O'Brien & <Co>"

	rows := []types.RawRecord{{"prenom": "<script>", "nom": "&amp;", "rib": "013 1", "salaire": "1"}}

	result, err := newTestConverter(t).Convert(rows, meta)
	require.NoError(t, err)

	assert.Contains(t, string(result.Document), "O&#39;Brien &amp; &lt;Co&gt;")
	doc := parseDocument(t, result.Document)
	assert.Equal(t, "O'Brien & <Co>", doc.Txs[0].Ustrd)
	assert.Equal(t, "script amp", doc.Txs[0].Name)
}

func TestConvert_MissingMetadata(t *testing.T) {
	meta := testMetadata("PMT")
	meta.RemittanceType = ""
	meta.MessageID = " "

	_, err := newTestConverter(t).Convert([]types.RawRecord{{"salaire": 1}}, meta)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingMetadata))
	assert.Equal(t, "missing_metadata", Kind(err))
	assert.Contains(t, err.Error(), "msg_id")
	assert.Contains(t, err.Error(), "type")
}

func TestConvertBytes_Workbook(t *testing.T) {
	data := workbook(t, [][]any{
		{"PRENOM", "Nom", "RIB", "Salaire", "Currency"},
		{"Élodie", "Léger", "230 780100000123", 2500.25, "MAD"},
		{"Karim", "Bennani", "013780100000999", "1000", ""},
	})

	result, err := newTestConverter(t).ConvertBytes(data, "payroll.xlsx", testMetadata("PMT-XL"))
	require.NoError(t, err)

	doc := parseDocument(t, result.Document)
	require.Len(t, doc.Txs, 2)
	assert.Equal(t, "Elodie Leger", doc.Txs[0].Name)
	assert.Equal(t, "CIHMMAMC", doc.Txs[0].BIC)
	assert.Equal(t, "2500.25", doc.Txs[0].Amount)
	assert.Equal(t, "BMCIMAMC", doc.Txs[1].BIC)
	assert.Equal(t, "3500.25", doc.CtrlSum)
}

func TestConvertBytes_CSV(t *testing.T) {
	cfg := config.DefaultMainConfig()
	cfg.CSVSettings.Delimiter = ";"
	table, err := bankcode.Default()
	require.NoError(t, err)

	c := NewFromConfig(cfg, table, nil)
	input := "prenom;nom;rib;salaire\nJean;Dupont;013 780100000123;1 500,50\n"

	result, err := c.ConvertBytes([]byte(input), "payroll.CSV", testMetadata("PMT-CSV"))
	require.NoError(t, err)

	doc := parseDocument(t, result.Document)
	require.Len(t, doc.Txs, 1)
	assert.Equal(t, "BMCIMAMC", doc.Txs[0].BIC)
	assert.Equal(t, "1500.5", doc.Txs[0].Amount)
}

func TestConvertBytes_Unreadable(t *testing.T) {
	c := newTestConverter(t)

	tests := []struct {
		name     string
		data     []byte
		filename string
	}{
		{name: "empty", data: nil, filename: "a.xlsx"},
		{name: "unknown type", data: []byte("%PDF-1.4"), filename: "a.pdf"},
		{name: "legacy xls", data: append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0, 0), filename: "a.xls"},
		{name: "broken zip", data: []byte("PK\x03\x04 not really a workbook"), filename: "a.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ConvertBytes(tt.data, tt.filename, testMetadata("P"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnreadableInput))
			assert.Equal(t, "unreadable_input", Kind(err))
		})
	}
}

func TestConvertBytes_MetadataCheckedFirst(t *testing.T) {
	_, err := newTestConverter(t).ConvertBytes([]byte("garbage"), "a.pdf", types.BatchMetadata{})
	assert.True(t, errors.Is(err, ErrMissingMetadata))
}

func TestConvertReader_NoInput(t *testing.T) {
	_, err := newTestConverter(t).ConvertReader(nil, "", testMetadata("P"))
	assert.True(t, errors.Is(err, ErrNoInput))
}

func TestConvertFile(t *testing.T) {
	c := newTestConverter(t)
	dir := t.TempDir()

	_, err := c.ConvertFile(filepath.Join(dir, "missing.xlsx"), testMetadata("P"))
	assert.True(t, errors.Is(err, ErrNoInput))

	path := filepath.Join(dir, "payroll.xlsx")
	require.NoError(t, os.WriteFile(path, workbook(t, [][]any{{"prenom", "salaire"}, {"Jean", 10}}), 0644))

	result, err := c.ConvertFile(path, testMetadata("P"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Rows)
}

func TestConvert_ConcurrentBatchesDoNotInterfere(t *testing.T) {
	c := newTestConverter(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			pmtInfID := fmt.Sprintf("PMT-%02d", i)
			rows := make([]types.RawRecord, i+1)
			for j := range rows {
				rows[j] = types.RawRecord{"prenom": pmtInfID, "rib": "013780100000123", "salaire": 1}
			}

			result, err := c.Convert(rows, testMetadata(pmtInfID))
			if err != nil {
				errs <- err
				return
			}

			var doc painDocument
			if err := xml.Unmarshal(result.Document, &doc); err != nil {
				errs <- err
				return
			}
			if doc.MsgID != "AXV "+pmtInfID || len(doc.Txs) != i+1 {
				errs <- fmt.Errorf("batch %s: got MsgId %q with %d transactions", pmtInfID, doc.MsgID, len(doc.Txs))
				return
			}
			for _, tx := range doc.Txs {
				if !strings.HasPrefix(tx.EndToEndID, pmtInfID+"-") || tx.Name != strings.ReplaceAll(pmtInfID, "-", "") {
					errs <- fmt.Errorf("batch %s: foreign transaction %s", pmtInfID, tx.EndToEndID)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestWriteDocument(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteDocument(filepath.Join(dir, "out.xml"), []byte("<a/>")))

	err := WriteDocument(filepath.Join(dir, "missing", "out.xml"), []byte("<a/>"))
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.Equal(t, "delivery_failure", Kind(err))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "no_input", Kind(ErrNoInput))
	assert.Equal(t, "serialization_failure", Kind(fmt.Errorf("x: %w", ErrSerialization)))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}
