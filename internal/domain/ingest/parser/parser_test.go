package parser

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerlens/ledgerlens/internal/domain/ingest/normalizer"
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

var importedAt = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

// buildWorkbook writes the given rows into a fresh single-sheet workbook and
// returns the serialized bytes, optionally password-protected.
func buildWorkbook(t *testing.T, rows [][]interface{}, password string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
	var opts []excelize.Options
	if password != "" {
		opts = append(opts, excelize.Options{Password: password})
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf, opts...)
	require.NoError(t, err)
	return buf.Bytes()
}

func statementRows() [][]interface{} {
	return [][]interface{}{
		{"Example Bank Ltd"},
		{"Account Statement - 0000 1111 2222"},
		{},
		{"Date", "Details", "Ref No./Cheque No.", "Debit", "Credit", "Balance"},
		{"01 Jan 2024", "UPI/DR/123/Acme/x", "REF1", "", "500.00", "1,500.00"},
		{"02 Jan 2024", "UPI/DR/124/Acme/x", "REF2", "200.00", "", "1300.00"},
		{"Total", "", "", "200.00", "500.00", ""},
	}
}

func TestParseStatement(t *testing.T) {
	data := buildWorkbook(t, statementRows(), "")
	p := New(nil)

	result, err := p.Parse(data, "", "jan.xlsx", importedAt)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Diagnostics, "footer and preamble rows must not warn")

	first := result.Transactions[0]
	assert.Equal(t, transaction.TypeCredit, first.Type)
	require.NotNil(t, first.Credit)
	assert.InDelta(t, 500.0, *first.Credit, 0.001)
	assert.Nil(t, first.Debit)
	assert.InDelta(t, 1500.0, first.Balance, 0.001)
	assert.Equal(t, transaction.ChannelInstantTransfer, first.Channel)
	assert.Equal(t, "REF1", first.Reference)

	second := result.Transactions[1]
	assert.Equal(t, transaction.TypeDebit, second.Type)
	require.NotNil(t, second.Debit)
	assert.InDelta(t, 200.0, *second.Debit, 0.001)
	assert.InDelta(t, 1300.0, second.Balance, 0.001)
	assert.Equal(t, transaction.ChannelInstantTransfer, second.Channel)

	for _, tx := range result.Transactions {
		assert.Equal(t, "Acme", normalizer.ExtractMerchant(tx.Narrative))
	}

	require.NotNil(t, result.Range)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.Range.Start)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), result.Range.End)

	assert.Equal(t, "Example Bank Ltd", result.Metadata.BankLabel)
	assert.Equal(t, 2, result.Metadata.TransactionCount)
}

func TestParseDeterministic(t *testing.T) {
	data := buildWorkbook(t, statementRows(), "")
	p := New(nil)

	a, err := p.Parse(data, "", "jan.xlsx", importedAt)
	require.NoError(t, err)
	b, err := p.Parse(data, "", "jan.xlsx", importedAt)
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical input must yield identical output")
}

func TestParseEncrypted(t *testing.T) {
	data := buildWorkbook(t, statementRows(), "hunter2")
	p := New(nil)

	t.Run("correct password", func(t *testing.T) {
		result, err := p.Parse(data, "hunter2", "jan.xlsx", importedAt)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Len(t, result.Transactions, 2)
	})

	t.Run("wrong password", func(t *testing.T) {
		result, err := p.Parse(data, "nope", "jan.xlsx", importedAt)
		require.ErrorIs(t, err, ErrBadPassword)
		assert.False(t, result.Success)
		assert.Empty(t, result.Transactions)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, LevelError, result.Diagnostics[0].Level)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := p.Parse(data, "", "jan.xlsx", importedAt)
		assert.ErrorIs(t, err, ErrBadPassword)
	})
}

func TestParseRejectsGarbage(t *testing.T) {
	p := New(nil)

	result, err := p.Parse([]byte("this is not a spreadsheet at all"), "", "note.txt", importedAt)
	require.Error(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, LevelError, result.Diagnostics[0].Level)
}

func TestParseNoHeaderRow(t *testing.T) {
	rows := make([][]interface{}, 0, 45)
	for i := 0; i < 45; i++ {
		rows = append(rows, []interface{}{"account metadata", "more noise"})
	}
	data := buildWorkbook(t, rows, "")

	_, err := New(nil).Parse(data, "", "noise.xlsx", importedAt)
	assert.ErrorIs(t, err, ErrNoHeaderRow)
}

func TestParseUnmappedColumns(t *testing.T) {
	rows := [][]interface{}{
		{"Date", "Details", "Debit", "Credit", "Balance"}, // no reference column
		{"01 Jan 2024", "UPI/DR/1/Acme/x", "10.00", "", "90.00"},
	}
	data := buildWorkbook(t, rows, "")

	_, err := New(nil).Parse(data, "", "short.xlsx", importedAt)
	var unmapped *UnmappedColumnsError
	require.ErrorAs(t, err, &unmapped)
	assert.Contains(t, unmapped.Missing, "reference")
}

func TestParseRowDiagnostics(t *testing.T) {
	rows := statementRows()
	rows = append(rows[:6:6],
		[]interface{}{"not a date", "POS 1234 SHOP", "REF003", "50.00", "", "1250.00"},
		rows[6])
	data := buildWorkbook(t, rows, "")

	result, err := New(nil).Parse(data, "", "jan.xlsx", importedAt)
	require.NoError(t, err)
	assert.True(t, result.Success, "row-level problems must not abort the parse")
	assert.Len(t, result.Transactions, 2)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, LevelWarning, result.Diagnostics[0].Level)
	assert.Equal(t, 7, result.Diagnostics[0].Row)
	assert.Equal(t, "date", result.Diagnostics[0].Column)
}
