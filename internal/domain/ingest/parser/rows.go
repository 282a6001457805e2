package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// Textual date layouts accepted in statement cells, tried in order.
var dateLayouts = []string{
	"02 Jan 2006", // day month-name year
	"2 Jan 2006",
	"02/01/2006", // day/month/year
	"2/1/2006",
	"2006-01-02", // ISO
}

// serialEpoch is the spreadsheet serial-date origin. December 30th rather
// than the 31st: the two-day shift absorbs both the 1-based counting and the
// phantom 1900-02-29 that spreadsheets inherited from Lotus 1-2-3.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate accepts the textual layouts plus numeric spreadsheet serials.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Numeric serial: whole days since the epoch.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 200000 {
		return serialEpoch.AddDate(0, 0, int(serial)), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// parseAmount coerces a statement amount cell to a float. Empty, blank or
// dash cells mean absent and return nil, never zero. Thousands separators
// are stripped before decimal parsing.
func parseAmount(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "--" {
		return nil, nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	f, _ := d.Float64()
	return &f, nil
}

// Footer and summary markers recognized in the first cell of a row. These
// halt processing of that row silently; they are structural noise, not data.
var footerMarkers = []string{
	"total",
	"grand total",
	"opening balance",
	"closing balance",
	"statement summary",
	"end of statement",
	"*",
}

func isFooterRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := normalizeCell(row[0])
	for _, marker := range footerMarkers {
		if strings.HasPrefix(first, marker) {
			return true
		}
	}
	return false
}

// cellAt tolerates the ragged rows excelize returns for trailing blanks.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// normalizeRow converts one data row into a canonical Transaction.
// Returns (nil, nil) for rows that are skipped silently (blank amount rows,
// footer rows) and (nil, diag) for rows dropped with a warning.
func normalizeRow(row []string, rowNum int, m *ColumnMapping, sourceFile string, importedAt time.Time) (*transaction.Transaction, *Diagnostic) {
	if isFooterRow(row) {
		return nil, nil
	}

	debit, err := parseAmount(cellAt(row, m.Debit))
	if err != nil {
		return nil, warn(rowNum, "debit", err.Error())
	}
	credit, err := parseAmount(cellAt(row, m.Credit))
	if err != nil {
		return nil, warn(rowNum, "credit", err.Error())
	}
	if debit == nil && credit == nil {
		// Blank or informational row.
		return nil, nil
	}
	if debit != nil && credit != nil {
		// Malformed export; keep the debit side, it is the conservative read.
		credit = nil
	}

	date, err := parseDate(cellAt(row, m.Date))
	if err != nil {
		return nil, warn(rowNum, "date", err.Error())
	}

	balancePtr, err := parseAmount(cellAt(row, m.Balance))
	if err != nil || balancePtr == nil {
		msg := "missing balance"
		if err != nil {
			msg = err.Error()
		}
		return nil, warn(rowNum, "balance", msg)
	}

	narrative := cellAt(row, m.Narrative)
	reference := cellAt(row, m.Reference)

	tx := &transaction.Transaction{
		Date:       date,
		Narrative:  narrative,
		Reference:  reference,
		Debit:      debit,
		Credit:     credit,
		Balance:    *balancePtr,
		Channel:    ClassifyChannel(narrative),
		SourceFile: sourceFile,
		ImportedAt: importedAt,
	}
	if debit != nil {
		tx.Type = transaction.TypeDebit
		tx.Amount = abs(*debit)
	} else {
		tx.Type = transaction.TypeCredit
		tx.Amount = abs(*credit)
	}
	tx.ID = transaction.NewID(tx.Date, tx.Reference, tx.Amount)
	return tx, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
