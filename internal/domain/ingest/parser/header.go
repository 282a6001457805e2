package parser

import (
	"errors"
	"strings"
)

// ErrNoHeaderRow is returned when no row in the scanned window carries the
// full set of statement columns. Ingestion must fail rather than guess.
var ErrNoHeaderRow = errors.New("could not locate statement header row")

// maxHeaderScanRows bounds the search window; real exports put account-info
// rows above the header but never this many.
const maxHeaderScanRows = 40

// Token classes a header row must carry simultaneously.
var (
	dateTokens      = []string{"date", "txn date", "transaction date", "value date"}
	narrativeTokens = []string{"details", "description", "narration", "particulars", "remarks"}
	debitTokens     = []string{"debit", "withdrawal", "dr amount", "dr"}
	creditTokens    = []string{"credit", "deposit", "cr amount", "cr"}
	balanceTokens   = []string{"balance", "bal"}
)

// normalizeCell lowercases, trims and collapses interior whitespace.
func normalizeCell(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// LocateHeaderRow scans at most the first maxHeaderScanRows rows of the grid
// for a row that contains date-, narrative-, debit-, credit- and balance-like
// cells at once. Returns the row index, or ErrNoHeaderRow.
func LocateHeaderRow(rows [][]string) (int, error) {
	limit := len(rows)
	if limit > maxHeaderScanRows {
		limit = maxHeaderScanRows
	}

	for i := 0; i < limit; i++ {
		var hasDate, hasNarrative, hasDebit, hasCredit, hasBalance bool
		for _, cell := range rows[i] {
			c := normalizeCell(cell)
			if c == "" {
				continue
			}
			hasDate = hasDate || containsAny(c, dateTokens)
			hasNarrative = hasNarrative || containsAny(c, narrativeTokens)
			hasDebit = hasDebit || containsAny(c, debitTokens)
			hasCredit = hasCredit || containsAny(c, creditTokens)
			hasBalance = hasBalance || containsAny(c, balanceTokens)
		}
		if hasDate && hasNarrative && hasDebit && hasCredit && hasBalance {
			return i, nil
		}
	}

	return 0, ErrNoHeaderRow
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
