package parser

import (
	"fmt"
	"strings"
)

// ColumnMapping is the explicit field-to-source-column resolution. Every
// index is validated resolved before any data row is processed.
type ColumnMapping struct {
	Date      int
	Narrative int
	Reference int
	Debit     int
	Credit    int
	Balance   int
}

// UnmappedColumnsError lists the canonical fields that could not be resolved
// against the header row.
type UnmappedColumnsError struct {
	Missing []string
}

func (e *UnmappedColumnsError) Error() string {
	return fmt.Sprintf("unmapped statement columns: %s", strings.Join(e.Missing, ", "))
}

// Ordered alias lists per canonical field. Earlier aliases win; all matching
// is over normalized header text.
var columnAliases = map[string][]string{
	"date":      {"date", "txn date", "transaction date", "value date"},
	"narrative": {"details", "description", "narration", "particulars", "transaction remarks", "remarks"},
	"reference": {"ref no./cheque no.", "ref no", "reference no", "cheque no", "ref./cheque no"},
	"debit":     {"debit", "withdrawal amt", "withdrawal", "dr amount", "dr"},
	"credit":    {"credit", "deposit amt", "deposit", "cr amount", "cr"},
	"balance":   {"balance", "closing balance", "running balance", "bal"},
}

// MapColumns resolves the six canonical fields against a header row. When an
// exact alias match fails for the reference column it falls back to substring
// heuristics, since banks are least consistent there. Any unresolved field
// aborts the mapping.
func MapColumns(header []string) (*ColumnMapping, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeCell(h)
	}

	m := &ColumnMapping{Date: -1, Narrative: -1, Reference: -1, Debit: -1, Credit: -1, Balance: -1}
	fields := []struct {
		name string
		dst  *int
	}{
		{"date", &m.Date},
		{"narrative", &m.Narrative},
		{"reference", &m.Reference},
		{"debit", &m.Debit},
		{"credit", &m.Credit},
		{"balance", &m.Balance},
	}

	taken := make(map[int]bool)
	for _, f := range fields {
		idx := resolveColumn(normalized, columnAliases[f.name], taken)
		if idx < 0 && f.name == "reference" {
			idx = resolveReferenceHeuristic(normalized, taken)
		}
		if idx >= 0 {
			*f.dst = idx
			taken[idx] = true
		}
	}

	var missing []string
	for _, f := range fields {
		if *f.dst < 0 {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &UnmappedColumnsError{Missing: missing}
	}
	return m, nil
}

// resolveColumn tries each alias in order against every unclaimed column.
// An alias matches a column whose text contains it.
func resolveColumn(normalized []string, aliases []string, taken map[int]bool) int {
	for _, alias := range aliases {
		for i, h := range normalized {
			if taken[i] || h == "" {
				continue
			}
			if strings.Contains(h, alias) {
				return i
			}
		}
	}
	return -1
}

// resolveReferenceHeuristic accepts any unclaimed column that looks
// reference-ish when the alias list came up empty.
func resolveReferenceHeuristic(normalized []string, taken map[int]bool) int {
	for i, h := range normalized {
		if taken[i] || h == "" {
			continue
		}
		if strings.Contains(h, "ref") || strings.Contains(h, "chq") || strings.Contains(h, "cheque") {
			return i
		}
	}
	return -1
}
