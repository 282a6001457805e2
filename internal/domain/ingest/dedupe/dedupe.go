// Package dedupe removes duplicate transactions and reconciles repeated
// statement uploads. Identity is the composite key of day-truncated date and
// bank reference; deduplication keeps the first-seen record per key and is
// idempotent, which makes re-importing an identical file a no-op.
package dedupe

import (
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// MergeStats reports what a merge did. Overlap is the date-range
// intersection of the two inputs and is informational only; it never affects
// which transactions survive.
type MergeStats struct {
	DuplicatesRemoved int                    `json:"duplicates_removed"`
	NetNew            int                    `json:"net_new"`
	Overlap           *transaction.DateRange `json:"overlap,omitempty"`
}

// Dedupe returns the input with duplicates removed, keeping the first
// occurrence per composite key. Input order is preserved; the input slice is
// never mutated.
func Dedupe(txs []transaction.Transaction) []transaction.Transaction {
	seen := make(map[string]bool, len(txs))
	out := make([]transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		key := tx.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tx)
	}
	return out
}

// Merge combines an existing transaction set with an incoming upload.
// Existing records always win over incoming ones with the same key, so user
// edits (tags, notes, review flags) survive re-uploads. Never errors.
func Merge(existing, incoming []transaction.Transaction) ([]transaction.Transaction, MergeStats) {
	existing = Dedupe(existing)

	stats := MergeStats{
		Overlap: transaction.RangeOf(existing).Intersect(transaction.RangeOf(incoming)),
	}

	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]transaction.Transaction, 0, len(existing)+len(incoming))
	for _, tx := range existing {
		seen[tx.Key()] = true
		merged = append(merged, tx)
	}
	for _, tx := range incoming {
		key := tx.Key()
		if seen[key] {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		merged = append(merged, tx)
		stats.NetNew++
	}
	return merged, stats
}
