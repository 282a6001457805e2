// Package transaction defines the canonical transaction model produced by
// statement ingestion and consumed by every detector.
package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Type indicates the direction of money movement.
type Type string

const (
	TypeDebit  Type = "debit"
	TypeCredit Type = "credit"
)

// Channel is the closed classification of the transfer mechanism.
type Channel string

const (
	ChannelInstantTransfer   Channel = "instant-transfer"
	ChannelWire              Channel = "wire"
	ChannelImmediateTransfer Channel = "immediate-transfer"
	ChannelATM               Channel = "atm"
	ChannelPointOfSale       Channel = "point-of-sale"
	ChannelCheque            Channel = "cheque"
	ChannelOther             Channel = "other"
)

// Transaction is the canonical record for a single statement row.
// Ingestion is the sole writer of every field except TagIDs (owned by the
// categorization matcher) and the user-facing fields Note, ManualTagOverride,
// Reviewed and CustomLabels.
type Transaction struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Narrative string    `json:"narrative"`
	Reference string    `json:"reference"`

	// Exactly one of Debit/Credit is non-nil. Absent means the statement
	// cell was empty, never zero.
	Debit  *float64 `json:"debit,omitempty"`
	Credit *float64 `json:"credit,omitempty"`

	Balance float64 `json:"balance"`
	Amount  float64 `json:"amount"` // absolute value of whichever side is set
	Type    Type    `json:"type"`
	Channel Channel `json:"channel"`

	TagIDs            []string `json:"tag_ids,omitempty"`
	ManualTagOverride bool     `json:"manual_tag_override"`
	Note              string   `json:"note,omitempty"`
	CustomLabels      []string `json:"custom_labels,omitempty"`
	Reviewed          bool     `json:"reviewed"`

	SourceFile string    `json:"source_file"`
	ImportedAt time.Time `json:"imported_at"`
}

// NewID derives the stable transaction identifier. It is a pure function of
// date, bank reference and amount so that re-parsing identical input always
// yields the same ID.
func NewID(date time.Time, reference string, amount float64) string {
	payload := fmt.Sprintf("%s|%s|%.2f", date.Format("2006-01-02"), reference, amount)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:16])
}

// Day returns the transaction date truncated to midnight UTC. Composite
// duplicate keys are built on this.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key is the composite duplicate-identity key: day-truncated date plus bank
// reference.
func (t *Transaction) Key() string {
	return Day(t.Date).Format("2006-01-02") + "|" + t.Reference
}

// IsDebit reports whether the transaction moved money out of the account.
func (t *Transaction) IsDebit() bool {
	return t.Type == TypeDebit
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RangeOf computes the covering date range of a transaction set. Returns nil
// for an empty set.
func RangeOf(txs []Transaction) *DateRange {
	if len(txs) == 0 {
		return nil
	}
	r := &DateRange{Start: txs[0].Date, End: txs[0].Date}
	for _, tx := range txs[1:] {
		if tx.Date.Before(r.Start) {
			r.Start = tx.Date
		}
		if tx.Date.After(r.End) {
			r.End = tx.Date
		}
	}
	return r
}

// Intersect returns the overlap of two ranges, or nil when they are disjoint.
func (r *DateRange) Intersect(other *DateRange) *DateRange {
	if r == nil || other == nil {
		return nil
	}
	start := r.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := r.End
	if other.End.Before(end) {
		end = other.End
	}
	if start.After(end) {
		return nil
	}
	return &DateRange{Start: start, End: end}
}

// Days returns the number of calendar days the range covers, minimum 1.
func (r *DateRange) Days() int {
	if r == nil {
		return 0
	}
	d := int(Day(r.End).Sub(Day(r.Start)).Hours()/24) + 1
	if d < 1 {
		d = 1
	}
	return d
}

// BalanceSummary aggregates the running-balance column of a set.
type BalanceSummary struct {
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
	Average float64 `json:"average"`
	Latest  float64 `json:"latest"`
}

// SummarizeBalances computes balance bounds over a non-empty set. Latest is
// the balance of the chronologically newest transaction. Returns nil for an
// empty set.
func SummarizeBalances(txs []Transaction) *BalanceSummary {
	if len(txs) == 0 {
		return nil
	}
	s := &BalanceSummary{
		Highest: txs[0].Balance,
		Lowest:  txs[0].Balance,
		Latest:  txs[0].Balance,
	}
	latestDate := txs[0].Date
	var sum float64
	for _, tx := range txs {
		if tx.Balance > s.Highest {
			s.Highest = tx.Balance
		}
		if tx.Balance < s.Lowest {
			s.Lowest = tx.Balance
		}
		if !tx.Date.Before(latestDate) {
			latestDate = tx.Date
			s.Latest = tx.Balance
		}
		sum += tx.Balance
	}
	s.Average = sum / float64(len(txs))
	return s
}
