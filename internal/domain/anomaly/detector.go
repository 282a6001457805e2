// Package anomaly flags suspicious debit transactions: unusually large
// amounts for a merchant, exact duplicates, and single-day spending spikes.
// The three passes are independent and their findings are concatenated, so
// one transaction may be flagged more than once.
package anomaly

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/domain/ingest/normalizer"
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// Kind classifies an anomaly finding.
type Kind string

const (
	KindHighAmount      Kind = "high-amount"
	KindDuplicate       Kind = "duplicate"
	KindUnusualMerchant Kind = "unusual-merchant"
	KindSpendingSpike   Kind = "spending-spike"
)

// Severity grades a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Anomaly references a flagged transaction.
type Anomaly struct {
	TransactionID string   `json:"transaction_id"`
	Kind          Kind     `json:"kind"`
	Severity      Severity `json:"severity"`
	Description   string   `json:"description"`
}

// Options holds the detection thresholds. Duplicate matching is exact by
// design while recurring detection tolerates a 5% band; the two stay
// independently configurable.
type Options struct {
	HighAmountRatio float64 // member vs merchant mean, warning threshold
	CriticalRatio   float64 // escalation threshold
	SpikeRatio      float64 // day total vs average daily total
	DuplicatePlaces int32   // decimal places for the duplicate amount key
}

// DefaultOptions mirrors the documented thresholds: 3x/5x merchant mean,
// 2x daily average, 2-decimal duplicate keys.
func DefaultOptions() Options {
	return Options{HighAmountRatio: 3, CriticalRatio: 5, SpikeRatio: 2, DuplicatePlaces: 2}
}

// Detector runs the three passes over a snapshot. Stateless between runs.
type Detector struct {
	opts   Options
	logger *slog.Logger
}

// NewDetector creates a detector; zero-valued option fields fall back to
// defaults, a nil logger disables logging.
func NewDetector(opts Options, logger *slog.Logger) *Detector {
	def := DefaultOptions()
	if opts.HighAmountRatio <= 0 {
		opts.HighAmountRatio = def.HighAmountRatio
	}
	if opts.CriticalRatio <= 0 {
		opts.CriticalRatio = def.CriticalRatio
	}
	if opts.SpikeRatio <= 0 {
		opts.SpikeRatio = def.SpikeRatio
	}
	if opts.DuplicatePlaces <= 0 {
		opts.DuplicatePlaces = def.DuplicatePlaces
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{opts: opts, logger: logger}
}

// Detect returns the concatenated findings of all three passes. Never errors
// on degenerate input; an empty snapshot yields an empty result.
func (d *Detector) Detect(txs []transaction.Transaction) []Anomaly {
	debits := make([]transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsDebit() {
			debits = append(debits, tx)
		}
	}

	out := d.highAmountPass(debits)
	out = append(out, d.duplicatePass(debits)...)
	out = append(out, d.spikePass(debits)...)
	d.logger.Debug("anomaly detection complete", "debits", len(debits), "findings", len(out))
	return out
}

// highAmountPass flags members exceeding HighAmountRatio times their
// merchant-group mean (the member itself included in the mean).
func (d *Detector) highAmountPass(debits []transaction.Transaction) []Anomaly {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	merchants := make([]string, len(debits))
	for i, tx := range debits {
		m := normalizer.ExtractMerchant(tx.Narrative)
		merchants[i] = m
		sums[m] += tx.Amount
		counts[m]++
	}

	var out []Anomaly
	for i, tx := range debits {
		m := merchants[i]
		if counts[m] < 2 {
			continue // a lone transaction is its own mean
		}
		mean := sums[m] / float64(counts[m])
		if mean <= 0 || tx.Amount <= d.opts.HighAmountRatio*mean {
			continue
		}
		severity := SeverityWarning
		if tx.Amount > d.opts.CriticalRatio*mean {
			severity = SeverityCritical
		}
		out = append(out, Anomaly{
			TransactionID: tx.ID,
			Kind:          KindHighAmount,
			Severity:      severity,
			Description:   fmt.Sprintf("%.2f is %.1fx the usual %.2f at %s", tx.Amount, tx.Amount/mean, mean, m),
		})
	}
	return out
}

// duplicatePass flags every member of an exact (amount, merchant, day)
// collision group of size two or more.
func (d *Detector) duplicatePass(debits []transaction.Transaction) []Anomaly {
	groups := make(map[string][]transaction.Transaction)
	for _, tx := range debits {
		key := fmt.Sprintf("%s|%s|%s",
			decimal.NewFromFloat(tx.Amount).Round(d.opts.DuplicatePlaces).String(),
			normalizer.ExtractMerchant(tx.Narrative),
			transaction.Day(tx.Date).Format("2006-01-02"))
		groups[key] = append(groups[key], tx)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Anomaly
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		for _, tx := range group {
			out = append(out, Anomaly{
				TransactionID: tx.ID,
				Kind:          KindDuplicate,
				Severity:      SeverityWarning,
				Description:   fmt.Sprintf("%d identical charges of %.2f on %s", len(group), tx.Amount, transaction.Day(tx.Date).Format("2006-01-02")),
			})
		}
	}
	return out
}

// spikePass flags every transaction on a day whose debit total exceeds
// SpikeRatio times the average daily total across all active days.
func (d *Detector) spikePass(debits []transaction.Transaction) []Anomaly {
	dayTotals := make(map[string]float64)
	for _, tx := range debits {
		dayTotals[transaction.Day(tx.Date).Format("2006-01-02")] += tx.Amount
	}
	if len(dayTotals) < 2 {
		return nil // a single active day cannot spike against itself
	}

	var total float64
	for _, v := range dayTotals {
		total += v
	}
	avg := total / float64(len(dayTotals))
	if avg <= 0 {
		return nil
	}

	var out []Anomaly
	for _, tx := range debits {
		day := transaction.Day(tx.Date).Format("2006-01-02")
		if dayTotals[day] <= d.opts.SpikeRatio*avg {
			continue
		}
		out = append(out, Anomaly{
			TransactionID: tx.ID,
			Kind:          KindSpendingSpike,
			Severity:      SeverityWarning,
			Description:   fmt.Sprintf("spending of %.2f on %s is above the %.2f daily average", dayTotals[day], day, avg),
		})
	}
	return out
}
