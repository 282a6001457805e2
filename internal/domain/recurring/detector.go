// Package recurring finds subscription- and installment-like obligations by
// testing merchant groups for amount and interval regularity. Results are
// derived wholesale on every run and never persisted.
package recurring

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/domain/ingest/normalizer"
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// Frequency is the classified cadence of a recurring group.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// frequencyBands maps observed mean day-gaps onto cadences. A mean outside
// every band means the group is not recurring.
var frequencyBands = []struct {
	freq      Frequency
	min, max  float64
	idealDays int
}{
	{FrequencyWeekly, 4, 10, 7},
	{FrequencyMonthly, 23, 37, 30},
	{FrequencyQuarterly, 75, 105, 90},
	{FrequencyYearly, 335, 395, 365},
}

// Payment is one detected recurring obligation.
type Payment struct {
	Merchant     string    `json:"merchant"`
	Amount       float64   `json:"amount"` // representative (mean of survivors)
	Frequency    Frequency `json:"frequency"`
	NextExpected time.Time `json:"next_expected"`
	Category     string    `json:"category"`
	Confidence   int       `json:"confidence"` // 0-100
}

// DefaultAmountBand is the relative tolerance around the group mean amount.
const DefaultAmountBand = 0.05

// Detector groups debit transactions by extracted merchant and tests each
// group for regularity. It holds no state between runs.
type Detector struct {
	amountBand float64
	logger     *slog.Logger
}

// NewDetector creates a detector. amountBand <= 0 falls back to the default
// 5% tolerance; a nil logger disables logging.
func NewDetector(amountBand float64, logger *slog.Logger) *Detector {
	if amountBand <= 0 {
		amountBand = DefaultAmountBand
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{amountBand: amountBand, logger: logger}
}

// Detect computes the recurring payments for a transaction snapshot. The
// input is never mutated. Degenerate inputs yield an empty result, never an
// error.
func (d *Detector) Detect(txs []transaction.Transaction) []Payment {
	groups := make(map[string][]transaction.Transaction)
	for _, tx := range txs {
		if !tx.IsDebit() {
			continue
		}
		merchant := normalizer.ExtractMerchant(tx.Narrative)
		if merchant == "" {
			continue
		}
		groups[merchant] = append(groups[merchant], tx)
	}

	merchants := make([]string, 0, len(groups))
	for m := range groups {
		merchants = append(merchants, m)
	}
	sort.Strings(merchants)

	var out []Payment
	for _, merchant := range merchants {
		if p := d.analyzeGroup(merchant, groups[merchant]); p != nil {
			out = append(out, *p)
		}
	}
	d.logger.Debug("recurring detection complete", "merchants", len(groups), "recurring", len(out))
	return out
}

// analyzeGroup applies the amount band, interval classification and
// confidence scoring to one merchant group.
func (d *Detector) analyzeGroup(merchant string, members []transaction.Transaction) *Payment {
	if len(members) < 2 {
		return nil
	}

	var sum float64
	for _, tx := range members {
		sum += tx.Amount
	}
	mean := sum / float64(len(members))

	// Keep members within the amount band of the group mean.
	var survivors []transaction.Transaction
	var survivorSum float64
	for _, tx := range members {
		if mean > 0 && math.Abs(tx.Amount-mean)/mean <= d.amountBand {
			survivors = append(survivors, tx)
			survivorSum += tx.Amount
		}
	}
	if len(survivors) < 2 {
		return nil
	}

	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].Date.Before(survivors[j].Date)
	})

	gaps := make([]float64, 0, len(survivors)-1)
	for i := 1; i < len(survivors); i++ {
		gaps = append(gaps, survivors[i].Date.Sub(survivors[i-1].Date).Hours()/24)
	}
	var gapSum float64
	for _, g := range gaps {
		gapSum += g
	}
	meanGap := gapSum / float64(len(gaps))

	band := classifyGap(meanGap)
	if band == nil {
		return nil
	}

	// Confidence: mean absolute deviation from the ideal period, normalized
	// by 30% of that period.
	var dev float64
	for _, g := range gaps {
		dev += math.Abs(g - float64(band.idealDays))
	}
	dev /= float64(len(gaps))
	confidence := 100 - int(math.Round(dev/(0.3*float64(band.idealDays))*100))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	amount := survivorSum / float64(len(survivors))
	last := survivors[len(survivors)-1].Date

	return &Payment{
		Merchant:     merchant,
		Amount:       amount,
		Frequency:    band.freq,
		NextExpected: last.AddDate(0, 0, band.idealDays),
		Category:     inferCategory(merchant, amount),
		Confidence:   confidence,
	}
}

func classifyGap(meanGap float64) *struct {
	freq      Frequency
	min, max  float64
	idealDays int
} {
	for i := range frequencyBands {
		if meanGap >= frequencyBands[i].min && meanGap <= frequencyBands[i].max {
			return &frequencyBands[i]
		}
	}
	return nil
}

// categoryHints is a closed heuristic over merchant-name substrings.
var categoryHints = []struct {
	category string
	hints    []string
}{
	{"entertainment", []string{"netflix", "spotify", "prime", "hotstar", "disney", "youtube"}},
	{"utilities", []string{"airtel", "jio", "vodafone", "broadband", "electricity", "gas", "water"}},
	{"health", []string{"gym", "fitness", "cult", "yoga"}},
	{"insurance", []string{"insurance", "lic", "policy"}},
	{"housing", []string{"rent", "society", "maintenance"}},
	{"loan", []string{"emi", "loan", "finance", "bajaj"}},
}

func inferCategory(merchant string, amount float64) string {
	lower := strings.ToLower(merchant)
	for _, h := range categoryHints {
		for _, hint := range h.hints {
			if strings.Contains(lower, hint) {
				return h.category
			}
		}
	}
	// Large regular debits with no other signal are usually installments.
	if amount > 5000 {
		return "loan"
	}
	return "subscription"
}
