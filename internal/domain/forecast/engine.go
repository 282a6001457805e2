// Package forecast projects near-term balances and cash flow from historical
// daily averages plus detected recurring obligations. Every result is
// regenerated from the full snapshot; nothing is incrementally patched.
package forecast

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/domain/recurring"
	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// Band is a symmetric confidence interval around a point estimate.
type Band struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// BalanceForecast is the projected end-of-period balance.
type BalanceForecast struct {
	TargetDate  time.Time `json:"target_date"`
	Predicted   float64   `json:"predicted"`
	Confidence  Band      `json:"confidence"`
	Assumptions []string  `json:"assumptions"`
}

// ProjectedDay is one step of a cash-flow projection.
type ProjectedDay struct {
	Date    time.Time `json:"date"`
	Net     float64   `json:"net"`
	Balance float64   `json:"balance"`
}

// CashFlowProjection is a day-by-day projection over a caller-chosen horizon.
type CashFlowProjection struct {
	HorizonDays int            `json:"horizon_days"`
	Days        []ProjectedDay `json:"days"`
	Assumptions []string       `json:"assumptions"`
}

// WarningLevel grades a forecast for downstream display.
type WarningLevel string

const (
	WarningNone     WarningLevel = "none"
	WarningLow      WarningLevel = "warning"
	WarningCritical WarningLevel = "critical"
)

// Engine computes forecasts. The low-balance floor is the only knob.
type Engine struct {
	floor  float64
	logger *slog.Logger
}

// NewEngine creates a forecast engine. floor is the balance below which a
// positive forecast still warrants a warning; a nil logger disables logging.
func NewEngine(floor float64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{floor: floor, logger: logger}
}

// dailyStats aggregates the snapshot into per-day figures over the observed
// span. Days without transactions count as zero-flow days.
type dailyStats struct {
	span          *transaction.DateRange
	days          int
	avgIncome     float64
	avgExpense    float64
	netStdDev     float64
	latestBalance float64
}

func computeDailyStats(txs []transaction.Transaction) *dailyStats {
	span := transaction.RangeOf(txs)
	if span == nil {
		return nil
	}
	days := span.Days()

	nets := make(map[string]float64, days)
	var income, expense float64
	for _, tx := range txs {
		day := transaction.Day(tx.Date).Format("2006-01-02")
		if tx.IsDebit() {
			expense += tx.Amount
			nets[day] -= tx.Amount
		} else {
			income += tx.Amount
			nets[day] += tx.Amount
		}
	}

	avgNet := (income - expense) / float64(days)
	var variance float64
	for d := transaction.Day(span.Start); !d.After(transaction.Day(span.End)); d = d.AddDate(0, 0, 1) {
		net := nets[d.Format("2006-01-02")]
		variance += (net - avgNet) * (net - avgNet)
	}
	variance /= float64(days)

	return &dailyStats{
		span:          span,
		days:          days,
		avgIncome:     income / float64(days),
		avgExpense:    expense / float64(days),
		netStdDev:     math.Sqrt(variance),
		latestBalance: transaction.SummarizeBalances(txs).Latest,
	}
}

// ForecastEndOfPeriod projects the balance at the end of the calendar month
// of the newest transaction. Using the data's own month rather than
// wall-clock today keeps results reproducible on historical statements.
// Returns nil for an empty snapshot.
func (e *Engine) ForecastEndOfPeriod(txs []transaction.Transaction, obligations []recurring.Payment) *BalanceForecast {
	stats := computeDailyStats(txs)
	if stats == nil {
		return nil
	}

	last := transaction.Day(stats.span.End)
	endOfMonth := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1)
	remaining := int(endOfMonth.Sub(last).Hours() / 24)

	predicted := stats.latestBalance + (stats.avgIncome-stats.avgExpense)*float64(remaining)

	assumptions := []string{
		fmt.Sprintf("average daily income %.2f and expense %.2f over %d observed days", stats.avgIncome, stats.avgExpense, stats.days),
		fmt.Sprintf("linear projection across %d remaining days of the period", remaining),
	}

	// Recurring obligations falling due inside the window are charged on
	// top of the daily average.
	for _, ob := range obligations {
		due := transaction.Day(ob.NextExpected)
		if due.After(last) && !due.After(endOfMonth) {
			predicted -= ob.Amount
			assumptions = append(assumptions,
				fmt.Sprintf("recurring payment %.2f to %s expected on %s", ob.Amount, ob.Merchant, due.Format("2006-01-02")))
		}
	}

	spread := stats.netStdDev * float64(remaining)
	f := &BalanceForecast{
		TargetDate:  endOfMonth,
		Predicted:   predicted,
		Confidence:  Band{Low: predicted - spread, High: predicted + spread},
		Assumptions: assumptions,
	}
	e.logger.Debug("balance forecast",
		"target", f.TargetDate.Format("2006-01-02"), "predicted", f.Predicted,
		"low", f.Confidence.Low, "high", f.Confidence.High)
	return f
}

// ProjectCashFlow produces a day-by-day projection for horizonDays past the
// newest transaction. Returns nil for an empty snapshot or a non-positive
// horizon.
func (e *Engine) ProjectCashFlow(txs []transaction.Transaction, obligations []recurring.Payment, horizonDays int) *CashFlowProjection {
	stats := computeDailyStats(txs)
	if stats == nil || horizonDays <= 0 {
		return nil
	}

	dailyNet := stats.avgIncome - stats.avgExpense
	dueByDay := make(map[string]float64)
	for _, ob := range obligations {
		dueByDay[transaction.Day(ob.NextExpected).Format("2006-01-02")] += ob.Amount
	}

	balance := stats.latestBalance
	start := transaction.Day(stats.span.End)
	days := make([]ProjectedDay, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		date := start.AddDate(0, 0, i)
		net := dailyNet - dueByDay[date.Format("2006-01-02")]
		balance += net
		days = append(days, ProjectedDay{Date: date, Net: net, Balance: balance})
	}

	return &CashFlowProjection{
		HorizonDays: horizonDays,
		Days:        days,
		Assumptions: []string{
			fmt.Sprintf("average daily net cash flow %.2f over %d observed days", dailyNet, stats.days),
			fmt.Sprintf("%d recurring obligations charged on their expected dates", len(obligations)),
		},
	}
}

// Warn grades a forecast: negative point estimate is critical; a positive
// estimate under the floor, or a confidence band dipping below zero, is a
// warning.
func (e *Engine) Warn(f *BalanceForecast) (WarningLevel, string) {
	if f == nil {
		return WarningNone, ""
	}
	switch {
	case f.Predicted < 0:
		return WarningCritical, fmt.Sprintf("projected balance is negative (%.2f) by %s", f.Predicted, f.TargetDate.Format("2006-01-02"))
	case f.Predicted < e.floor:
		return WarningLow, fmt.Sprintf("projected balance %.2f is below the %.2f floor", f.Predicted, e.floor)
	case f.Confidence.Low < 0:
		return WarningLow, fmt.Sprintf("balance could fall as low as %.2f", f.Confidence.Low)
	default:
		return WarningNone, ""
	}
}
