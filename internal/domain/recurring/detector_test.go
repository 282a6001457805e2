package recurring

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

func debit(date time.Time, narrative string, amount float64) transaction.Transaction {
	return transaction.Transaction{
		ID:        transaction.NewID(date, narrative, amount),
		Date:      date,
		Narrative: narrative,
		Debit:     &amount,
		Amount:    amount,
		Type:      transaction.TypeDebit,
	}
}

func credit(date time.Time, narrative string, amount float64) transaction.Transaction {
	return transaction.Transaction{
		ID:        transaction.NewID(date, narrative, amount),
		Date:      date,
		Narrative: narrative,
		Credit:    &amount,
		Amount:    amount,
		Type:      transaction.TypeCredit,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d-1)
}

func TestDetectMonthly(t *testing.T) {
	txs := []transaction.Transaction{
		debit(day(1), "UPI/DR/1/NETFLIX/okaxis", 499),
		debit(day(31), "UPI/DR/2/NETFLIX/okaxis", 499),
		debit(day(61), "UPI/DR/3/NETFLIX/okaxis", 499),
	}

	got := NewDetector(0, nil).Detect(txs)
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, "Netflix", p.Merchant)
	assert.Equal(t, FrequencyMonthly, p.Frequency)
	assert.InDelta(t, 499.0, p.Amount, 0.001)
	assert.Equal(t, 100, p.Confidence, "exact 30-day gaps are a perfect score")
	assert.Equal(t, day(61).AddDate(0, 0, 30), p.NextExpected)
	assert.Equal(t, "entertainment", p.Category)
}

func TestDetectWeekly(t *testing.T) {
	var txs []transaction.Transaction
	for i := 0; i < 4; i++ {
		txs = append(txs, debit(day(2+7*i), "UPI/DR/9/CULT FIT/okhdfc", 1190))
	}

	got := NewDetector(0, nil).Detect(txs)
	require.Len(t, got, 1)
	assert.Equal(t, FrequencyWeekly, got[0].Frequency)
	assert.Equal(t, "health", got[0].Category)
	assert.Equal(t, 100, got[0].Confidence)
}

func TestDetectImperfectGaps(t *testing.T) {
	// Gaps of 28 and 35 days still classify as monthly but cost confidence.
	txs := []transaction.Transaction{
		debit(day(1), "NEFT-N1-BAJAJ FINANCE-emi", 8500),
		debit(day(29), "NEFT-N2-BAJAJ FINANCE-emi", 8500),
		debit(day(64), "NEFT-N3-BAJAJ FINANCE-emi", 8500),
	}

	got := NewDetector(0, nil).Detect(txs)
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, FrequencyMonthly, p.Frequency)
	assert.Equal(t, "loan", p.Category)
	assert.Equal(t, 61, p.Confidence)
	assert.Less(t, p.Confidence, 100)
}

func TestDetectRejections(t *testing.T) {
	d := NewDetector(0, nil)

	t.Run("varying amounts break the group", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(day(1), "UPI/DR/1/Acme Mart/ok", 100),
			debit(day(31), "UPI/DR/2/Acme Mart/ok", 500),
			debit(day(61), "UPI/DR/3/Acme Mart/ok", 900),
		}
		assert.Empty(t, d.Detect(txs))
	})

	t.Run("gap outside every cadence band", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(day(1), "UPI/DR/1/Acme Mart/ok", 250),
			debit(day(16), "UPI/DR/2/Acme Mart/ok", 250),
			debit(day(31), "UPI/DR/3/Acme Mart/ok", 250),
		}
		assert.Empty(t, d.Detect(txs))
	})

	t.Run("single occurrence", func(t *testing.T) {
		assert.Empty(t, d.Detect([]transaction.Transaction{
			debit(day(1), "UPI/DR/1/NETFLIX/ok", 499),
		}))
	})

	t.Run("credits are never obligations", func(t *testing.T) {
		txs := []transaction.Transaction{
			credit(day(1), "NEFT-N1-EMPLOYER PAYROLL-jan", 50000),
			credit(day(31), "NEFT-N2-EMPLOYER PAYROLL-feb", 50000),
			credit(day(61), "NEFT-N3-EMPLOYER PAYROLL-mar", 50000),
		}
		assert.Empty(t, d.Detect(txs))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, d.Detect(nil))
	})
}

func TestDetectIgnoresOneOffNoise(t *testing.T) {
	faker := gofakeit.New(7)
	txs := []transaction.Transaction{
		debit(day(1), "UPI/DR/1/NETFLIX/okaxis", 499),
		debit(day(31), "UPI/DR/2/NETFLIX/okaxis", 499),
		debit(day(61), "UPI/DR/3/NETFLIX/okaxis", 499),
	}
	// One-off purchases from distinct merchants; the numeric suffix keeps
	// every generated merchant unique even if the faker repeats a name.
	for i := 0; i < 25; i++ {
		narrative := fmt.Sprintf("POS %04d %s STORE%02d", 1000+i, faker.Company(), i)
		txs = append(txs, debit(day(1+i*2), narrative, faker.Float64Range(50, 5000)))
	}

	got := NewDetector(0, nil).Detect(txs)
	require.Len(t, got, 1)
	assert.Equal(t, "Netflix", got[0].Merchant)
}

func TestDetectDeterministicOrder(t *testing.T) {
	txs := []transaction.Transaction{
		debit(day(1), "UPI/DR/1/SPOTIFY/ok", 119),
		debit(day(31), "UPI/DR/2/SPOTIFY/ok", 119),
		debit(day(2), "UPI/DR/3/NETFLIX/ok", 499),
		debit(day(32), "UPI/DR/4/NETFLIX/ok", 499),
	}

	d := NewDetector(0, nil)
	first := d.Detect(txs)
	require.Len(t, first, 2)
	assert.Equal(t, "Netflix", first[0].Merchant, "results sort by merchant")
	assert.Equal(t, "Spotify", first[1].Merchant)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, d.Detect(txs))
	}
}
