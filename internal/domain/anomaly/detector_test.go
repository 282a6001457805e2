package anomaly

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

func debit(day int, narrative, ref string, amount float64) transaction.Transaction {
	date := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	return transaction.Transaction{
		ID:        transaction.NewID(date, ref, amount),
		Date:      date,
		Narrative: narrative,
		Reference: ref,
		Debit:     &amount,
		Amount:    amount,
		Type:      transaction.TypeDebit,
	}
}

func ofKind(findings []Anomaly, kind Kind) []Anomaly {
	var out []Anomaly
	for _, a := range findings {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func TestHighAmountPass(t *testing.T) {
	d := NewDetector(Options{}, nil)

	t.Run("warning above 3x merchant mean", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(1, "UPI/DR/1/Acme Mart/ok", "R1", 100),
			debit(3, "UPI/DR/2/Acme Mart/ok", "R2", 100),
			debit(5, "UPI/DR/3/Acme Mart/ok", "R3", 100),
			debit(7, "UPI/DR/4/Acme Mart/ok", "R4", 100),
			debit(9, "UPI/DR/5/Acme Mart/ok", "R5", 100),
			debit(11, "UPI/DR/6/Acme Mart/ok", "R6", 600),
		}
		// Mean including the outlier is 183.33; 600 clears 3x but not 5x.
		got := ofKind(d.Detect(txs), KindHighAmount)
		require.Len(t, got, 1)
		assert.Equal(t, txs[5].ID, got[0].TransactionID)
		assert.Equal(t, SeverityWarning, got[0].Severity)
	})

	t.Run("critical above 5x merchant mean", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(1, "UPI/DR/1/Acme Mart/ok", "R1", 10),
			debit(3, "UPI/DR/2/Acme Mart/ok", "R2", 10),
			debit(5, "UPI/DR/3/Acme Mart/ok", "R3", 10),
			debit(7, "UPI/DR/4/Acme Mart/ok", "R4", 10),
			debit(9, "UPI/DR/5/Acme Mart/ok", "R5", 10),
			debit(11, "UPI/DR/6/Acme Mart/ok", "R6", 10),
			debit(13, "UPI/DR/7/Acme Mart/ok", "R7", 1000),
		}
		got := ofKind(d.Detect(txs), KindHighAmount)
		require.Len(t, got, 1)
		assert.Equal(t, SeverityCritical, got[0].Severity)
	})

	t.Run("no member exceeds the threshold", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(1, "UPI/DR/1/Acme Mart/ok", "R1", 100),
			debit(3, "UPI/DR/2/Acme Mart/ok", "R2", 110),
			debit(5, "UPI/DR/3/Acme Mart/ok", "R3", 120),
		}
		assert.Empty(t, ofKind(d.Detect(txs), KindHighAmount))
	})

	t.Run("lone transaction is never high for its merchant", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(1, "UPI/DR/1/Lone Vendor/ok", "R1", 99999),
			debit(2, "UPI/DR/2/Other Vendor/ok", "R2", 10),
			debit(3, "UPI/DR/3/Other Vendor/ok", "R3", 12),
		}
		assert.Empty(t, ofKind(d.Detect(txs), KindHighAmount))
	})
}

func TestDuplicatePass(t *testing.T) {
	d := NewDetector(Options{}, nil)

	t.Run("identical charge flagged for every member", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(5, "UPI/DR/1/Acme Mart/ok", "R1", 250),
			debit(5, "UPI/DR/2/Acme Mart/ok", "R2", 250),
			debit(5, "UPI/DR/3/Acme Mart/ok", "R3", 250),
		}
		got := ofKind(d.Detect(txs), KindDuplicate)
		require.Len(t, got, 3)
		for _, a := range got {
			assert.Equal(t, SeverityWarning, a.Severity)
			assert.Contains(t, a.Description, "3 identical charges")
		}
	})

	t.Run("sub-cent difference still collides", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(5, "UPI/DR/1/Acme Mart/ok", "R1", 250.004),
			debit(5, "UPI/DR/2/Acme Mart/ok", "R2", 250.0),
		}
		assert.Len(t, ofKind(d.Detect(txs), KindDuplicate), 2)
	})

	t.Run("different day breaks the group", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(5, "UPI/DR/1/Acme Mart/ok", "R1", 250),
			debit(6, "UPI/DR/2/Acme Mart/ok", "R2", 250),
		}
		assert.Empty(t, ofKind(d.Detect(txs), KindDuplicate))
	})

	t.Run("different merchant breaks the group", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(5, "UPI/DR/1/Acme Mart/ok", "R1", 250),
			debit(5, "UPI/DR/2/Beta Stores/ok", "R2", 250),
		}
		assert.Empty(t, ofKind(d.Detect(txs), KindDuplicate))
	})

	t.Run("different amount breaks the group", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(5, "UPI/DR/1/Acme Mart/ok", "R1", 250),
			debit(5, "UPI/DR/2/Acme Mart/ok", "R2", 250.02),
		}
		assert.Empty(t, ofKind(d.Detect(txs), KindDuplicate))
	})
}

func TestSpikePass(t *testing.T) {
	d := NewDetector(Options{}, nil)

	t.Run("heavy day flags all of its transactions", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(1, "POS 1 VENDOR A", "R1", 100),
			debit(2, "POS 2 VENDOR B", "R2", 100),
			debit(3, "POS 3 VENDOR C", "R3", 100),
			debit(4, "POS 4 VENDOR D", "R4", 100),
			debit(5, "POS 5 VENDOR E", "R5", 100),
			debit(6, "POS 6 VENDOR F", "R6", 350),
			debit(6, "POS 7 VENDOR G", "R7", 150),
		}
		// Six active days totaling 1000; day six carries 500 against a
		// 166.67 average.
		got := ofKind(d.Detect(txs), KindSpendingSpike)
		require.Len(t, got, 2)
		ids := []string{got[0].TransactionID, got[1].TransactionID}
		assert.ElementsMatch(t, []string{txs[5].ID, txs[6].ID}, ids)
	})

	t.Run("single active day cannot spike", func(t *testing.T) {
		txs := []transaction.Transaction{
			debit(1, "POS 1 VENDOR A", "R1", 100),
			debit(1, "POS 2 VENDOR B", "R2", 900),
		}
		assert.Empty(t, ofKind(d.Detect(txs), KindSpendingSpike))
	})

	t.Run("flat spending never spikes", func(t *testing.T) {
		var txs []transaction.Transaction
		for i := 1; i <= 10; i++ {
			txs = append(txs, debit(i, fmt.Sprintf("POS %d VENDOR X%d", i, i), fmt.Sprintf("R%d", i), 100))
		}
		assert.Empty(t, ofKind(d.Detect(txs), KindSpendingSpike))
	})
}

func TestDetectIgnoresCredits(t *testing.T) {
	salary := 50000.0
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{
		{
			ID: "c1", Date: date, Narrative: "NEFT-N1-EMPLOYER PAYROLL",
			Credit: &salary, Amount: salary, Type: transaction.TypeCredit,
		},
		debit(2, "UPI/DR/1/Acme Mart/ok", "R1", 100),
		debit(4, "UPI/DR/2/Acme Mart/ok", "R2", 100),
	}
	assert.Empty(t, NewDetector(Options{}, nil).Detect(txs))
}

func TestDetectEmptyInput(t *testing.T) {
	assert.Empty(t, NewDetector(Options{}, nil).Detect(nil))
}
