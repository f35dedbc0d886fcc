package tax

import (
	"math"
	"time"

	"github.com/welthfin/backend/internal/model"
)

// normalizedTransaction is the canonical signed-amount form consumed by
// the downstream stages: income positive, expense negative.
type normalizedTransaction struct {
	ID           string
	Category     string
	Description  string
	Date         time.Time
	SignedAmount float64
}

// normalizeTransactions converts raw records to signed-amount form and
// filters to the target calendar year. An empty result is valid input
// for every later stage. The first malformed record aborts with a
// ValidationError identifying it.
func normalizeTransactions(txs []model.Transaction, year int) ([]normalizedTransaction, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	out := make([]normalizedTransaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.IsZero() {
			return nil, &ValidationError{TransactionID: t.ID, Field: "date", Message: "is missing"}
		}
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			return nil, &ValidationError{TransactionID: t.ID, Field: "amount", Message: "is not finite"}
		}
		if t.Amount < 0 {
			return nil, &ValidationError{TransactionID: t.ID, Field: "amount", Message: "is negative; direction is carried by type"}
		}

		var signed float64
		switch t.Type {
		case model.TransactionIncome:
			signed = t.Amount
		case model.TransactionExpense:
			signed = -t.Amount
		default:
			return nil, &ValidationError{TransactionID: t.ID, Field: "type", Message: "is not INCOME or EXPENSE"}
		}

		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}

		out = append(out, normalizedTransaction{
			ID:           t.ID,
			Category:     t.Category,
			Description:  t.Description,
			Date:         t.Date,
			SignedAmount: signed,
		})
	}
	return out, nil
}
