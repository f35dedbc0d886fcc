package service

import (
	"fmt"
	"math"
	"time"

	"github.com/welthfin/backend/internal/model"
)

// Demo dataset totals. Income is shaped with a seasonal factor so the
// monthly breakdown is not flat.
const (
	demoAnnualIncome   = 900_000
	demoAnnualExpenses = 360_000
)

// demoExpenseCategories splits the annual expense total across
// categories the deduction classifier recognizes.
var demoExpenseCategories = []struct {
	category string
	share    float64
}{
	{"rent", 0.40},
	{"groceries", 0.15},
	{"utilities", 0.10},
	{"transportation", 0.08},
	{"entertainment", 0.05},
	{"restaurant", 0.07},
	{"insurance", 0.08},
	{"education", 0.07},
}

// generateDemoTransactions builds a year of sample records so users
// without history can preview a tax report. Amounts vary with a
// seasonal sine factor, more in summer months and less in winter.
func generateDemoTransactions(userID, accountID string, accountType model.AccountType, year int) []model.Transaction {
	now := time.Now().UTC()
	incomeCategory := "salary"
	if accountType == model.AccountCurrent {
		incomeCategory = "consulting"
	}

	var txs []model.Transaction
	for month := 0; month < 12; month++ {
		factor := 1 + 0.3*math.Sin(float64(month-3)*math.Pi/6)
		date := time.Date(year, time.Month(month+1), 15, 0, 0, 0, 0, time.UTC)

		txs = append(txs, model.Transaction{
			ID:          fmt.Sprintf("demo-income-%d-%02d", year, month+1),
			UserID:      userID,
			AccountID:   accountID,
			Type:        model.TransactionIncome,
			Category:    incomeCategory,
			Description: "Demo income",
			Amount:      demoAnnualIncome / 12 * factor,
			Date:        date,
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		for _, e := range demoExpenseCategories {
			txs = append(txs, model.Transaction{
				ID:          fmt.Sprintf("demo-%s-%d-%02d", e.category, year, month+1),
				UserID:      userID,
				AccountID:   accountID,
				Type:        model.TransactionExpense,
				Category:    e.category,
				Description: "Demo expense",
				Amount:      demoAnnualExpenses / 12 * e.share * factor,
				Date:        date,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	return txs
}
