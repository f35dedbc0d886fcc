package extraction

import (
	"time"

	"github.com/google/uuid"

	"github.com/welthfin/backend/internal/model"
)

// StatementTransaction is one row extracted from a bank statement,
// before it is turned into a domain transaction.
type StatementTransaction struct {
	Date        string  `json:"date"` // YYYY-MM-DD, may be empty when unparseable
	Description string  `json:"description"`
	Merchant    string  `json:"merchant,omitempty"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"` // absolute value
	IsDebit     bool    `json:"isDebit"`
	Confidence  float64 `json:"confidence"`
}

// StatementExtraction is the full result of processing one statement.
type StatementExtraction struct {
	Transactions      []StatementTransaction `json:"transactions"`
	MethodUsed        string                 `json:"methodUsed"` // "text" or "gemini"
	OverallConfidence float64                `json:"overallConfidence"`
	PageCount         int                    `json:"pageCount"`
	Warnings          []string               `json:"warnings,omitempty"`
}

// ToTransactions converts extracted rows into domain transactions owned
// by the given user and account. Rows without a parseable date are
// skipped; the caller surfaces the count as a warning.
func (r *StatementExtraction) ToTransactions(userID, accountID string) ([]*model.Transaction, int) {
	now := time.Now().UTC()
	skipped := 0
	txs := make([]*model.Transaction, 0, len(r.Transactions))
	for _, row := range r.Transactions {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			skipped++
			continue
		}
		txType := model.TransactionExpense
		if !row.IsDebit {
			txType = model.TransactionIncome
		}
		description := row.Description
		if row.Merchant != "" {
			description = row.Merchant
		}
		txs = append(txs, &model.Transaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			AccountID:   accountID,
			Type:        txType,
			Category:    row.Category,
			Description: description,
			Amount:      row.Amount,
			Date:        date,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return txs, skipped
}
