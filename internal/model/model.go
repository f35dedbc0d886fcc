// Package model defines the domain types shared by the store, the RPC
// surface and the tax engine. All types are plain structs serialized as
// JSON with ISO-8601 dates and plain decimal numbers.
package model

import "time"

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// AccountType determines tax treatment: CURRENT is a business-style
// account (always itemized, business brackets, surcharge and cess),
// SAVINGS is a personal-style account.
type AccountType string

const (
	AccountSavings AccountType = "SAVINGS"
	AccountCurrent AccountType = "CURRENT"
)

// TaxRegime selects the standard-deduction rule and bracket table for
// SAVINGS accounts. Ignored for CURRENT accounts.
type TaxRegime string

const (
	RegimeNew TaxRegime = "new"
	RegimeOld TaxRegime = "old"
)

// User is an authenticated application user.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Account is a user's financial account. Exactly one account per user
// is the default; the tax engine consumes the default account's type.
type Account struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   float64     `json:"balance"`
	IsDefault bool        `json:"isDefault"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Transaction is a single income or expense record. Amount is stored as
// a non-negative magnitude; direction is carried by Type. Category is
// free text (user input or statement extraction) and is classified into
// deduction buckets by the tax engine, not here.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	AccountID   string          `json:"accountId"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
