package tax

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/welthfin/backend/internal/model"
)

// MonthlyTax is one month's slice of the annual picture. Tax is the
// annual liability de-annualized against this month's net, not a
// re-bracketing of the month in isolation.
type MonthlyTax struct {
	Month    int     `json:"month"` // 0 = January
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Tax      float64 `json:"tax"`
}

// DeductionAmount is one side of the standard-vs-itemized comparison.
type DeductionAmount struct {
	Amount      float64            `json:"amount"`
	Breakdown   map[string]float64 `json:"breakdown,omitempty"`
	Description string             `json:"description"`
}

// DeductionComparison shows both deduction paths and which one won.
type DeductionComparison struct {
	Standard     DeductionAmount            `json:"standard"`
	Itemized     DeductionAmount            `json:"itemized"`
	Difference   float64                    `json:"difference"`
	Savings      float64                    `json:"savings"`
	Transactions []AnnotatedTransaction     `json:"transactions"`
	Categories   map[string]CategorySummary `json:"categorySummary"`
}

// Report is the complete tax computation output for one account year.
type Report struct {
	Year             int                 `json:"year"`
	AccountType      model.AccountType   `json:"accountType"`
	TaxRegime        model.TaxRegime     `json:"taxRegime,omitempty"`
	TotalIncome      float64             `json:"totalIncome"`
	TotalExpenses    float64             `json:"totalExpenses"`
	TotalDeductions  float64             `json:"totalDeductions"`
	DeductionType    DeductionType       `json:"deductionTypeUsed"`
	TaxableIncome    float64             `json:"taxableIncome"`
	TaxOwed          float64             `json:"taxOwed"`
	EffectiveTaxRate float64             `json:"effectiveTaxRate"`
	MonthlyBreakdown []MonthlyTax        `json:"monthlyBreakdown"`
	TransactionCount int                 `json:"transactionCount"`
	Deductions       DeductionComparison `json:"deductionComparison"`
}

var titleCaser = cases.Title(language.English)

// BucketDisplayName renders a deduction bucket slug for human display,
// e.g. "business-meals" becomes "Business Meals".
func BucketDisplayName(bucket string) string {
	return titleCaser.String(strings.ReplaceAll(bucket, "-", " "))
}

// round2 fixes a value to two decimal places, matching the canonical
// presentation of effective tax rates.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
