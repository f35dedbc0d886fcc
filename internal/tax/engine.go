package tax

import (
	"math"

	"github.com/welthfin/backend/internal/model"
)

// ============================================================================
// Tax engine
// ============================================================================

// Engine computes tax reports from transaction histories. Construct it
// once with NewEngine and share it: the config is immutable and every
// computation is a pure function of its input.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration and returns an engine. A
// ConfigurationError here means the bracket tables or deduction rules
// are unusable; nothing is computed against a broken config.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Input is one report request: the transactions to consider and the
// fiscal context to compute under.
type Input struct {
	Transactions []model.Transaction
	AccountType  model.AccountType
	TaxRegime    model.TaxRegime // defaults to the new regime when empty
	Year         int
}

// ComputeTaxReport runs the full pipeline: normalize, classify
// deductions, pick the better deduction path, apply the bracket table
// with any surcharge and cess, and break the liability down by month.
func (e *Engine) ComputeTaxReport(in Input) (*Report, error) {
	regime := in.TaxRegime
	if regime == "" {
		regime = model.RegimeNew
	}
	switch in.AccountType {
	case model.AccountSavings, model.AccountCurrent:
	default:
		return nil, &ValidationError{Field: "accountType", Message: "must be SAVINGS or CURRENT"}
	}
	switch regime {
	case model.RegimeNew, model.RegimeOld:
	default:
		return nil, &ValidationError{Field: "taxRegime", Message: "must be new or old"}
	}

	txs, err := normalizeTransactions(in.Transactions, in.Year)
	if err != nil {
		return nil, err
	}

	var totalIncome, totalExpenses float64
	for _, t := range txs {
		if t.SignedAmount >= 0 {
			totalIncome += t.SignedAmount
		} else {
			totalExpenses += -t.SignedAmount
		}
	}

	itemized := e.cfg.classifyExpenses(txs)
	standard := standardDeduction(in.AccountType, regime, totalIncome)
	deductionType, deduction := selectDeduction(standard, itemized.Total)

	taxable := math.Max(0, totalIncome-deduction)
	table := e.cfg.bracketsFor(in.AccountType, regime).TableFor(in.Year)
	owed := table.Apply(taxable)
	if in.AccountType == model.AccountCurrent {
		owed = applySurchargeAndCess(owed, taxable)
	}

	effectiveRate := 0.0
	if totalIncome > 0 {
		effectiveRate = round2(owed / totalIncome * 100)
	}

	report := &Report{
		Year:             in.Year,
		AccountType:      in.AccountType,
		TotalIncome:      totalIncome,
		TotalExpenses:    totalExpenses,
		TotalDeductions:  deduction,
		DeductionType:    deductionType,
		TaxableIncome:    taxable,
		TaxOwed:          owed,
		EffectiveTaxRate: effectiveRate,
		MonthlyBreakdown: monthlyBreakdown(txs, deduction, table),
		TransactionCount: len(txs),
		Deductions: DeductionComparison{
			Standard: DeductionAmount{
				Amount:      standard,
				Description: "Flat deduction, no documentation required",
			},
			Itemized: DeductionAmount{
				Amount:      itemized.Total,
				Breakdown:   itemized.BucketBreakdown,
				Description: "Sum of classified deductible expenses",
			},
			Difference:   math.Abs(standard - itemized.Total),
			Savings:      math.Max(standard, itemized.Total) - math.Min(standard, itemized.Total),
			Transactions: itemized.Transactions,
			Categories:   itemized.CategorySummary,
		},
	}
	if in.AccountType == model.AccountSavings {
		report.TaxRegime = regime
	}
	return report, nil
}

// applySurchargeAndCess levies the business surcharge on high taxable
// incomes, then the 4% cess on the surcharged total.
func applySurchargeAndCess(baseTax, taxableIncome float64) float64 {
	total := baseTax
	switch {
	case taxableIncome > surchargeThresholdHigh:
		total += baseTax * surchargeRateHigh
	case taxableIncome > surchargeThresholdMid:
		total += baseTax * surchargeRateMid
	}
	return total * (1 + cessRate)
}

// monthlyBreakdown attributes the annual deduction evenly across the
// twelve months, annualizes each month's net through the same bracket
// table, and de-annualizes the result. Surcharge and cess stay annual
// and are deliberately absent here.
func monthlyBreakdown(txs []normalizedTransaction, totalDeduction float64, table BracketTable) []MonthlyTax {
	months := make([]MonthlyTax, 12)
	for i := range months {
		months[i].Month = i
	}
	for _, t := range txs {
		m := int(t.Date.Month()) - 1
		if t.SignedAmount >= 0 {
			months[m].Income += t.SignedAmount
		} else {
			months[m].Expenses += -t.SignedAmount
		}
	}

	monthlyDeduction := totalDeduction / 12
	for i := range months {
		monthlyTaxable := months[i].Income - monthlyDeduction
		if monthlyTaxable <= 0 {
			continue
		}
		months[i].Tax = table.Apply(monthlyTaxable*12) / 12
	}
	return months
}
