package tax

import "github.com/welthfin/backend/internal/model"

// DeductionType records which deduction path a report used.
type DeductionType string

const (
	DeductionStandard DeductionType = "STANDARD"
	DeductionItemized DeductionType = "ITEMIZED"
)

// standardDeduction returns the flat deduction for the account type and
// regime at the given income level. Business accounts get none: they
// always itemize. The new regime tapers the deduction as income rises.
func standardDeduction(accountType model.AccountType, regime model.TaxRegime, totalIncome float64) float64 {
	if accountType == model.AccountCurrent {
		return 0
	}
	if regime == model.RegimeOld {
		return 50_000
	}
	switch {
	case totalIncome <= 1_000_000:
		return 75_000
	case totalIncome <= 1_250_000:
		return 70_000
	case totalIncome <= 1_500_000:
		return 65_000
	default:
		return 50_000
	}
}

// selectDeduction picks the larger of the standard and itemized
// deductions. A tie goes to the standard deduction: same outcome with
// no documentation burden.
func selectDeduction(standard, itemized float64) (DeductionType, float64) {
	if itemized > standard {
		return DeductionItemized, itemized
	}
	return DeductionStandard, standard
}
