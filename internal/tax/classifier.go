package tax

import (
	"math"
	"strings"
)

// ============================================================================
// Deduction classification rules
// ============================================================================

// DeductionRule maps category keywords to a deduction bucket and a
// deductibility rate. Rules are evaluated strictly in slice order, so
// the order below is a contract: non-deductible keywords are checked
// before anything generic, and it is covered by tests.
type DeductionRule struct {
	Keywords []string
	Bucket   string
	Rate     float64
}

// Buckets produced by the default rules.
const (
	BucketNonDeductible         = "non-deductible"
	BucketOfficeRent            = "office-rent"
	BucketBusinessTransport     = "business-transport"
	BucketBusinessUtilities     = "business-utilities"
	BucketBusinessEntertainment = "business-entertainment"
	BucketBusinessMeals         = "business-meals"
	BucketBusinessSupplies      = "business-supplies"
	BucketEmployeeInsurance     = "employee-insurance"
	BucketEmployeeTraining      = "employee-training"
	BucketBusinessTravel        = "business-travel"
	BucketOtherBusiness         = "other-business"
)

// defaultDeductionRules is the canonical priority-ordered rule list.
var defaultDeductionRules = []DeductionRule{
	{Keywords: []string{"groceries", "grocery", "personal"}, Bucket: BucketNonDeductible, Rate: 0},
	{Keywords: []string{"housing", "rent", "office"}, Bucket: BucketOfficeRent, Rate: 1.0},
	{Keywords: []string{"transportation", "transport"}, Bucket: BucketBusinessTransport, Rate: 1.0},
	{Keywords: []string{"utilities", "utility", "electric", "water", "gas", "internet", "bills"}, Bucket: BucketBusinessUtilities, Rate: 1.0},
	{Keywords: []string{"entertainment"}, Bucket: BucketBusinessEntertainment, Rate: 0.5},
	{Keywords: []string{"food", "meals", "dining", "restaurant"}, Bucket: BucketBusinessMeals, Rate: 0.5},
	{Keywords: []string{"shopping", "supplies", "office supplies"}, Bucket: BucketBusinessSupplies, Rate: 1.0},
	{Keywords: []string{"healthcare", "health", "medical", "insurance"}, Bucket: BucketEmployeeInsurance, Rate: 1.0},
	{Keywords: []string{"education", "training"}, Bucket: BucketEmployeeTraining, Rate: 1.0},
	{Keywords: []string{"travel", "lodging"}, Bucket: BucketBusinessTravel, Rate: 1.0},
	{Keywords: []string{"other", "miscellaneous"}, Bucket: BucketOtherBusiness, Rate: 1.0},
}

// defaultPersonalKeywords is consulted only under the opt-in
// UnmatchedPersonalNonDeductible policy.
var defaultPersonalKeywords = []string{
	"hobby", "vacation", "holiday", "gift", "clothing", "beauty", "salon", "pet",
}

// AnnotatedTransaction is an input expense enriched with its resolved
// deduction bucket, rate and deductible amount.
type AnnotatedTransaction struct {
	ID               string  `json:"id"`
	Category         string  `json:"category"`
	Description      string  `json:"description,omitempty"`
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	Bucket           string  `json:"deductionCategory"`
	Rate             float64 `json:"deductionRate"`
	DeductibleAmount float64 `json:"deductibleAmount"`
}

// CategorySummary aggregates expenses per original (free-text) category.
type CategorySummary struct {
	Count            int     `json:"transactionCount"`
	TotalAmount      float64 `json:"totalAmount"`
	DeductibleAmount float64 `json:"deductibleAmount"`
	Rate             float64 `json:"deductionRate"`
	Bucket           string  `json:"deductionCategory"`
}

// itemizedResult is the fold over all expense transactions.
type itemizedResult struct {
	Total           float64
	BucketBreakdown map[string]float64
	CategorySummary map[string]CategorySummary
	Transactions    []AnnotatedTransaction
}

// resolveBucket classifies a single free-text category. Matching order:
// one exact-match pass over the rules, then one substring pass (keyword
// contained in category or category contained in keyword). First match
// wins in both passes.
func (c Config) resolveBucket(category string) (string, float64) {
	normalized := strings.ToLower(strings.TrimSpace(category))

	for _, rule := range c.DeductionRules {
		for _, kw := range rule.Keywords {
			if normalized == kw {
				return rule.Bucket, rule.Rate
			}
		}
	}
	for _, rule := range c.DeductionRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) || (normalized != "" && strings.Contains(kw, normalized)) {
				return rule.Bucket, rule.Rate
			}
		}
	}

	if c.UnmatchedPolicy == UnmatchedPersonalNonDeductible {
		for _, kw := range c.PersonalKeywords {
			if strings.Contains(normalized, kw) {
				return BucketNonDeductible, 0
			}
		}
	}
	return BucketOtherBusiness, 1.0
}

// classifyExpenses runs the deduction classifier over the expense
// transactions (signedAmount < 0). Pure fold: no state beyond the
// returned aggregates.
func (c Config) classifyExpenses(txs []normalizedTransaction) itemizedResult {
	res := itemizedResult{
		BucketBreakdown: make(map[string]float64),
		CategorySummary: make(map[string]CategorySummary),
		Transactions:    []AnnotatedTransaction{},
	}

	for _, t := range txs {
		if t.SignedAmount >= 0 {
			continue
		}
		amount := math.Abs(t.SignedAmount)
		bucket, rate := c.resolveBucket(t.Category)
		deductible := amount * rate

		res.Total += deductible
		res.BucketBreakdown[bucket] += deductible

		summary := res.CategorySummary[t.Category]
		summary.Count++
		summary.TotalAmount += amount
		summary.DeductibleAmount += deductible
		summary.Rate = rate
		summary.Bucket = bucket
		res.CategorySummary[t.Category] = summary

		res.Transactions = append(res.Transactions, AnnotatedTransaction{
			ID:               t.ID,
			Category:         t.Category,
			Description:      t.Description,
			Date:             t.Date.Format("2006-01-02"),
			Amount:           amount,
			Bucket:           bucket,
			Rate:             rate,
			DeductibleAmount: deductible,
		})
	}
	return res
}
