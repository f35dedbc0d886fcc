package tax

import (
	"math"
	"testing"
	"time"
)

func TestResolveBucket(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		category   string
		wantBucket string
		wantRate   float64
	}{
		// exact matches
		{"groceries", BucketNonDeductible, 0},
		{"housing", BucketOfficeRent, 1.0},
		{"rent", BucketOfficeRent, 1.0},
		{"transportation", BucketBusinessTransport, 1.0},
		{"utilities", BucketBusinessUtilities, 1.0},
		{"entertainment", BucketBusinessEntertainment, 0.5},
		{"food", BucketBusinessMeals, 0.5},
		{"office supplies", BucketBusinessSupplies, 1.0},
		{"healthcare", BucketEmployeeInsurance, 1.0},
		{"education", BucketEmployeeTraining, 1.0},
		{"lodging", BucketBusinessTravel, 1.0},
		{"miscellaneous", BucketOtherBusiness, 1.0},
		// case and whitespace insensitivity
		{"  Groceries ", BucketNonDeductible, 0},
		{"RENT", BucketOfficeRent, 1.0},
		{"Restaurant ", BucketBusinessMeals, 0.5},
		// substring matches
		{"internet bill", BucketBusinessUtilities, 1.0},
		{"fine dining", BucketBusinessMeals, 0.5},
		{"health insurance premium", BucketEmployeeInsurance, 1.0},
		// non-deductible rule wins when a personal keyword is present
		{"personal training", BucketNonDeductible, 0},
		// no match falls through to other-business
		{"unclassifiable", BucketOtherBusiness, 1.0},
		{"", BucketOtherBusiness, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			bucket, rate := cfg.resolveBucket(tt.category)
			if bucket != tt.wantBucket || rate != tt.wantRate {
				t.Errorf("resolveBucket(%q) = (%s, %v), want (%s, %v)",
					tt.category, bucket, rate, tt.wantBucket, tt.wantRate)
			}
		})
	}
}

func TestResolveBucketPersonalPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UnmatchedPolicy = UnmatchedPersonalNonDeductible

	bucket, rate := cfg.resolveBucket("vacation fund")
	if bucket != BucketNonDeductible || rate != 0 {
		t.Errorf("personal policy: got (%s, %v), want (%s, 0)", bucket, rate, BucketNonDeductible)
	}

	// genuinely unknown categories still land in other-business
	bucket, rate = cfg.resolveBucket("unclassifiable")
	if bucket != BucketOtherBusiness || rate != 1.0 {
		t.Errorf("unknown under personal policy: got (%s, %v)", bucket, rate)
	}
}

func TestClassifyExpenses(t *testing.T) {
	cfg := DefaultConfig()
	date := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	txs := []normalizedTransaction{
		{ID: "t1", Category: "salary", Date: date, SignedAmount: 100_000},
		{ID: "t2", Category: "rent", Date: date, SignedAmount: -20_000},
		{ID: "t3", Category: "entertainment", Date: date, SignedAmount: -4_000},
		{ID: "t4", Category: "groceries", Date: date, SignedAmount: -6_000},
		{ID: "t5", Category: "rent", Date: date, SignedAmount: -10_000},
	}

	res := cfg.classifyExpenses(txs)

	// 30,000 rent at 1.0 + 4,000 entertainment at 0.5 + groceries at 0
	if math.Abs(res.Total-32_000) > 0.01 {
		t.Errorf("Total = %v, want 32000", res.Total)
	}
	if got := res.BucketBreakdown[BucketOfficeRent]; math.Abs(got-30_000) > 0.01 {
		t.Errorf("office-rent breakdown = %v, want 30000", got)
	}
	if got := res.BucketBreakdown[BucketBusinessEntertainment]; math.Abs(got-2_000) > 0.01 {
		t.Errorf("entertainment breakdown = %v, want 2000", got)
	}
	if got := res.BucketBreakdown[BucketNonDeductible]; got != 0 {
		t.Errorf("non-deductible breakdown = %v, want 0", got)
	}
	if len(res.Transactions) != 4 {
		t.Errorf("annotated %d transactions, want 4 (income excluded)", len(res.Transactions))
	}

	rent := res.CategorySummary["rent"]
	if rent.Count != 2 || math.Abs(rent.TotalAmount-30_000) > 0.01 {
		t.Errorf("rent summary = %+v", rent)
	}

	// the total must equal both the bucket sum and the per-transaction sum
	var bucketSum, txSum float64
	for _, v := range res.BucketBreakdown {
		bucketSum += v
	}
	for _, tx := range res.Transactions {
		txSum += tx.DeductibleAmount
	}
	if math.Abs(res.Total-bucketSum) > 0.01 || math.Abs(res.Total-txSum) > 0.01 {
		t.Errorf("totals disagree: total=%v buckets=%v transactions=%v", res.Total, bucketSum, txSum)
	}
}

func TestClassifyExpensesEmpty(t *testing.T) {
	res := DefaultConfig().classifyExpenses(nil)
	if res.Total != 0 || len(res.Transactions) != 0 {
		t.Errorf("empty input produced %+v", res)
	}
}
