package tax

import "github.com/welthfin/backend/internal/model"

// ============================================================================
// Engine configuration
// ============================================================================

// UnmatchedPolicy controls how expense categories that match no
// deduction rule are bucketed.
type UnmatchedPolicy string

const (
	// UnmatchedOtherBusiness treats unmatched categories as fully
	// deductible other-business expenses. This is the canonical default.
	UnmatchedOtherBusiness UnmatchedPolicy = "other-business"

	// UnmatchedPersonalNonDeductible additionally routes categories
	// containing personal-looking keywords to the non-deductible bucket.
	// Opt-in policy for callers that prefer a conservative default.
	UnmatchedPersonalNonDeductible UnmatchedPolicy = "personal-non-deductible"
)

// Config carries every table the engine consumes. It is injected at
// construction, validated once, and never mutated afterwards, so a
// single Engine is safe for concurrent use across requests.
type Config struct {
	NewRegimeBrackets BracketSet
	OldRegimeBrackets BracketSet
	BusinessBrackets  BracketSet

	// DeductionRules are evaluated in slice order; see classifier.go.
	DeductionRules []DeductionRule

	UnmatchedPolicy UnmatchedPolicy

	// PersonalKeywords is consulted only under
	// UnmatchedPersonalNonDeductible.
	PersonalKeywords []string
}

// Surcharge and cess levied on CURRENT (business) accounts.
const (
	surchargeRateHigh      = 0.15
	surchargeRateMid       = 0.10
	surchargeThresholdHigh = 10_000_000
	surchargeThresholdMid  = 5_000_000
	cessRate               = 0.04
)

// Indian income tax slabs, FY 2023 and 2024.
var (
	newRegimeTable = BracketTable{
		{Upper: 300_000, Rate: 0},
		{Upper: 600_000, Rate: 0.05},
		{Upper: 900_000, Rate: 0.10},
		{Upper: 1_200_000, Rate: 0.15},
		{Upper: 1_500_000, Rate: 0.20},
		{Rate: 0.30},
	}

	oldRegimeTable = BracketTable{
		{Upper: 250_000, Rate: 0},
		{Upper: 500_000, Rate: 0.05},
		{Upper: 1_000_000, Rate: 0.20},
		{Rate: 0.30},
	}

	// Business accounts use the old-regime slabs plus surcharge and cess.
	businessTable = BracketTable{
		{Upper: 250_000, Rate: 0},
		{Upper: 500_000, Rate: 0.05},
		{Upper: 1_000_000, Rate: 0.20},
		{Rate: 0.30},
	}
)

// DefaultConfig returns the canonical engine configuration: the
// published bracket tables for 2023/2024 with defaults, and the
// priority-ordered deduction rules.
func DefaultConfig() Config {
	return Config{
		NewRegimeBrackets: BracketSet{
			"2023":          newRegimeTable,
			"2024":          newRegimeTable,
			defaultTableKey: newRegimeTable,
		},
		OldRegimeBrackets: BracketSet{
			"2023":          oldRegimeTable,
			"2024":          oldRegimeTable,
			defaultTableKey: oldRegimeTable,
		},
		BusinessBrackets: BracketSet{
			"2023":          businessTable,
			"2024":          businessTable,
			defaultTableKey: businessTable,
		},
		DeductionRules:   defaultDeductionRules,
		UnmatchedPolicy:  UnmatchedOtherBusiness,
		PersonalKeywords: defaultPersonalKeywords,
	}
}

// Validate checks all bracket sets and deduction rules. Engines built
// through NewEngine are guaranteed to hold a valid config.
func (c Config) Validate() error {
	sets := []struct {
		name string
		set  BracketSet
	}{
		{"new-regime", c.NewRegimeBrackets},
		{"old-regime", c.OldRegimeBrackets},
		{"business", c.BusinessBrackets},
	}
	for _, s := range sets {
		if err := s.set.Validate(); err != nil {
			return &ConfigurationError{Table: s.name, Message: err.Error()}
		}
	}
	for _, r := range c.DeductionRules {
		if r.Bucket == "" {
			return &ConfigurationError{Table: "deduction-rules", Message: "rule has empty bucket"}
		}
		if r.Rate < 0 || r.Rate > 1 {
			return &ConfigurationError{
				Table:   "deduction-rules",
				Message: "rule " + r.Bucket + " rate outside [0,1]",
			}
		}
		if len(r.Keywords) == 0 {
			return &ConfigurationError{
				Table:   "deduction-rules",
				Message: "rule " + r.Bucket + " has no keywords",
			}
		}
	}
	return nil
}

// bracketsFor selects the bracket set for the account type and regime.
func (c Config) bracketsFor(accountType model.AccountType, regime model.TaxRegime) BracketSet {
	if accountType == model.AccountCurrent {
		return c.BusinessBrackets
	}
	if regime == model.RegimeOld {
		return c.OldRegimeBrackets
	}
	return c.NewRegimeBrackets
}
