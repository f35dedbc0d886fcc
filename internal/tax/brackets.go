package tax

import (
	"fmt"
	"math"
)

// Bracket is one marginal slice of a progressive bracket table. Upper
// is the inclusive upper threshold of the slice; Upper == 0 marks the
// unbounded top bracket.
type Bracket struct {
	Upper float64 `json:"upper"`
	Rate  float64 `json:"rate"`
}

// BracketTable is an ordered sequence of brackets whose thresholds
// partition [0, inf) with no gaps or overlaps. The last entry must be
// unbounded.
type BracketTable []Bracket

// BracketSet holds bracket tables keyed by calendar year ("2024"). The
// "default" key is mandatory and used for any year without its own
// table.
type BracketSet map[string]BracketTable

const defaultTableKey = "default"

// Validate checks that the table is a well-formed ascending partition.
func (t BracketTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("empty bracket table")
	}
	prev := 0.0
	for i, b := range t {
		if b.Rate < 0 || b.Rate > 1 {
			return fmt.Errorf("bracket %d: rate %v outside [0,1]", i, b.Rate)
		}
		last := i == len(t)-1
		if last {
			if b.Upper != 0 {
				return fmt.Errorf("bracket %d: final bracket must be unbounded", i)
			}
			continue
		}
		if b.Upper <= prev {
			return fmt.Errorf("bracket %d: threshold %v not strictly increasing", i, b.Upper)
		}
		prev = b.Upper
	}
	return nil
}

// Apply runs the marginal bracket integration over taxableIncome. Each
// bracket's rate is applied only to the slice of income that falls
// inside that bracket. Shared by the annual calculation and the
// annualized monthly breakdown.
func (t BracketTable) Apply(taxableIncome float64) float64 {
	if taxableIncome <= 0 {
		return 0
	}
	var owed float64
	prev := 0.0
	for _, b := range t {
		if taxableIncome <= prev {
			break
		}
		upper := b.Upper
		if upper == 0 {
			upper = math.Inf(1)
		}
		slice := math.Min(taxableIncome, upper) - prev
		owed += slice * b.Rate
		prev = upper
	}
	return owed
}

// Validate checks every table in the set and the presence of the
// mandatory default entry.
func (s BracketSet) Validate() error {
	if _, ok := s[defaultTableKey]; !ok {
		return fmt.Errorf("missing %q table", defaultTableKey)
	}
	for year, table := range s {
		if err := table.Validate(); err != nil {
			return fmt.Errorf("year %s: %w", year, err)
		}
	}
	return nil
}

// TableFor returns the table for the given year, falling back to the
// default table when the year has no entry of its own.
func (s BracketSet) TableFor(year int) BracketTable {
	if t, ok := s[fmt.Sprintf("%d", year)]; ok {
		return t
	}
	return s[defaultTableKey]
}
