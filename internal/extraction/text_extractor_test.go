package extraction

import (
	"strings"
	"testing"
	"time"
)

func analysisFromLines(lines []string) *PDFAnalysis {
	text := strings.Join(lines, "\n")
	// pad so the density check passes for single-page fixtures
	for len(text) < textDenseMin {
		text += " "
	}
	return &PDFAnalysis{
		PageCount:        1,
		ExtractedText:    text,
		TextLines:        lines,
		EstimatedTxCount: countTransactionLines(lines),
		IsScanned:        false,
	}
}

func TestExtractFromTextParsesStatementLines(t *testing.T) {
	te := &TextExtractor{}
	analysis := analysisFromLines([]string{
		"Statement Period 01/06/2024 to 30/06/2024",
		"05/06/2024 SWIGGY BANGALORE 450.00",
		"12/06/2024 HOUSE RENT PAYMENT 15,000.00",
		"20/06/2024 SALARY CREDIT 85,000.00 CR",
	})

	result, err := te.ExtractFromText(analysis)
	if err != nil {
		t.Fatalf("ExtractFromText: %v", err)
	}
	if len(result.Transactions) != 3 {
		t.Fatalf("parsed %d transactions, want 3", len(result.Transactions))
	}
	if result.MethodUsed != "text" {
		t.Errorf("MethodUsed = %q", result.MethodUsed)
	}

	swiggy := result.Transactions[0]
	if swiggy.Date != "2024-06-05" {
		t.Errorf("Date = %q, want 2024-06-05", swiggy.Date)
	}
	if swiggy.Amount != 450.00 || !swiggy.IsDebit {
		t.Errorf("amount/debit = %v/%v", swiggy.Amount, swiggy.IsDebit)
	}
	if swiggy.Category != "restaurant" {
		t.Errorf("Category = %q, want restaurant", swiggy.Category)
	}

	rent := result.Transactions[1]
	if rent.Amount != 15000.00 {
		t.Errorf("rent amount = %v, want 15000", rent.Amount)
	}

	salary := result.Transactions[2]
	if salary.IsDebit {
		t.Error("CR suffix line should be a credit")
	}
}

func TestExtractFromTextRejectsScanned(t *testing.T) {
	te := &TextExtractor{}
	if _, err := te.ExtractFromText(&PDFAnalysis{IsScanned: true}); err == nil {
		t.Fatal("expected error for scanned PDF")
	}
	if _, err := te.ExtractFromText(nil); err == nil {
		t.Fatal("expected error for nil analysis")
	}
}

func TestExtractFromTextRejectsLowParseRate(t *testing.T) {
	te := &TextExtractor{}
	// lines counted as transactions by the estimator but unparseable by
	// the stricter line regex (no decimal amounts at end)
	analysis := analysisFromLines([]string{
		"05/06/2024 PAYMENT 450.00 pending settlement",
		"06/06/2024 PAYMENT 450.00 pending settlement",
		"07/06/2024 PAYMENT 450.00 pending settlement",
		"08/06/2024 GROCERY STORE 899.00",
	})
	if analysis.EstimatedTxCount < 4 {
		t.Skipf("estimator counted %d lines, fixture needs adjusting", analysis.EstimatedTxCount)
	}
	if _, err := te.ExtractFromText(analysis); err == nil {
		t.Fatal("expected low parse rate rejection")
	}
}

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"05/06/2024", time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-06-05", time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)},
		{"5 Jun 2024", time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)},
		{"Jun 5, 2024", time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)},
		{"05/06/24", time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseFlexibleDate(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("parseFlexibleDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in        string
		want      float64
		wantDebit bool
	}{
		{"450.00", 450.00, true},
		{"$1,234.56", 1234.56, true},
		{"₹15,000.00", 15000.00, true},
		{"-45.00", 45.00, false},
		{"120.00 CR", 120.00, false},
		{"garbage", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			amount, isDebit := parseAmount(tt.in)
			if amount != tt.want || (amount > 0 && isDebit != tt.wantDebit) {
				t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tt.in, amount, isDebit, tt.want, tt.wantDebit)
			}
		})
	}
}
