package extraction

import "testing"

func TestNormalizeMerchantKnownMerchants(t *testing.T) {
	tests := []struct {
		description  string
		wantName     string
		wantCategory string
	}{
		{"SWIGGY BANGALORE UPI 4821", "Swiggy", "restaurant"},
		{"UBER *TRIP HELP.UBER.COM", "Uber", "transportation"},
		{"NETFLIX.COM SUBSCRIPTION", "Netflix", "entertainment"},
		{"AMAZON PAY INDIA", "Amazon", "shopping"},
		{"AIRTEL PREPAID RECHARGE", "Airtel", "utilities"},
		{"BIGBASKET ORDER 9912", "BigBasket", "groceries"},
		{"MAKEMYTRIP FLIGHT BOOKING", "MakeMyTrip", "travel"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			info := NormalizeMerchant(tt.description)
			if info.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", info.Name, tt.wantName)
			}
			if info.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", info.Category, tt.wantCategory)
			}
			if info.Confidence < 0.9 {
				t.Errorf("Confidence = %v, want >= 0.9 for known merchant", info.Confidence)
			}
		})
	}
}

func TestNormalizeMerchantDescriptionPatterns(t *testing.T) {
	tests := []struct {
		description  string
		wantCategory string
	}{
		{"SALARY CREDIT JULY", "salary"},
		{"HOUSE RENT PAYMENT", "rent"},
		{"ELECTRICITY BILL PAYMENT", "utilities"},
		{"LOCAL SUPERMARKET PURCHASE", "groceries"},
		{"CITY HOSPITAL ADVANCE", "healthcare"},
		{"COLLEGE TUITION FEE", "education"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			info := NormalizeMerchant(tt.description)
			if info.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", info.Category, tt.wantCategory)
			}
		})
	}
}

func TestNormalizeMerchantUnknownFallsBack(t *testing.T) {
	info := NormalizeMerchant("XYZ CORP 12345")
	if info.Category != "other" {
		t.Errorf("Category = %q, want other", info.Category)
	}
	if info.Confidence > 0.5 {
		t.Errorf("Confidence = %v, want low for unknown merchant", info.Confidence)
	}
}

func TestNormalizeMerchantStripsReferenceNoise(t *testing.T) {
	info := NormalizeMerchant("UPI:9988776655 NEFT REF 1234 COFFEE HOUSE DINING")
	if info.Category != "restaurant" {
		t.Errorf("Category = %q, want restaurant after noise removal", info.Category)
	}
}
