package tax

import "testing"

func TestBucketDisplayName(t *testing.T) {
	tests := []struct {
		bucket string
		want   string
	}{
		{"office-rent", "Office Rent"},
		{"business-meals", "Business Meals"},
		{"non-deductible", "Non Deductible"},
		{"other-business", "Other Business"},
	}
	for _, tt := range tests {
		if got := BucketDisplayName(tt.bucket); got != tt.want {
			t.Errorf("BucketDisplayName(%q) = %q, want %q", tt.bucket, got, tt.want)
		}
	}
}
