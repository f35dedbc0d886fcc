package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MerchantInfo contains normalized merchant information. Category is
// free text aligned with the categories the tax engine classifies.
type MerchantInfo struct {
	Name       string
	Category   string
	Confidence float64
}

// merchantMappings maps known merchant keywords to normalized names and categories.
var merchantMappings = map[string]MerchantInfo{
	// Grocery stores
	"big bazaar": {Name: "Big Bazaar", Category: "groceries", Confidence: 0.95},
	"dmart":      {Name: "DMart", Category: "groceries", Confidence: 0.95},
	"reliance":   {Name: "Reliance Fresh", Category: "groceries", Confidence: 0.90},
	"bigbasket":  {Name: "BigBasket", Category: "groceries", Confidence: 0.95},
	"blinkit":    {Name: "Blinkit", Category: "groceries", Confidence: 0.95},
	"zepto":      {Name: "Zepto", Category: "groceries", Confidence: 0.95},

	// Restaurants & food delivery
	"swiggy":    {Name: "Swiggy", Category: "restaurant", Confidence: 0.95},
	"zomato":    {Name: "Zomato", Category: "restaurant", Confidence: 0.95},
	"dominos":   {Name: "Domino's", Category: "restaurant", Confidence: 0.95},
	"mcdonalds": {Name: "McDonald's", Category: "restaurant", Confidence: 0.95},
	"starbucks": {Name: "Starbucks", Category: "restaurant", Confidence: 0.95},
	"kfc":       {Name: "KFC", Category: "restaurant", Confidence: 0.95},

	// Transportation
	"uber":       {Name: "Uber", Category: "transportation", Confidence: 0.95},
	"ola":        {Name: "Ola", Category: "transportation", Confidence: 0.90},
	"rapido":     {Name: "Rapido", Category: "transportation", Confidence: 0.95},
	"irctc":      {Name: "IRCTC", Category: "transportation", Confidence: 0.95},
	"indian oil": {Name: "Indian Oil", Category: "transportation", Confidence: 0.95},
	"hp petrol":  {Name: "HP Petrol", Category: "transportation", Confidence: 0.90},

	// Utilities
	"airtel":     {Name: "Airtel", Category: "utilities", Confidence: 0.95},
	"jio":        {Name: "Jio", Category: "utilities", Confidence: 0.95},
	"vodafone":   {Name: "Vodafone Idea", Category: "utilities", Confidence: 0.95},
	"tata power": {Name: "Tata Power", Category: "utilities", Confidence: 0.95},
	"bescom":     {Name: "BESCOM", Category: "utilities", Confidence: 0.95},

	// Entertainment
	"netflix":  {Name: "Netflix", Category: "entertainment", Confidence: 0.95},
	"spotify":  {Name: "Spotify", Category: "entertainment", Confidence: 0.95},
	"hotstar":  {Name: "Disney+ Hotstar", Category: "entertainment", Confidence: 0.95},
	"bookmyshow": {Name: "BookMyShow", Category: "entertainment", Confidence: 0.95},

	// Shopping
	"amazon":   {Name: "Amazon", Category: "shopping", Confidence: 0.95},
	"flipkart": {Name: "Flipkart", Category: "shopping", Confidence: 0.95},
	"myntra":   {Name: "Myntra", Category: "shopping", Confidence: 0.95},
	"ikea":     {Name: "IKEA", Category: "shopping", Confidence: 0.95},

	// Healthcare
	"apollo":   {Name: "Apollo Pharmacy", Category: "healthcare", Confidence: 0.95},
	"pharmeasy": {Name: "PharmEasy", Category: "healthcare", Confidence: 0.95},
	"practo":   {Name: "Practo", Category: "healthcare", Confidence: 0.95},

	// Education
	"udemy":    {Name: "Udemy", Category: "education", Confidence: 0.95},
	"coursera": {Name: "Coursera", Category: "education", Confidence: 0.95},

	// Travel
	"makemytrip": {Name: "MakeMyTrip", Category: "travel", Confidence: 0.95},
	"oyo":        {Name: "OYO", Category: "travel", Confidence: 0.95},
	"airbnb":     {Name: "Airbnb", Category: "travel", Confidence: 0.95},
	"indigo":     {Name: "IndiGo", Category: "travel", Confidence: 0.95},

	// Housing
	"nobroker": {Name: "NoBroker", Category: "rent", Confidence: 0.90},
}

// descriptionCategoryPatterns categorize descriptions that carry no
// known merchant, e.g. "ELECTRICITY BILL PAYMENT".
var descriptionCategoryPatterns = []struct {
	re       *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)\b(salary|payroll|wages)\b`), "salary"},
	{regexp.MustCompile(`(?i)\b(rent|lease)\b`), "rent"},
	{regexp.MustCompile(`(?i)\b(electric|electricity|water|gas|broadband|internet|bill)\b`), "utilities"},
	{regexp.MustCompile(`(?i)\b(grocery|groceries|supermarket)\b`), "groceries"},
	{regexp.MustCompile(`(?i)\b(restaurant|cafe|dining|food)\b`), "restaurant"},
	{regexp.MustCompile(`(?i)\b(fuel|petrol|diesel|metro|cab|taxi|toll)\b`), "transportation"},
	{regexp.MustCompile(`(?i)\b(pharmacy|hospital|clinic|medical|insurance)\b`), "healthcare"},
	{regexp.MustCompile(`(?i)\b(course|tuition|training|school|college)\b`), "education"},
	{regexp.MustCompile(`(?i)\b(flight|hotel|lodging|booking)\b`), "travel"},
	{regexp.MustCompile(`(?i)\b(movie|cinema|streaming|subscription)\b`), "entertainment"},
}

var (
	referenceNoisePattern = regexp.MustCompile(`(?i)\b(?:ref|txn|utr|pos|neft|imps|upi)[:\s#]*[a-z0-9]*\b`)
	multiSpacePattern     = regexp.MustCompile(`\s{2,}`)
	merchantTitleCaser    = cases.Title(language.English)
)

// NormalizeMerchant cleans a raw statement description and resolves a
// merchant name and category when a known merchant is present.
func NormalizeMerchant(description string) MerchantInfo {
	cleaned := referenceNoisePattern.ReplaceAllString(description, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	lower := strings.ToLower(cleaned)
	for keyword, info := range merchantMappings {
		if strings.Contains(lower, keyword) {
			return info
		}
	}

	for _, p := range descriptionCategoryPatterns {
		if p.re.MatchString(lower) {
			return MerchantInfo{
				Name:       displayName(cleaned),
				Category:   p.category,
				Confidence: 0.70,
			}
		}
	}

	return MerchantInfo{
		Name:       displayName(cleaned),
		Category:   "other",
		Confidence: 0.30,
	}
}

// displayName renders a cleaned description in title case for display.
func displayName(s string) string {
	if s == "" {
		return ""
	}
	return merchantTitleCaser.String(strings.ToLower(s))
}
