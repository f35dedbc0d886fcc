//go:build ignore
// +build ignore

// Seeds a running backend with a year of sample transactions through
// the RPC surface, then computes a tax report to verify the data is
// queryable.
//
//	go run scripts/seed-data.go
//
// The backend must be running with SKIP_AUTH=true, or AUTH_TOKEN must
// carry a Firebase ID token.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"

	"github.com/welthfin/backend/internal/model"
	"github.com/welthfin/backend/internal/rpc"
	"github.com/welthfin/backend/internal/service"
)

const (
	financePrefix = "/welthfin.v1.FinanceService/"
	taxPrefix     = "/welthfin.v1.TaxService/"
)

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8111"
	}
	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = "local-dev-user"
	}
	authToken := os.Getenv("AUTH_TOKEN")

	log.Printf("🌱 Seeding data for user: %s", userID)
	log.Printf("📡 API URL: %s", apiURL)

	httpClient := &http.Client{}
	opts := []connect.ClientOption{connect.WithCodec(rpc.JSONCodec{})}
	if authToken != "" {
		log.Println("🔐 Using provided auth token")
		opts = append(opts, connect.WithInterceptors(authInterceptor(authToken)))
	} else {
		log.Println("ℹ️  No auth token provided - backend must be running with SKIP_AUTH=true")
	}

	ctx := context.Background()

	createAccount := connect.NewClient[service.CreateAccountRequest, service.AccountResponse](
		httpClient, apiURL+financePrefix+"CreateAccount", opts...)
	createTx := connect.NewClient[service.CreateTransactionRequest, service.TransactionResponse](
		httpClient, apiURL+financePrefix+"CreateTransaction", opts...)
	computeReport := connect.NewClient[service.ComputeTaxReportRequest, service.ComputeTaxReportResponse](
		httpClient, apiURL+taxPrefix+"ComputeTaxReport", opts...)

	accountResp, err := createAccount.CallUnary(ctx, connect.NewRequest(&service.CreateAccountRequest{
		Name:    "Seeded Savings",
		Type:    model.AccountSavings,
		Balance: 250_000,
	}))
	if err != nil {
		log.Fatalf("Failed to create account: %v", err)
	}
	accountID := accountResp.Msg.Account.ID
	log.Printf("✅ Created account %s", accountID)

	year := time.Now().Year()
	seeded := 0
	for month := time.January; month <= time.December; month++ {
		date := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
		rows := []service.CreateTransactionRequest{
			{AccountID: accountID, Type: model.TransactionIncome, Category: "salary", Description: "Monthly salary", Amount: 95_000, Date: date},
			{AccountID: accountID, Type: model.TransactionExpense, Category: "housing", Description: "Rent", Amount: 22_000, Date: date},
			{AccountID: accountID, Type: model.TransactionExpense, Category: "groceries", Description: "BigBasket order", Amount: 6_500, Date: date},
			{AccountID: accountID, Type: model.TransactionExpense, Category: "utilities", Description: "Electricity and internet", Amount: 3_200, Date: date},
			{AccountID: accountID, Type: model.TransactionExpense, Category: "restaurant", Description: "Swiggy", Amount: 2_800, Date: date},
		}
		for i := range rows {
			if _, err := createTx.CallUnary(ctx, connect.NewRequest(&rows[i])); err != nil {
				log.Fatalf("Failed to seed %s/%s: %v", rows[i].Category, month, err)
			}
			seeded++
		}
	}
	log.Printf("✅ Seeded %d transactions for %d", seeded, year)

	log.Println("🔍 Verifying with a tax report...")
	report, err := computeReport.CallUnary(ctx, connect.NewRequest(&service.ComputeTaxReportRequest{
		AccountID: accountID,
		Year:      year,
	}))
	if err != nil {
		log.Fatalf("❌ Verification failed: %v", err)
	}
	r := report.Msg.Report
	log.Printf("✅ Report: income=%.2f deductions=%.2f (%s) owed=%.2f",
		r.TotalIncome, r.TotalDeductions, r.DeductionType, r.TaxOwed)
}

// authInterceptor adds a bearer token to every outgoing request.
func authInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token))
			return next(ctx, req)
		}
	}
}
