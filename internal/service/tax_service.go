package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"connectrpc.com/connect"

	"github.com/welthfin/backend/internal/auth"
	"github.com/welthfin/backend/internal/model"
	"github.com/welthfin/backend/internal/store"
	"github.com/welthfin/backend/internal/tax"
)

// maxTaxTransactions caps how many records one report will consider.
const maxTaxTransactions = 10_000

// TaxService implements the tax report RPC surface on top of the tax
// engine and the transaction store.
type TaxService struct {
	store  store.Store
	engine *tax.Engine
}

// NewTaxService creates a tax service backed by the given store and a
// validated engine configuration.
func NewTaxService(s store.Store) (*TaxService, error) {
	engine, err := tax.NewEngine(tax.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &TaxService{store: s, engine: engine}, nil
}

// ============================================================================
// ComputeTaxReport
// ============================================================================

type ComputeTaxReportRequest struct {
	// AccountID selects the account; empty means the default account.
	AccountID string          `json:"accountId,omitempty"`
	TaxRegime model.TaxRegime `json:"taxRegime,omitempty"`
	Year      int             `json:"year"`
	// UseDemoData computes over generated sample data when the account
	// has no transactions for the year.
	UseDemoData bool `json:"useDemoData,omitempty"`
}

type ComputeTaxReportResponse struct {
	Report     *tax.Report `json:"report"`
	IsDemoData bool        `json:"isDemoData,omitempty"`
}

func (s *TaxService) ComputeTaxReport(ctx context.Context, req *connect.Request[ComputeTaxReportRequest]) (*connect.Response[ComputeTaxReportResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	year := msg.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	account, err := s.resolveAccount(ctx, claims.UID, msg.AccountID)
	if err != nil {
		return nil, err
	}

	txs, err := s.loadYearTransactions(ctx, claims.UID, account.ID, year)
	if err != nil {
		return nil, storeError(err)
	}

	isDemo := false
	if len(txs) == 0 && msg.UseDemoData {
		txs = generateDemoTransactions(claims.UID, account.ID, account.Type, year)
		isDemo = true
		log.Printf("[TaxService] no %d transactions for account %s, using demo data", year, account.ID)
	}

	report, err := s.computeReport(txs, account.Type, msg.TaxRegime, year)
	if err != nil {
		return nil, err
	}

	log.Printf("[TaxService] computed %d report for account %s: taxable=%.2f owed=%.2f (%s)",
		year, account.ID, report.TaxableIncome, report.TaxOwed, report.DeductionType)
	return connect.NewResponse(&ComputeTaxReportResponse{Report: report, IsDemoData: isDemo}), nil
}

// resolveAccount loads the requested account, or the user's default
// account when no ID is given, and checks ownership.
func (s *TaxService) resolveAccount(ctx context.Context, userID, accountID string) (*model.Account, error) {
	var account *model.Account
	var err error
	if accountID == "" {
		account, err = s.store.GetDefaultAccount(ctx, userID)
	} else {
		account, err = s.store.GetAccount(ctx, accountID)
	}
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, account.UserID); err != nil {
		return nil, err
	}
	return account, nil
}

// loadYearTransactions pages through the store for the account's
// records in the calendar year.
func (s *TaxService) loadYearTransactions(ctx context.Context, userID, accountID string, year int) ([]model.Transaction, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	var all []model.Transaction
	pageToken := ""
	for {
		txs, next, err := s.store.ListTransactions(ctx, userID, accountID, &start, &end, 500, pageToken)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			all = append(all, *tx)
		}
		if next == "" || len(all) >= maxTaxTransactions {
			break
		}
		pageToken = next
	}
	return all, nil
}

// computeReport runs the engine and maps its errors to Connect codes:
// bad input data is the caller's fault, bad configuration is ours.
func (s *TaxService) computeReport(txs []model.Transaction, accountType model.AccountType, regime model.TaxRegime, year int) (*tax.Report, error) {
	report, err := s.engine.ComputeTaxReport(tax.Input{
		Transactions: txs,
		AccountType:  accountType,
		TaxRegime:    regime,
		Year:         year,
	})
	if err != nil {
		var verr *tax.ValidationError
		if errors.As(err, &verr) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		var cerr *tax.ConfigurationError
		if errors.As(err, &cerr) {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return report, nil
}

// ============================================================================
// ExportTaxReport
// ============================================================================

type ExportTaxReportRequest struct {
	AccountID string          `json:"accountId,omitempty"`
	TaxRegime model.TaxRegime `json:"taxRegime,omitempty"`
	Year      int             `json:"year"`
	Format    string          `json:"format"` // "csv" or "json"
}

type ExportTaxReportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"` // base64 over the wire
}

func (s *TaxService) ExportTaxReport(ctx context.Context, req *connect.Request[ExportTaxReportRequest]) (*connect.Response[ExportTaxReportResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if msg.Format != "csv" && msg.Format != "json" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("format must be csv or json"))
	}
	year := msg.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	account, err := s.resolveAccount(ctx, claims.UID, msg.AccountID)
	if err != nil {
		return nil, err
	}
	txs, err := s.loadYearTransactions(ctx, claims.UID, account.ID, year)
	if err != nil {
		return nil, storeError(err)
	}
	report, err := s.computeReport(txs, account.Type, msg.TaxRegime, year)
	if err != nil {
		return nil, err
	}

	var data []byte
	var contentType string
	switch msg.Format {
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		contentType = "application/json"
	case "csv":
		data, err = reportToCSV(report)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		contentType = "text/csv"
	}

	return connect.NewResponse(&ExportTaxReportResponse{
		Filename:    fmt.Sprintf("tax-report-%d.%s", year, msg.Format),
		ContentType: contentType,
		Data:        data,
	}), nil
}

// reportToCSV renders the report summary plus the monthly breakdown.
func reportToCSV(report *tax.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	summary := [][]string{
		{"field", "value"},
		{"year", strconv.Itoa(report.Year)},
		{"accountType", string(report.AccountType)},
		{"taxRegime", string(report.TaxRegime)},
		{"totalIncome", formatAmount(report.TotalIncome)},
		{"totalExpenses", formatAmount(report.TotalExpenses)},
		{"totalDeductions", formatAmount(report.TotalDeductions)},
		{"deductionTypeUsed", string(report.DeductionType)},
		{"taxableIncome", formatAmount(report.TaxableIncome)},
		{"taxOwed", formatAmount(report.TaxOwed)},
		{"effectiveTaxRate", formatAmount(report.EffectiveTaxRate)},
		{"transactionCount", strconv.Itoa(report.TransactionCount)},
	}
	if err := w.WriteAll(summary); err != nil {
		return nil, err
	}

	buckets := make([]string, 0, len(report.Deductions.Itemized.Breakdown))
	for bucket := range report.Deductions.Itemized.Breakdown {
		buckets = append(buckets, bucket)
	}
	sort.Strings(buckets)
	if len(buckets) > 0 {
		if err := w.Write([]string{}); err != nil {
			return nil, err
		}
		if err := w.Write([]string{"deduction bucket", "amount"}); err != nil {
			return nil, err
		}
		for _, bucket := range buckets {
			row := []string{
				tax.BucketDisplayName(bucket),
				formatAmount(report.Deductions.Itemized.Breakdown[bucket]),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	if err := w.Write([]string{}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"month", "income", "expenses", "tax"}); err != nil {
		return nil, err
	}
	for _, m := range report.MonthlyBreakdown {
		row := []string{
			time.Month(m.Month + 1).String(),
			formatAmount(m.Income),
			formatAmount(m.Expenses),
			formatAmount(m.Tax),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
