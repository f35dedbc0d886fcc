package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/welthfin/backend/internal/rpc"
)

// Procedure paths. Handlers are registered directly with
// connect.NewUnaryHandler over JSON payloads, so these only have to
// stay stable for clients, there is no generated registry behind them.
const (
	financeServicePrefix   = "/welthfin.v1.FinanceService/"
	taxServicePrefix       = "/welthfin.v1.TaxService/"
	statementServicePrefix = "/welthfin.v1.StatementService/"
)

// RegisterRoutes mounts every RPC handler on the mux. The interceptor
// chain (auth, debug impersonation) comes in through opts.
func RegisterRoutes(mux *http.ServeMux, finance *FinanceService, taxSvc *TaxService, statements *StatementService, opts ...connect.HandlerOption) {
	opts = append(opts, connect.WithCodec(rpc.JSONCodec{}))

	mux.Handle(financeServicePrefix+"CreateAccount",
		connect.NewUnaryHandler(financeServicePrefix+"CreateAccount", finance.CreateAccount, opts...))
	mux.Handle(financeServicePrefix+"GetAccount",
		connect.NewUnaryHandler(financeServicePrefix+"GetAccount", finance.GetAccount, opts...))
	mux.Handle(financeServicePrefix+"ListAccounts",
		connect.NewUnaryHandler(financeServicePrefix+"ListAccounts", finance.ListAccounts, opts...))
	mux.Handle(financeServicePrefix+"UpdateAccount",
		connect.NewUnaryHandler(financeServicePrefix+"UpdateAccount", finance.UpdateAccount, opts...))
	mux.Handle(financeServicePrefix+"DeleteAccount",
		connect.NewUnaryHandler(financeServicePrefix+"DeleteAccount", finance.DeleteAccount, opts...))

	mux.Handle(financeServicePrefix+"CreateTransaction",
		connect.NewUnaryHandler(financeServicePrefix+"CreateTransaction", finance.CreateTransaction, opts...))
	mux.Handle(financeServicePrefix+"GetTransaction",
		connect.NewUnaryHandler(financeServicePrefix+"GetTransaction", finance.GetTransaction, opts...))
	mux.Handle(financeServicePrefix+"UpdateTransaction",
		connect.NewUnaryHandler(financeServicePrefix+"UpdateTransaction", finance.UpdateTransaction, opts...))
	mux.Handle(financeServicePrefix+"DeleteTransaction",
		connect.NewUnaryHandler(financeServicePrefix+"DeleteTransaction", finance.DeleteTransaction, opts...))
	mux.Handle(financeServicePrefix+"ListTransactions",
		connect.NewUnaryHandler(financeServicePrefix+"ListTransactions", finance.ListTransactions, opts...))

	mux.Handle(taxServicePrefix+"ComputeTaxReport",
		connect.NewUnaryHandler(taxServicePrefix+"ComputeTaxReport", taxSvc.ComputeTaxReport, opts...))
	mux.Handle(taxServicePrefix+"ExportTaxReport",
		connect.NewUnaryHandler(taxServicePrefix+"ExportTaxReport", taxSvc.ExportTaxReport, opts...))

	if statements != nil {
		mux.Handle(statementServicePrefix+"ImportStatement",
			connect.NewUnaryHandler(statementServicePrefix+"ImportStatement", statements.ImportStatement, opts...))
	}
}
