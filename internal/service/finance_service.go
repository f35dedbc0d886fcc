package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/welthfin/backend/internal/auth"
	"github.com/welthfin/backend/internal/model"
	"github.com/welthfin/backend/internal/store"
)

// FinanceService implements the account and transaction RPC surface.
type FinanceService struct {
	store store.Store
}

// NewFinanceService creates a new finance service
func NewFinanceService(s store.Store) *FinanceService {
	return &FinanceService{store: s}
}

// storeError maps store failures onto Connect codes.
func storeError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// ============================================================================
// Account operations
// ============================================================================

type CreateAccountRequest struct {
	Name      string            `json:"name"`
	Type      model.AccountType `json:"type"`
	Balance   float64           `json:"balance"`
	IsDefault bool              `json:"isDefault"`
}

type AccountResponse struct {
	Account *model.Account `json:"account"`
}

func (s *FinanceService) CreateAccount(ctx context.Context, req *connect.Request[CreateAccountRequest]) (*connect.Response[AccountResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("account name is required"))
	}
	switch msg.Type {
	case model.AccountSavings, model.AccountCurrent:
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("account type must be SAVINGS or CURRENT"))
	}

	now := time.Now().UTC()
	account := &model.Account{
		ID:        uuid.New().String(),
		UserID:    claims.UID,
		Name:      msg.Name,
		Type:      msg.Type,
		Balance:   msg.Balance,
		IsDefault: msg.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// First account becomes the default automatically
	existing, err := s.store.ListAccounts(ctx, claims.UID)
	if err != nil {
		return nil, storeError(err)
	}
	if len(existing) == 0 {
		account.IsDefault = true
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, storeError(err)
	}

	log.Printf("[FinanceService] created account %s for user %s", account.ID, claims.UID)
	return connect.NewResponse(&AccountResponse{Account: account}), nil
}

type GetAccountRequest struct {
	AccountID string `json:"accountId"`
}

func (s *FinanceService) GetAccount(ctx context.Context, req *connect.Request[GetAccountRequest]) (*connect.Response[AccountResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, account.UserID); err != nil {
		return nil, err
	}

	return connect.NewResponse(&AccountResponse{Account: account}), nil
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []*model.Account `json:"accounts"`
}

func (s *FinanceService) ListAccounts(ctx context.Context, req *connect.Request[ListAccountsRequest]) (*connect.Response[ListAccountsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.ListAccounts(ctx, claims.UID)
	if err != nil {
		return nil, storeError(err)
	}
	return connect.NewResponse(&ListAccountsResponse{Accounts: accounts}), nil
}

type UpdateAccountRequest struct {
	AccountID string   `json:"accountId"`
	Name      string   `json:"name,omitempty"`
	Balance   *float64 `json:"balance,omitempty"`
	IsDefault *bool    `json:"isDefault,omitempty"`
}

func (s *FinanceService) UpdateAccount(ctx context.Context, req *connect.Request[UpdateAccountRequest]) (*connect.Response[AccountResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, account.UserID); err != nil {
		return nil, err
	}

	if req.Msg.Name != "" {
		account.Name = req.Msg.Name
	}
	if req.Msg.Balance != nil {
		account.Balance = *req.Msg.Balance
	}
	if req.Msg.IsDefault != nil {
		if !*req.Msg.IsDefault && account.IsDefault {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("cannot unset the default account; mark another account as default instead"))
		}
		account.IsDefault = *req.Msg.IsDefault
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, storeError(err)
	}
	return connect.NewResponse(&AccountResponse{Account: account}), nil
}

type DeleteAccountRequest struct {
	AccountID string `json:"accountId"`
}

type DeleteAccountResponse struct {
	Deleted bool `json:"deleted"`
}

func (s *FinanceService) DeleteAccount(ctx context.Context, req *connect.Request[DeleteAccountRequest]) (*connect.Response[DeleteAccountResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, account.UserID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteAccount(ctx, account.ID); err != nil {
		return nil, storeError(err)
	}
	log.Printf("[FinanceService] deleted account %s and its transactions", account.ID)
	return connect.NewResponse(&DeleteAccountResponse{Deleted: true}), nil
}

// ============================================================================
// Transaction operations
// ============================================================================

type CreateTransactionRequest struct {
	AccountID   string                `json:"accountId"`
	Type        model.TransactionType `json:"type"`
	Category    string                `json:"category"`
	Description string                `json:"description,omitempty"`
	Amount      float64               `json:"amount"`
	Date        time.Time             `json:"date"`
}

type TransactionResponse struct {
	Transaction *model.Transaction `json:"transaction"`
}

func (s *FinanceService) CreateTransaction(ctx context.Context, req *connect.Request[CreateTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if err := validateTransactionFields(msg.Type, msg.Amount, msg.Date); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, msg.AccountID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, account.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tx := &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      claims.UID,
		AccountID:   account.ID,
		Type:        msg.Type,
		Category:    msg.Category,
		Description: msg.Description,
		Amount:      msg.Amount,
		Date:        msg.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, storeError(err)
	}
	return connect.NewResponse(&TransactionResponse{Transaction: tx}), nil
}

type GetTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

func (s *FinanceService) GetTransaction(ctx context.Context, req *connect.Request[GetTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(ctx, req.Msg.TransactionID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, tx.UserID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&TransactionResponse{Transaction: tx}), nil
}

type UpdateTransactionRequest struct {
	TransactionID string                `json:"transactionId"`
	Type          model.TransactionType `json:"type,omitempty"`
	Category      string                `json:"category,omitempty"`
	Description   *string               `json:"description,omitempty"`
	Amount        *float64              `json:"amount,omitempty"`
	Date          *time.Time            `json:"date,omitempty"`
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(ctx, req.Msg.TransactionID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, tx.UserID); err != nil {
		return nil, err
	}

	msg := req.Msg
	if msg.Type != "" {
		tx.Type = msg.Type
	}
	if msg.Category != "" {
		tx.Category = msg.Category
	}
	if msg.Description != nil {
		tx.Description = *msg.Description
	}
	if msg.Amount != nil {
		tx.Amount = *msg.Amount
	}
	if msg.Date != nil {
		tx.Date = *msg.Date
	}
	if err := validateTransactionFields(tx.Type, tx.Amount, tx.Date); err != nil {
		return nil, err
	}
	tx.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, storeError(err)
	}
	return connect.NewResponse(&TransactionResponse{Transaction: tx}), nil
}

type DeleteTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

type DeleteTransactionResponse struct {
	Deleted bool `json:"deleted"`
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(ctx, req.Msg.TransactionID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, tx.UserID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteTransaction(ctx, tx.ID); err != nil {
		return nil, storeError(err)
	}
	return connect.NewResponse(&DeleteTransactionResponse{Deleted: true}), nil
}

type ListTransactionsRequest struct {
	AccountID string `json:"accountId,omitempty"`
	StartDate string `json:"startDate,omitempty"` // RFC 3339
	EndDate   string `json:"endDate,omitempty"`   // RFC 3339
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions  []*model.Transaction `json:"transactions"`
	NextPageToken string               `json:"nextPageToken,omitempty"`
}

func (s *FinanceService) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := auth.ParseDateRange(req.Msg.StartDate, req.Msg.EndDate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	txs, nextToken, err := s.store.ListTransactions(ctx, claims.UID, req.Msg.AccountID,
		start, end, auth.NormalizePageSize(req.Msg.PageSize), req.Msg.PageToken)
	if err != nil {
		return nil, storeError(err)
	}
	return connect.NewResponse(&ListTransactionsResponse{
		Transactions:  txs,
		NextPageToken: nextToken,
	}), nil
}

// validateTransactionFields rejects records the tax engine would later
// refuse, so bad data never reaches the store.
func validateTransactionFields(txType model.TransactionType, amount float64, date time.Time) error {
	switch txType {
	case model.TransactionIncome, model.TransactionExpense:
	default:
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("transaction type must be INCOME or EXPENSE"))
	}
	if amount < 0 {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount must be non-negative; direction is carried by type"))
	}
	if date.IsZero() {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("date is required"))
	}
	return nil
}
