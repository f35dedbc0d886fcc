package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/mock/gomock"

	"github.com/welthfin/backend/internal/model"
	"github.com/welthfin/backend/internal/store"
)

func TestCreateAccountFirstBecomesDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewFinanceService(mockStore)
	ctx := testContextWithUser("user-1")

	mockStore.EXPECT().ListAccounts(gomock.Any(), "user-1").Return(nil, nil)
	mockStore.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, account *model.Account) error {
			if !account.IsDefault {
				t.Error("first account should be marked default")
			}
			if account.UserID != "user-1" {
				t.Errorf("UserID = %q, want user-1", account.UserID)
			}
			return nil
		})

	resp, err := svc.CreateAccount(ctx, connect.NewRequest(&CreateAccountRequest{
		Name: "Primary Savings",
		Type: model.AccountSavings,
	}))
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if resp.Msg.Account.ID == "" {
		t.Error("expected an ID to be assigned")
	}
}

func TestCreateAccountRejectsBadType(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewFinanceService(store.NewMockStore(ctrl))

	_, err := svc.CreateAccount(testContextWithUser("user-1"), connect.NewRequest(&CreateAccountRequest{
		Name: "Crypto",
		Type: model.AccountType("WALLET"),
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want invalid_argument", connect.CodeOf(err))
	}
}

func TestCreateAccountRequiresAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewFinanceService(store.NewMockStore(ctrl))

	_, err := svc.CreateAccount(context.Background(), connect.NewRequest(&CreateAccountRequest{
		Name: "Savings",
		Type: model.AccountSavings,
	}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("code = %v, want unauthenticated", connect.CodeOf(err))
	}
}

func TestGetAccountNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewFinanceService(mockStore)

	mockStore.EXPECT().GetAccount(gomock.Any(), "missing").Return(nil, store.ErrNotFound)

	_, err := svc.GetAccount(testContextWithUser("user-1"), connect.NewRequest(&GetAccountRequest{AccountID: "missing"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("code = %v, want not_found", connect.CodeOf(err))
	}
}

func TestGetAccountDeniesOtherUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewFinanceService(mockStore)

	mockStore.EXPECT().GetAccount(gomock.Any(), "acc-1").Return(&model.Account{
		ID:     "acc-1",
		UserID: "someone-else",
	}, nil)

	_, err := svc.GetAccount(testContextWithUser("user-1"), connect.NewRequest(&GetAccountRequest{AccountID: "acc-1"}))
	if connect.CodeOf(err) != connect.CodePermissionDenied {
		t.Errorf("code = %v, want permission_denied", connect.CodeOf(err))
	}
}

func TestUpdateAccountCannotUnsetDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewFinanceService(mockStore)

	mockStore.EXPECT().GetAccount(gomock.Any(), "acc-1").Return(&model.Account{
		ID:        "acc-1",
		UserID:    "user-1",
		IsDefault: true,
	}, nil)

	off := false
	_, err := svc.UpdateAccount(testContextWithUser("user-1"), connect.NewRequest(&UpdateAccountRequest{
		AccountID: "acc-1",
		IsDefault: &off,
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want invalid_argument", connect.CodeOf(err))
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewFinanceService(store.NewMockStore(ctrl))
	ctx := testContextWithUser("user-1")
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  *CreateTransactionRequest
	}{
		{"bad type", &CreateTransactionRequest{AccountID: "acc-1", Type: "TRANSFER", Amount: 100, Date: date}},
		{"negative amount", &CreateTransactionRequest{AccountID: "acc-1", Type: model.TransactionExpense, Amount: -5, Date: date}},
		{"zero date", &CreateTransactionRequest{AccountID: "acc-1", Type: model.TransactionIncome, Amount: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, connect.NewRequest(tt.req))
			if connect.CodeOf(err) != connect.CodeInvalidArgument {
				t.Errorf("code = %v, want invalid_argument", connect.CodeOf(err))
			}
		})
	}
}

func TestCreateTransactionStoresRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewFinanceService(mockStore)
	ctx := testContextWithUser("user-1")

	mockStore.EXPECT().GetAccount(gomock.Any(), "acc-1").Return(&model.Account{
		ID:     "acc-1",
		UserID: "user-1",
	}, nil)
	mockStore.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *model.Transaction) error {
			if tx.UserID != "user-1" || tx.AccountID != "acc-1" {
				t.Errorf("ownership = %s/%s", tx.UserID, tx.AccountID)
			}
			return nil
		})

	resp, err := svc.CreateTransaction(ctx, connect.NewRequest(&CreateTransactionRequest{
		AccountID:   "acc-1",
		Type:        model.TransactionExpense,
		Category:    "groceries",
		Description: "Weekly shop",
		Amount:      2400,
		Date:        time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if resp.Msg.Transaction.Category != "groceries" {
		t.Errorf("Category = %q", resp.Msg.Transaction.Category)
	}
}

func TestListTransactionsBadDateRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewFinanceService(store.NewMockStore(ctrl))

	_, err := svc.ListTransactions(testContextWithUser("user-1"), connect.NewRequest(&ListTransactionsRequest{
		StartDate: "01-01-2024",
	}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want invalid_argument", connect.CodeOf(err))
	}
}

func TestListTransactionsPassesPageToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewFinanceService(mockStore)

	mockStore.EXPECT().
		ListTransactions(gomock.Any(), "user-1", "acc-1", nil, nil, int32(25), "tok").
		Return([]*model.Transaction{{ID: "tx-1"}}, "tok2", nil)

	resp, err := svc.ListTransactions(testContextWithUser("user-1"), connect.NewRequest(&ListTransactionsRequest{
		AccountID: "acc-1",
		PageSize:  25,
		PageToken: "tok",
	}))
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if resp.Msg.NextPageToken != "tok2" || len(resp.Msg.Transactions) != 1 {
		t.Errorf("got %d transactions, next=%q", len(resp.Msg.Transactions), resp.Msg.NextPageToken)
	}
}

func TestStoreErrorMapping(t *testing.T) {
	if connect.CodeOf(storeError(store.ErrNotFound)) != connect.CodeNotFound {
		t.Error("ErrNotFound should map to not_found")
	}
	if connect.CodeOf(storeError(errors.New("boom"))) != connect.CodeInternal {
		t.Error("other errors should map to internal")
	}
}
