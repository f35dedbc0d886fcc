package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/welthfin/backend/internal/model"
)

func TestMemoryStoreAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	account := &model.Account{UserID: "u1", Name: "Everyday", Type: model.AccountSavings, IsDefault: true}
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if account.ID == "" {
		t.Fatal("CreateAccount did not assign an ID")
	}

	got, err := s.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Name != "Everyday" {
		t.Errorf("Name = %q, want Everyday", got.Name)
	}

	got.Name = "Renamed"
	if err := s.UpdateAccount(ctx, got); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	got2, _ := s.GetAccount(ctx, account.ID)
	if got2.Name != "Renamed" {
		t.Errorf("update not persisted, Name = %q", got2.Name)
	}

	if err := s.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, err := s.GetAccount(ctx, account.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreSingleDefaultAccount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := &model.Account{UserID: "u1", Name: "A", Type: model.AccountSavings, IsDefault: true}
	second := &model.Account{UserID: "u1", Name: "B", Type: model.AccountCurrent, IsDefault: true}
	if err := s.CreateAccount(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAccount(ctx, second); err != nil {
		t.Fatal(err)
	}

	def, err := s.GetDefaultAccount(ctx, "u1")
	if err != nil {
		t.Fatalf("GetDefaultAccount: %v", err)
	}
	if def.ID != second.ID {
		t.Errorf("default = %s, want the most recently flagged account %s", def.ID, second.ID)
	}

	accounts, _ := s.ListAccounts(ctx, "u1")
	defaults := 0
	for _, a := range accounts {
		if a.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("found %d default accounts, want exactly 1", defaults)
	}
}

func TestMemoryStoreDeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	account := &model.Account{UserID: "u1", Name: "A", Type: model.AccountSavings}
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatal(err)
	}
	tx := &model.Transaction{UserID: "u1", AccountID: account.ID, Type: model.TransactionExpense, Amount: 10, Date: time.Now().UTC()}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTransaction(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("transaction survived account deletion: %v", err)
	}
}

func TestMemoryStoreListTransactionsFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tx := &model.Transaction{
			ID:        fmt.Sprintf("tx-%d", i),
			UserID:    "u1",
			AccountID: "a1",
			Type:      model.TransactionExpense,
			Amount:    float64(i + 1),
			Date:      base.AddDate(0, 0, i),
		}
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}
	other := &model.Transaction{ID: "other", UserID: "u2", AccountID: "a2", Type: model.TransactionIncome, Amount: 1, Date: base}
	if err := s.CreateTransaction(ctx, other); err != nil {
		t.Fatal(err)
	}

	txs, _, err := s.ListTransactions(ctx, "u1", "", nil, nil, 10, "")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 5 {
		t.Errorf("user filter returned %d transactions, want 5", len(txs))
	}

	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 3)
	txs, _, err = s.ListTransactions(ctx, "u1", "a1", &start, &end, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 {
		t.Errorf("date filter returned %d transactions, want 3", len(txs))
	}
}

func TestMemoryStoreListTransactionsPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		tx := &model.Transaction{
			ID:     fmt.Sprintf("tx-%d", i),
			UserID: "u1",
			Type:   model.TransactionIncome,
			Amount: 1,
			Date:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	var all []*model.Transaction
	token := ""
	pages := 0
	for {
		txs, next, err := s.ListTransactions(ctx, "u1", "", nil, nil, 2, token)
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, txs...)
		pages++
		if next == "" {
			break
		}
		token = next
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
	}
	if len(all) != 5 {
		t.Errorf("collected %d transactions over %d pages, want 5", len(all), pages)
	}
	seen := map[string]bool{}
	for _, tx := range all {
		if seen[tx.ID] {
			t.Errorf("transaction %s returned twice", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestMemoryStoreBatchCreateTransactions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	txs := []*model.Transaction{
		{UserID: "u1", Type: model.TransactionExpense, Amount: 5, Date: time.Now().UTC()},
		{UserID: "u1", Type: model.TransactionIncome, Amount: 7, Date: time.Now().UTC()},
	}
	if err := s.BatchCreateTransactions(ctx, txs); err != nil {
		t.Fatal(err)
	}
	for _, tx := range txs {
		if tx.ID == "" {
			t.Error("batch create did not assign an ID")
		}
	}
	listed, _, err := s.ListTransactions(ctx, "u1", "", nil, nil, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Errorf("listed %d transactions, want 2", len(listed))
	}
}

func TestMemoryStoreUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	user := &model.User{ID: "u1", Email: "u1@test.local", DisplayName: "Test"}
	if err := s.UpsertUser(ctx, user); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "u1@test.local" {
		t.Errorf("Email = %q", got.Email)
	}
}
