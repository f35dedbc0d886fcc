package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/welthfin/backend/internal/model"
)

const (
	usersCollection        = "users"
	accountsCollection     = "accounts"
	transactionsCollection = "transactions"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// applyDateAwarePagination handles pagination for queries with date range filters.
// Firestore requires OrderBy on inequality fields first, so we use OrderBy("Date") + OrderBy(__name__).
// The cursor must include both the Date value and the document ID.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		// Fetch the cursor document to get its Date value for composite StartAfter
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// notFound translates a Firestore NotFound status into ErrNotFound so
// callers can branch on it without importing grpc codes.
func notFound(err error, kind, id string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s %s: %w", kind, id, err)
}

// User operations

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) UpsertUser(ctx context.Context, user *model.User) error {
	_, err := s.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	return err
}

// Account operations

func (s *FirestoreStore) CreateAccount(ctx context.Context, account *model.Account) error {
	if account.IsDefault {
		if err := s.clearDefaultAccount(ctx, account.UserID, account.ID); err != nil {
			return err
		}
	}
	_, err := s.client.Collection(accountsCollection).Doc(account.ID).Set(ctx, account)
	return err
}

func (s *FirestoreStore) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	doc, err := s.client.Collection(accountsCollection).Doc(accountID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "account", accountID)
	}
	var account model.Account
	if err := doc.DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	return &account, nil
}

func (s *FirestoreStore) UpdateAccount(ctx context.Context, account *model.Account) error {
	if account.IsDefault {
		if err := s.clearDefaultAccount(ctx, account.UserID, account.ID); err != nil {
			return err
		}
	}
	_, err := s.client.Collection(accountsCollection).Doc(account.ID).Set(ctx, account)
	return err
}

func (s *FirestoreStore) DeleteAccount(ctx context.Context, accountID string) error {
	// Delete the account's transactions in batches before the account itself
	for {
		iter := s.client.Collection(transactionsCollection).
			Where("AccountID", "==", accountID).
			Limit(200).
			Documents(ctx)
		docs, err := iter.GetAll()
		if err != nil {
			return fmt.Errorf("failed to list account transactions: %w", err)
		}
		if len(docs) == 0 {
			break
		}
		bw := s.client.BulkWriter(ctx)
		for _, doc := range docs {
			if _, err := bw.Delete(doc.Ref); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}
		}
		bw.End()
	}

	_, err := s.client.Collection(accountsCollection).Doc(accountID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListAccounts(ctx context.Context, userID string) ([]*model.Account, error) {
	iter := s.client.Collection(accountsCollection).
		Where("UserID", "==", userID).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)

	var accounts []*model.Account
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		var account model.Account
		if err := doc.DataTo(&account); err != nil {
			return nil, fmt.Errorf("failed to parse account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

func (s *FirestoreStore) GetDefaultAccount(ctx context.Context, userID string) (*model.Account, error) {
	iter := s.client.Collection(accountsCollection).
		Where("UserID", "==", userID).
		Where("IsDefault", "==", true).
		Limit(1).
		Documents(ctx)
	docs, err := iter.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query default account: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("default account for user %s: %w", userID, ErrNotFound)
	}
	var account model.Account
	if err := docs[0].DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	return &account, nil
}

// clearDefaultAccount unsets IsDefault on the user's other accounts so
// at most one default exists per user.
func (s *FirestoreStore) clearDefaultAccount(ctx context.Context, userID, exceptID string) error {
	iter := s.client.Collection(accountsCollection).
		Where("UserID", "==", userID).
		Where("IsDefault", "==", true).
		Documents(ctx)
	docs, err := iter.GetAll()
	if err != nil {
		return fmt.Errorf("failed to query default accounts: %w", err)
	}
	for _, doc := range docs {
		if doc.Ref.ID == exceptID {
			continue
		}
		if _, err := doc.Ref.Update(ctx, []firestore.Update{{Path: "IsDefault", Value: false}}); err != nil {
			return fmt.Errorf("failed to clear default flag: %w", err)
		}
	}
	return nil
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	_, err := s.client.Collection(transactionsCollection).Doc(tx.ID).Set(ctx, tx)
	return err
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, txID string) (*model.Transaction, error) {
	doc, err := s.client.Collection(transactionsCollection).Doc(txID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "transaction", txID)
	}
	var tx model.Transaction
	if err := doc.DataTo(&tx); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &tx, nil
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	_, err := s.client.Collection(transactionsCollection).Doc(tx.ID).Set(ctx, tx)
	return err
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, txID string) error {
	_, err := s.client.Collection(transactionsCollection).Doc(txID).Delete(ctx)
	return err
}

func (s *FirestoreStore) BatchCreateTransactions(ctx context.Context, txs []*model.Transaction) error {
	bw := s.client.BulkWriter(ctx)
	for _, tx := range txs {
		ref := s.client.Collection(transactionsCollection).Doc(tx.ID)
		if _, err := bw.Set(ref, tx); err != nil {
			return fmt.Errorf("failed to enqueue transaction %s: %w", tx.ID, err)
		}
	}
	bw.End()
	return nil
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID, accountID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	query := s.client.Collection(transactionsCollection).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}
	if accountID != "" {
		query = query.Where("AccountID", "==", accountID)
	}
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}

	query, err := s.applyDateAwarePagination(ctx, query, transactionsCollection, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	var nextToken string
	if int32(len(docs)) > pageSize {
		docs = docs[:pageSize]
		nextToken = EncodePageToken(docs[len(docs)-1].Ref.ID)
	}

	txs := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var tx model.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, "", fmt.Errorf("failed to parse transaction: %w", err)
		}
		txs = append(txs, &tx)
	}
	return txs, nextToken, nil
}
