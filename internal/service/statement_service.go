package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"connectrpc.com/connect"

	"github.com/welthfin/backend/internal/auth"
	"github.com/welthfin/backend/internal/extraction"
	"github.com/welthfin/backend/internal/model"
)

// maxStatementBytes caps uploaded statement size at 10MB.
const maxStatementBytes = 10 * 1024 * 1024

// StatementService turns uploaded bank statements into stored
// transactions via the extraction pipeline.
type StatementService struct {
	store     storeIface
	extractor *extraction.Service
}

// storeIface narrows the store surface this service needs.
type storeIface interface {
	GetAccount(ctx context.Context, accountID string) (*model.Account, error)
	GetDefaultAccount(ctx context.Context, userID string) (*model.Account, error)
	BatchCreateTransactions(ctx context.Context, txs []*model.Transaction) error
}

// NewStatementService creates a statement import service.
func NewStatementService(s storeIface, extractor *extraction.Service) *StatementService {
	return &StatementService{store: s, extractor: extractor}
}

type ImportStatementRequest struct {
	AccountID string `json:"accountId,omitempty"` // empty means the default account
	Filename  string `json:"filename,omitempty"`
	// Data carries the PDF bytes, base64-encoded on the wire. Leave it
	// empty and set GcsObject to import a statement already uploaded to
	// the statement bucket.
	Data      []byte `json:"data,omitempty"`
	GcsObject string `json:"gcsObject,omitempty"`
}

type ImportStatementResponse struct {
	Imported   int      `json:"imported"`
	Skipped    int      `json:"skipped"`
	MethodUsed string   `json:"methodUsed"`
	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`
	ArchiveRef string   `json:"archiveRef,omitempty"`
}

func (s *StatementService) ImportStatement(ctx context.Context, req *connect.Request[ImportStatementRequest]) (*connect.Response[ImportStatementResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if len(msg.Data) == 0 && msg.GcsObject == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("statement data or gcsObject is required"))
	}
	if len(msg.Data) > maxStatementBytes {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("statement exceeds %d bytes", maxStatementBytes))
	}

	var account *model.Account
	if msg.AccountID == "" {
		account, err = s.store.GetDefaultAccount(ctx, claims.UID)
	} else {
		account, err = s.store.GetAccount(ctx, msg.AccountID)
	}
	if err != nil {
		return nil, storeError(err)
	}
	if _, err := auth.RequireUserAccess(ctx, account.UserID); err != nil {
		return nil, err
	}

	data := msg.Data
	if len(data) == 0 {
		data, err = s.extractor.FetchStatement(ctx, msg.GcsObject)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	result, err := s.extractor.ExtractStatement(ctx, data)
	if err != nil {
		var extErr *extraction.ExtractionError
		if errors.As(err, &extErr) {
			switch extErr.Code {
			case extraction.ErrInvalidDocument:
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			case extraction.ErrNoTransactionsFound:
				return nil, connect.NewError(connect.CodeFailedPrecondition, err)
			default:
				return nil, connect.NewError(connect.CodeUnavailable, err)
			}
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	txs, skipped := result.ToTransactions(claims.UID, account.ID)
	if err := s.store.BatchCreateTransactions(ctx, txs); err != nil {
		return nil, storeError(err)
	}

	archiveRef := msg.GcsObject
	if archiveRef == "" {
		archiveRef, err = s.extractor.ArchiveStatement(ctx, claims.UID, data)
		if err != nil {
			// archival is best-effort; the import already succeeded
			log.Printf("[StatementService] failed to archive statement for user %s: %v", claims.UID, err)
		}
	}

	warnings := result.Warnings
	if skipped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows skipped (unparseable dates)", skipped))
	}

	log.Printf("[StatementService] imported %d transactions into account %s via %s",
		len(txs), account.ID, result.MethodUsed)
	return connect.NewResponse(&ImportStatementResponse{
		Imported:   len(txs),
		Skipped:    skipped,
		MethodUsed: result.MethodUsed,
		Confidence: result.OverallConfidence,
		Warnings:   warnings,
		ArchiveRef: archiveRef,
	}), nil
}
