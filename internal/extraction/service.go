// Package extraction turns uploaded bank statement PDFs into
// transactions: a cheap rule-based text pass first, Gemini as fallback.
package extraction

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Service provides statement extraction functionality.
type Service struct {
	textExtractor *TextExtractor
	gemini        *GeminiExtractor
	bucket        *storage.BucketHandle
	retryCfg      RetryConfig
	geminiEnabled bool
}

// Config holds configuration for the extraction service.
type Config struct {
	GeminiModel   string
	EnableGemini  bool
	StorageBucket *storage.BucketHandle // optional statement archive
}

// NewService creates a new extraction service.
func NewService(cfg Config) *Service {
	var gemini *GeminiExtractor
	if cfg.EnableGemini {
		gemini = NewGeminiExtractor(cfg.GeminiModel)
	}
	return &Service{
		textExtractor: &TextExtractor{},
		gemini:        gemini,
		bucket:        cfg.StorageBucket,
		retryCfg:      DefaultGeminiRetryConfig,
		geminiEnabled: cfg.EnableGemini,
	}
}

// ExtractStatement extracts transactions from a statement PDF. It tries
// the rule-based text parser when the PDF carries dense extractable
// text, and falls back to Gemini otherwise.
func (s *Service) ExtractStatement(ctx context.Context, data []byte) (*StatementExtraction, error) {
	if len(data) == 0 {
		return nil, &ExtractionError{
			Code:    ErrInvalidDocument,
			Message: "empty document",
		}
	}

	analysis := AnalyzePDF(data)
	if analysis.Error != nil {
		log.Printf("[Extraction] PDF analysis degraded: %v", analysis.Error)
	}

	if !analysis.IsScanned {
		result, err := s.textExtractor.ExtractFromText(analysis)
		if err == nil {
			log.Printf("[Extraction] text parser extracted %d transactions over %d pages",
				len(result.Transactions), analysis.PageCount)
			return result, nil
		}
		log.Printf("[Extraction] text parser declined, falling back to Gemini: %v", err)
	}

	if !s.geminiEnabled || s.gemini == nil {
		return nil, &ExtractionError{
			Code:    ErrAllMethodsFailed,
			Message: "document requires Gemini extraction but Gemini is not configured",
		}
	}

	result, err := WithRetry(ctx, s.retryCfg, func(ctx context.Context) (*StatementExtraction, error) {
		return s.gemini.ExtractStatement(ctx, data, analysis.MaxOutputTokens)
	})
	if err != nil {
		return nil, err
	}

	// Fill in merchant info Gemini left blank
	for i := range result.Transactions {
		tx := &result.Transactions[i]
		if tx.Merchant == "" || tx.Category == "" {
			info := NormalizeMerchant(tx.Description)
			if tx.Merchant == "" {
				tx.Merchant = info.Name
			}
			if tx.Category == "" {
				tx.Category = info.Category
			}
		}
	}

	result.PageCount = analysis.PageCount
	if len(result.Transactions) == 0 {
		return nil, &ExtractionError{
			Code:    ErrNoTransactionsFound,
			Message: "no transactions found in statement",
			Method:  result.MethodUsed,
		}
	}
	return result, nil
}

// FetchStatement reads a previously uploaded statement PDF out of the
// configured bucket.
func (s *Service) FetchStatement(ctx context.Context, object string) ([]byte, error) {
	if s.bucket == nil {
		return nil, &ExtractionError{
			Code:    ErrInvalidDocument,
			Message: "no statement bucket configured",
		}
	}

	r, err := s.bucket.Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement object %s: %w", object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement object %s: %w", object, err)
	}
	return data, nil
}

// ArchiveStatement stores the raw statement PDF in the configured
// bucket and returns the object name. No-op when no bucket is set.
func (s *Service) ArchiveStatement(ctx context.Context, userID string, data []byte) (string, error) {
	if s.bucket == nil {
		return "", nil
	}

	object := fmt.Sprintf("statements/%s/%s-%s.pdf",
		userID, time.Now().UTC().Format("20060102T150405"), uuid.New().String()[:8])

	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = "application/pdf"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write statement object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize statement object: %w", err)
	}

	log.Printf("[Extraction] archived statement for user %s at %s", userID, object)
	return object, nil
}
