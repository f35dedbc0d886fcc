package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used for statement parsing.
const DefaultGeminiModel = "gemini-2.0-flash"

const geminiConfidence = 0.85

// GeminiExtractor parses bank statement PDFs with the Gemini API.
type GeminiExtractor struct {
	model string
}

// NewGeminiExtractor returns a Gemini-backed statement extractor. The
// API key is picked up from the environment by the genai client
// (GEMINI_API_KEY / GOOGLE_API_KEY).
func NewGeminiExtractor(model string) *GeminiExtractor {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiExtractor{model: model}
}

// geminiRow is the JSON shape the prompt instructs the model to emit.
type geminiRow struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Merchant    string  `json:"merchant"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
}

const statementPrompt = "You are a financial statement parser for bank account PDF statements.\n\n" +
	"Task:\n" +
	"- Parse ALL transactions in the attached statement.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a JSON array of objects.\n\n" +
	"Each object must have these fields:\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
	"- \"description\": string, the raw statement description\n" +
	"- \"merchant\": string, the cleaned merchant name, or \"\" if unknown\n" +
	"- \"category\": string, one of: groceries, rent, transportation, utilities, " +
	"entertainment, restaurant, shopping, healthcare, education, travel, salary, other\n" +
	"- \"amount\": number (positive for money IN, negative for money OUT)\n\n" +
	"Rules:\n" +
	"- If the statement has separate debit/credit columns, convert to a single signed \"amount\".\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"[\" and end with \"]\".\n"

// ExtractStatement sends the PDF to Gemini and parses the response into
// statement transactions. maxOutputTokens comes from the PDF pre-analysis.
func (g *GeminiExtractor) ExtractStatement(ctx context.Context, pdfBytes []byte, maxOutputTokens int) (*StatementExtraction, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, &ExtractionError{
			Code:    ErrGeminiUnavailable,
			Message: "create genai client",
			Method:  "gemini",
			Cause:   err,
		}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: statementPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     pdfBytes,
					},
				},
			},
		},
	}

	var config *genai.GenerateContentConfig
	if maxOutputTokens > 0 {
		config = &genai.GenerateContentConfig{MaxOutputTokens: int32(maxOutputTokens)}
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, &ExtractionError{
			Code:      ErrGeminiUnavailable,
			Message:   "generate content",
			Method:    "gemini",
			Retryable: true,
			Cause:     err,
		}
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, &ExtractionError{
			Code:      ErrNoTransactionsFound,
			Message:   "empty response from model",
			Method:    "gemini",
			Retryable: true,
		}
	}

	clean := cleanModelJSON(rawText)

	var rows []geminiRow
	if err := json.Unmarshal([]byte(clean), &rows); err != nil {
		return nil, &ExtractionError{
			Code:      ErrNoTransactionsFound,
			Message:   fmt.Sprintf("unmarshal model JSON: %v", err),
			Method:    "gemini",
			Retryable: true,
		}
	}

	transactions := make([]StatementTransaction, 0, len(rows))
	for _, row := range rows {
		amount := row.Amount
		isDebit := amount < 0
		if isDebit {
			amount = -amount
		}
		if amount == 0 {
			continue
		}
		transactions = append(transactions, StatementTransaction{
			Date:        row.Date,
			Description: row.Description,
			Merchant:    row.Merchant,
			Category:    row.Category,
			Amount:      amount,
			IsDebit:     isDebit,
			Confidence:  geminiConfidence,
		})
	}

	return &StatementExtraction{
		Transactions:      transactions,
		MethodUsed:        "gemini",
		OverallConfidence: geminiConfidence,
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the
// model ignored the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '[' to the last ']' if junk remains.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
