package tax

import "fmt"

// ValidationError reports a malformed input transaction. The engine
// never produces a partial report: the first invalid record aborts the
// whole computation.
type ValidationError struct {
	TransactionID string
	Field         string // "date", "amount", "type"
	Message       string
}

func (e *ValidationError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("invalid transaction %s: %s %s", e.TransactionID, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid transaction: %s %s", e.Field, e.Message)
}

// ConfigurationError reports a malformed engine configuration, e.g. a
// bracket table that is not an ascending partition of [0, inf) or a
// bracket set without a "default" entry. It is raised once at engine
// construction; per-request paths only see it if an Engine was built
// without NewEngine.
type ConfigurationError struct {
	Table   string // which table or rule set is broken
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("tax configuration %s: %s", e.Table, e.Message)
	}
	return "tax configuration: " + e.Message
}
