package internal

import "fmt"

// LoadError represents errors reading the raw event or commit exports
type LoadError struct {
	Path string
	Op   string // "open", "read", "parse"
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SessionError represents an invariant violation on a reconstructed or
// polished session
type SessionError struct {
	SessionID string
	Reason    string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("invalid session [%s]: %s", e.SessionID, e.Reason)
}

// ConfigError represents an invalid or unreadable configuration
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error [%s] %s: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("config error [%s]: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LedgerError represents errors accessing the sync ledger database
type LedgerError struct {
	Path string
	Op   string // "open", "init", "query", "write"
	Err  error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}
