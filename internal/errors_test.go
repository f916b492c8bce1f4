package internal

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLoadErrorUnwrap(t *testing.T) {
	err := &LoadError{Path: "events.csv", Op: "open", Err: os.ErrNotExist}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("LoadError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "events.csv") {
		t.Errorf("Error() = %q, missing path", err.Error())
	}
}

func TestSessionErrorMessage(t *testing.T) {
	err := &SessionError{SessionID: "ws-1", Reason: "start not before end"}
	for _, want := range []string{"ws-1", "start not before end"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, missing %q", err.Error(), want)
		}
	}
}

func TestConfigErrorMessage(t *testing.T) {
	withField := &ConfigError{Path: "c.yaml", Field: "calendar_id", Err: errors.New("required")}
	if !strings.Contains(withField.Error(), "calendar_id") {
		t.Errorf("Error() = %q, missing field", withField.Error())
	}
	withoutField := &ConfigError{Path: "c.yaml", Err: errors.New("bad yaml")}
	if !strings.Contains(withoutField.Error(), "c.yaml") {
		t.Errorf("Error() = %q, missing path", withoutField.Error())
	}
}

func TestLedgerErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &LedgerError{Path: "ledger.db", Op: "write", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("LedgerError does not unwrap to its cause")
	}
}
