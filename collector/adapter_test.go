package collector

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// SourceError – attribution wrapper
// ---------------------------------------------------------------------------

func TestSourceError_UnwrapsToUnavailable(t *testing.T) {
	err := &SourceError{Source: "ps", Err: fmt.Errorf("exec: not found: %w", ErrSourceUnavailable)}
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("errors.Is(SourceError, ErrSourceUnavailable) = false; want true")
	}
}

func TestSourceError_MessageNamesSource(t *testing.T) {
	err := &SourceError{Source: "wmic", Err: errors.New("exit status 1")}
	if got, want := err.Error(), "wmic: exit status 1"; got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Query – log label
// ---------------------------------------------------------------------------

func TestQueryString_Labels(t *testing.T) {
	if got := QueryProcesses.String(); got != "processes" {
		t.Errorf("QueryProcesses.String() = %q; want \"processes\"", got)
	}
	if got := QuerySystem.String(); got != "system" {
		t.Errorf("QuerySystem.String() = %q; want \"system\"", got)
	}
	if got := Query(99).String(); got != "unknown" {
		t.Errorf("Query(99).String() = %q; want \"unknown\"", got)
	}
}
