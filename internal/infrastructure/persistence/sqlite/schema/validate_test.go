package schema

import (
	"strings"
	"testing"

	"annoflow/internal/domain/audit"
)

func TestValidatePolicyAcceptsDefault(t *testing.T) {
	if err := ValidatePolicy(audit.Default()); err != nil {
		t.Fatalf("ValidatePolicy(Default()) error = %v", err)
	}
}

func TestValidatePolicyRejectsUnknownColumn(t *testing.T) {
	policy := audit.NewPolicy(map[string][]string{
		"project": {"status", "no_such_column"},
	})

	err := ValidatePolicy(policy)
	if err == nil {
		t.Fatal("ValidatePolicy() = nil, want error for unknown column")
	}
	if !strings.Contains(err.Error(), "no_such_column") {
		t.Fatalf("ValidatePolicy() error = %v, want mention of no_such_column", err)
	}
}

func TestValidatePolicyRejectsUnknownTable(t *testing.T) {
	policy := audit.NewPolicy(map[string][]string{
		"ghost_table": {"status"},
	})

	if err := ValidatePolicy(policy); err == nil {
		t.Fatal("ValidatePolicy() = nil, want error for unknown table")
	}
}
