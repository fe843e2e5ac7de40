package google

import (
	"context"
	"testing"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		name string
		base string
		year int
		want string
	}{
		{"plain base", "Expenses", 2025, "2025 Expenses"},
		{"already prefixed", "2024 Expenses", 2025, "2024 Expenses"},
		{"empty base", "", 2025, ""},
		{"short base", "Exp", 2025, "2025 Exp"},
		{"numeric but not a year", "1234", 2025, "2025 1234"},
		{"whitespace trimmed", "  Expenses  ", 2025, "2025 Expenses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("New() with empty config, want error")
	}
}

func TestNewRequiresCredentialMaterial(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "abc"})
	if err == nil {
		t.Fatal("New() without oauth material, want error")
	}
}

func TestMaterialPrefersInline(t *testing.T) {
	got, err := material(`{"k":1}`, "/nonexistent/file.json")
	if err != nil {
		t.Fatalf("material() error = %v", err)
	}
	if string(got) != `{"k":1}` {
		t.Errorf("material() = %q, want inline JSON", got)
	}
}

func TestMaterialMissingFile(t *testing.T) {
	if _, err := material("", "/nonexistent/file.json"); err == nil {
		t.Error("material() with missing file, want error")
	}
}
