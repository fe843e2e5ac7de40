package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"dollars and cents", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"whole dollars", "1000", 100000, false},
		{"zero", "0", 0, false},
		{"rounds half up", "12.345", 1235, false},
		{"rounds down", "12.344", 1234, false},
		{"single fraction digit", "12.3", 1230, false},
		{"negative", "-5.50", -550, false},
		{"leading plus", "+5.50", 550, false},
		{"bare fraction", ".50", 50, false},
		{"whitespace", "  42  ", 4200, false},
		{"empty", "", 0, true},
		{"letters", "abc", 0, true},
		{"two dots", "1.2.3", 0, true},
		{"mixed digits", "12a.30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimal(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimal(%q) error = %v", tt.input, err)
			}
			if !got.Valid || got.Cents != tt.want {
				t.Errorf("ParseDecimal(%q) = %+v, want %d cents", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecimalString(t *testing.T) {
	tests := []struct {
		name string
		d    Decimal
		want string
	}{
		{"positive", NewDecimal(1234), "12.34"},
		{"negative", NewDecimal(-550), "-5.50"},
		{"zero", NewDecimal(0), "0.00"},
		{"cents only", NewDecimal(7), "0.07"},
		{"null", Decimal{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecimalJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Decimal
	}{
		{"string amount", `"1234.56"`, NewDecimal(123456)},
		{"null", `null`, Decimal{}},
		{"empty string", `""`, Decimal{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decimal
			if err := json.Unmarshal([]byte(tt.json), &d); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.json, err)
			}
			if d != tt.want {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.json, d, tt.want)
			}
		})
	}

	out, err := json.Marshal(NewDecimal(123456))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `"1234.56"` {
		t.Errorf("Marshal() = %s, want \"1234.56\"", out)
	}
	out, err = json.Marshal(Decimal{})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != "null" {
		t.Errorf("Marshal(null) = %s, want null", out)
	}
}

func TestDecimalPredicates(t *testing.T) {
	if !NewDecimal(0).IsZero() {
		t.Error("NewDecimal(0).IsZero() = false, want true")
	}
	if (Decimal{}).IsZero() {
		t.Error("null IsZero() = true, want false")
	}
	if !NewDecimal(100).Equal(NewDecimal(100)) {
		t.Error("Equal() on same cents = false, want true")
	}
	if NewDecimal(100).Equal(Decimal{Cents: 100}) {
		t.Error("Equal() with null side = true, want false")
	}
}

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "$12.34"},
		{-1234, "-$12.34"},
		{0, "$0.00"},
		{100000, "$1000.00"},
	}

	for _, tt := range tests {
		if got := FormatDollars(tt.cents); got != tt.want {
			t.Errorf("FormatDollars(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
