// Package core holds the domain types shared by the gateway, the services,
// and the views.
//
// This file contains the nullable fixed-point Decimal the backend's JSON
// decimals map onto, and the parsing and formatting helpers around it.
package core

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Decimal is a nullable monetary amount held as integer cents. The backend
// serializes decimals as strings ("1234.56") or null; Decimal round-trips
// both. Calculations stay in cents so milestone targets compare exactly.
type Decimal struct {
	Cents int64
	Valid bool
}

// NewDecimal returns a non-null Decimal holding the given cents.
func NewDecimal(cents int64) Decimal {
	return Decimal{Cents: cents, Valid: true}
}

// ParseDecimal converts a decimal string to a Decimal with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted, as is a leading minus. Zero is a legal amount here: debt and
// mortgage comparisons rely on it.
//
// Examples:
//
//	ParseDecimal("12.34")  -> 1234 cents
//	ParseDecimal("12,345") -> 1235 cents (rounds up)
//	ParseDecimal("0")      -> 0 cents
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Decimal{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Decimal{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Decimal{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Decimal{}, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Decimal{}, ErrInvalidAmount
	}

	// First two fractional digits, half-up on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return Decimal{Cents: cents, Valid: true}, nil
}

// String formats the amount as a plain decimal with two places ("1234.56").
// Null decimals format as the empty string.
func (d Decimal) String() string {
	if !d.Valid {
		return ""
	}
	cents := d.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Dollars returns the value as a float64 for display-only math. Use cents
// for comparisons.
func (d Decimal) Dollars() float64 {
	return float64(d.Cents) / 100.0
}

// Equal reports whether both decimals are non-null and hold the same cents.
func (d Decimal) Equal(other Decimal) bool {
	return d.Valid && other.Valid && d.Cents == other.Cents
}

// IsZero reports a non-null zero amount.
func (d Decimal) IsZero() bool {
	return d.Valid && d.Cents == 0
}

var jsonNull = []byte("null")

func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return jsonNull, nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, jsonNull) {
		*d = Decimal{}
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*d = Decimal{}
		return nil
	}
	parsed, err := ParseDecimal(s)
	if err != nil {
		return fmt.Errorf("decimal %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// FormatDollars renders cents as a dollar string for templates ("$12.34",
// "-$12.34").
func FormatDollars(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("$%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
