// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing rupiah amounts from user input
// and formatting them back for display. Amounts are held in sen (1/100
// rupiah) so sums never drift.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount of rupiah in sen.
type Money struct {
	Sen int64
}

// Rupiah builds a Money from whole rupiah.
func Rupiah(r int64) Money {
	return Money{Sen: r * 100}
}

func (m Money) Validate() error {
	if m.Sen <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Sen: m.Sen + o.Sen} }
func (m Money) Sub(o Money) Money { return Money{Sen: m.Sen - o.Sen} }
func (m Money) IsZero() bool      { return m.Sen == 0 }

// ParseDecimalToSen converts a user supplied amount to sen with half-up
// rounding on the third fractional digit.
//
// Both "." and "," are accepted as the decimal separator. A separator that
// repeats, or that is followed by exactly three digits when it is the only
// one, is read as an id-ID thousands separator. When both appear, the last
// one is the decimal separator. An optional "Rp" prefix is ignored.
//
// Examples:
//
//	ParseDecimalToSen("12500")      -> 1250000, nil
//	ParseDecimalToSen("12,5")       -> 1250, nil
//	ParseDecimalToSen("1.500.000")  -> 150000000, nil
//	ParseDecimalToSen("Rp 1.500,75") -> 150075, nil
//	ParseDecimalToSen("1.005")      -> 100500, nil (thousands group)
//	ParseDecimalToSen("1.0051")     -> 101, nil (rounds up)
func ParseDecimalToSen(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}

	intPart, fracPart, ok := splitAmount(s)
	if !ok {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// Take first two fractional digits; then half-up rounding on third
	var fracSen int64
	if len(fracPart) > 0 {
		fracSen = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracSen += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracSen++
			}
		}
	}
	sen := iv*100 + fracSen
	if sen <= 0 {
		return 0, ErrInvalidAmount
	}
	return sen, nil
}

// splitAmount separates the integer digits from the fractional digits,
// removing thousands separators.
func splitAmount(s string) (string, string, bool) {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		lastDot := strings.LastIndex(s, ".")
		lastComma := strings.LastIndex(s, ",")
		decimal, thousands := ",", "."
		if lastDot > lastComma {
			decimal, thousands = ".", ","
		}
		if strings.Count(s, decimal) > 1 {
			return "", "", false
		}
		i := strings.LastIndex(s, decimal)
		return stripGroups(s[:i], thousands), s[i+1:], validGroups(s[:i], thousands)
	case dots > 1 || commas > 1:
		sep := "."
		if commas > 1 {
			sep = ","
		}
		return stripGroups(s, sep), "", validGroups(s, sep)
	case dots == 1 || commas == 1:
		sep := "."
		if commas == 1 {
			sep = ","
		}
		i := strings.Index(s, sep)
		if len(s)-i-1 == 3 && i > 0 {
			return s[:i] + s[i+1:], "", true
		}
		return s[:i], s[i+1:], true
	default:
		return s, "", true
	}
}

func stripGroups(s, sep string) string {
	return strings.ReplaceAll(s, sep, "")
}

// validGroups checks that every group after the first has three digits.
func validGroups(s, sep string) bool {
	if !strings.Contains(s, sep) {
		return true
	}
	groups := strings.Split(s, sep)
	if groups[0] == "" || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// FormatRupiah renders m the way id-ID currency formatting does: "Rp"
// prefix, "." thousands separators and no fraction digits. Sen are rounded
// half away from zero.
func FormatRupiah(m Money) string {
	sen := m.Sen
	neg := sen < 0
	if neg {
		sen = -sen
	}
	rupiah := sen / 100
	if sen%100 >= 50 {
		rupiah++
	}
	digits := strconv.FormatInt(rupiah, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg && rupiah != 0 {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

// Float returns the rupiah value for display or export only.
// Use Sen for any arithmetic.
func (m Money) Float() float64 {
	return float64(m.Sen) / 100.0
}
