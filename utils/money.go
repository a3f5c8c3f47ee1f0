package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyInput is returned when a raw value has no digits at all
	ErrEmptyInput = errors.New("value is empty")
	// ErrInvalidNumber is returned when a raw value cannot be read as a number
	ErrInvalidNumber = errors.New("value is not a number")
	// ErrNumberTooLarge is returned when a value does not fit its integer type
	ErrNumberTooLarge = fmt.Errorf("%w: too large", ErrInvalidNumber)
)

var (
	hundred  = decimal.NewFromInt(100)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	maxCount = decimal.NewFromInt(math.MaxInt32)
)

// FormatUSD formats an integer amount in cents as a string like "$12,500.00".
func FormatUSD(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	s := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	// Pre-allocate: digits + separators + sign + $ + decimals
	b.Grow(len(s) + len(s)/3 + 5)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	fmt.Fprintf(&b, ".%02d", cents%100)
	return b.String()
}

// FormatDollarsSmart drops the decimals of whole-dollar amounts: "$5" but "$5.50".
func FormatDollarsSmart(cents int64) string {
	if cents%100 == 0 {
		s := FormatUSD(cents)
		return s[:len(s)-3]
	}
	return FormatUSD(cents)
}

// FormatPercent formats a percentage without trailing zeros, e.g. "12.5%".
func FormatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64) + "%"
}

// sanitizeNumber keeps only digits and dots, the way the fee editors read their inputs
func sanitizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	clean := sanitizeNumber(raw)
	if clean == "" {
		return decimal.Zero, ErrEmptyInput
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return d, nil
}

// ParseCents reads a dollar amount such as "$1,250.5" and returns cents, rounding half up.
func ParseCents(raw string) (int64, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("%w: %q", ErrNumberTooLarge, raw)
	}
	return cents.IntPart(), nil
}

// ParseWholeDollars reads a dollar amount and drops the cents.
func ParseWholeDollars(raw string) (int64, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	dollars := d.Floor()
	if dollars.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("%w: %q", ErrNumberTooLarge, raw)
	}
	return dollars.IntPart(), nil
}

// ParsePercent reads a percentage such as "12.5" or "12.5%".
func ParsePercent(raw string) (float64, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParseCount reads a non-negative whole number such as a guest count, dropping any fraction.
func ParseCount(raw string) (int, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	count := d.Floor()
	if count.GreaterThan(maxCount) {
		return 0, fmt.Errorf("%w: %q", ErrNumberTooLarge, raw)
	}
	return int(count.IntPart()), nil
}

// PercentOfCents returns percent% of cents, rounded half up to a whole cent.
func PercentOfCents(cents int64, percent float64) int64 {
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromFloat(percent)).
		Div(hundred).
		Round(0).
		IntPart()
}

// DivideRounded divides and rounds half up; a zero divisor yields 0.
func DivideRounded(numerator, divisor int64) int64 {
	if divisor == 0 {
		return 0
	}
	return decimal.NewFromInt(numerator).
		Div(decimal.NewFromInt(divisor)).
		Round(0).
		IntPart()
}
