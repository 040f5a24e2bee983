package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a monetary amount in integer cents. All currency arithmetic runs
// on this type; the wire representation is a decimal string with exactly two
// fraction digits, e.g. "20.00".
type Cents int64

// ParseCents parses a decimal string such as "10", "10.5" or "10.50" into
// cents. More than two fraction digits are rejected.
func ParseCents(s string) (Cents, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if units > math.MaxInt64/100 {
		return 0, fmt.Errorf("amount %q out of range", s)
	}

	cents := units * 100
	switch len(frac) {
	case 0:
	case 1:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents += d * 10
	case 2:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents += d
	default:
		return 0, fmt.Errorf("amount %q has more than two fraction digits", s)
	}

	if negative {
		cents = -cents
	}
	return Cents(cents), nil
}

// Mul returns the amount multiplied by a whole quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// String formats the amount with exactly two fraction digits.
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits the amount as a quoted decimal string.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON accepts a quoted decimal string; a bare JSON number is
// tolerated and parsed as decimal text, never through floating point.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
