package utils

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrEmptyNumber = errors.New("empty number")

// ParseDecimal parses a user-typed amount, accepting a comma as the decimal
// separator.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return decimal.Zero, ErrEmptyNumber
	}
	return decimal.NewFromString(s)
}
