// Package money implements integer currency arithmetic in the smallest currency unit.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/mmynk/clubsettle/internal/apperr"
)

// maxDividend keeps 2*total + n*unit and 2*n*unit within int64.
const maxDividend = math.MaxInt64 / 4

// Money is an amount in the smallest currency unit (won for KRW).
type Money int64

// RoundToUnit rounds amount to the nearest multiple of unit. Ties round up.
func RoundToUnit(amount, unit Money) (Money, error) {
	return DivideRounded(amount, 1, unit)
}

// DivideRounded returns total/n rounded to the nearest multiple of unit, ties up.
// The quotient is never materialised as a fraction, so no precision is lost.
// The result times n need not equal total; callers keep the rounding delta.
func DivideRounded(total Money, n int, unit Money) (Money, error) {
	if n <= 0 {
		return 0, apperr.InvalidArgument("cannot split among %d participants", n)
	}
	if unit <= 0 {
		return 0, apperr.InvalidArgument("rounding unit must be positive, got %d", unit)
	}
	if total > maxDividend || total < -maxDividend || int64(unit) > maxDividend/int64(n) {
		return 0, apperr.InvalidArgument("amount %d out of range", total)
	}

	// Nearest multiple q of unit to total/n: q = floor((2*total + n*unit) / (2*n*unit)).
	denom := int64(n) * int64(unit)
	q := floorDiv(2*int64(total)+denom, 2*denom)
	return Money(q * int64(unit)), nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// String formats the amount with comma thousands separators, e.g. "35,000".
func (m Money) String() string {
	s := strconv.FormatInt(int64(m), 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Parse reads a digit string that may contain comma separators ("35,000").
func Parse(s string) (Money, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return Money(v), true
}
