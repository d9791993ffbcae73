package invariant

import (
	"fmt"
	"math/big"
	"strings"
)

// Fraction is an exact rational number Num/Den in lowest terms with Den > 0.
// A zero denominator is represented by Undefined.
type Fraction struct {
	Num, Den  int64
	Undefined bool
}

// NewFraction returns num/den reduced to lowest terms. A zero den yields an
// undefined fraction.
func NewFraction(num, den int64) Fraction {
	if den == 0 {
		return Fraction{Undefined: true}
	}
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs(num), den); g > 1 {
		num, den = num/g, den/g
	}
	return Fraction{Num: num, Den: den}
}

// String formats the fraction as "num/den", "num" for integers, or
// "undefined".
func (f Fraction) String() string {
	switch {
	case f.Undefined:
		return "undefined"
	case f.Den == 1:
		return fmt.Sprintf("%d", f.Num)
	default:
		return fmt.Sprintf("%d/%d", f.Num, f.Den)
	}
}

// MaxDecimalPlaces bounds the precision accepted by [Fraction.Decimal].
const MaxDecimalPlaces = 64

// Decimal returns f rounded half away from zero to prec digits after the
// decimal point. prec is clamped to [0, MaxDecimalPlaces]. The second result
// is false if f is undefined.
func (f Fraction) Decimal(prec int) (string, bool) {
	if f.Undefined {
		return "", false
	}
	prec = min(max(prec, 0), MaxDecimalPlaces)
	s := big.NewRat(f.Num, f.Den).FloatString(prec)
	if rest, neg := strings.CutPrefix(s, "-"); neg && strings.Trim(rest, "0.") == "" {
		s = rest
	}
	return s, true
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
