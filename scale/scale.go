// Package scale implements basis-point reward scaling.
//
// A multiplier is an unsigned integer fraction of Denominator: 10000 means
// 1.0x, 5000 means 0.5x, 30000 means 3.0x. Scaling always rounds down and
// never wraps; results that do not fit in 64 bits fail with ErrOverflow.
package scale

import (
	"fmt"
	"math/bits"
)

// Denominator is the fixed basis-point denominator. A multiplier equal to
// Denominator leaves the amount unchanged.
const Denominator = 10000

// Apply returns floor(amount * multiplier / Denominator).
//
// The intermediate product is computed with 128-bit precision, so the only
// failure mode is a quotient exceeding the uint64 range.
func Apply(amount, multiplier uint64) (uint64, error) {
	hi, lo := bits.Mul64(amount, multiplier)
	if hi >= Denominator {
		return 0, fmt.Errorf("%w: %d * %d / %d", ErrOverflow, amount, multiplier, Denominator)
	}
	quo, _ := bits.Div64(hi, lo, Denominator)
	return quo, nil
}
