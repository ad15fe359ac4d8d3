// Package fix implements a signed Q16.16 fixed-point scalar.
//
// Every value is backed by an int32 holding 16 integer and 16 fractional
// bits, which keeps arithmetic bit-identical across platforms. Operations
// round to nearest on the fractional boundary and saturate at Max/Min
// instead of wrapping; saturation is silent and is the documented overflow
// policy of the whole engine.
package fix

import (
	"fmt"
	"math"
)

// Q16 is a signed fixed-point number with 16 fractional bits.
type Q16 int32

const (
	// Zero is the fixed-point zero value.
	Zero Q16 = 0
	// One is the fixed-point representation of 1.
	One Q16 = 1 << 16
	// Half is the fixed-point representation of 0.5.
	Half Q16 = 1 << 15
	// Two is the fixed-point representation of 2.
	Two Q16 = 2 << 16
	// Max is the largest representable value, roughly 32767.99998.
	Max Q16 = math.MaxInt32
	// Min is the smallest representable value, -32768.
	Min Q16 = math.MinInt32
)

func sat(v int64) Q16 {
	if v > math.MaxInt32 {
		return Max
	}
	if v < math.MinInt32 {
		return Min
	}
	return Q16(v)
}

// FromInt converts an integer to fixed point, saturating if it is
// outside the representable range.
func FromInt(i int) Q16 {
	return sat(int64(i) << 16)
}

// FromFloat64 converts a float to fixed point, rounding half away from
// zero and saturating out-of-range values. The conversion is lossy and
// meant for the configuration and test boundary only.
func FromFloat64(f float64) Q16 {
	v := f * 65536.0
	if v >= 0 {
		return sat(int64(math.Floor(v + 0.5)))
	}
	return sat(int64(math.Ceil(v - 0.5)))
}

// Float64 converts a fixed-point value to float64. Every Q16 value is
// exactly representable as a float64.
func (a Q16) Float64() float64 {
	return float64(a) / 65536.0
}

// Add returns a+b, saturating on overflow.
func (a Q16) Add(b Q16) Q16 {
	return sat(int64(a) + int64(b))
}

// Sub returns a-b, saturating on overflow.
func (a Q16) Sub(b Q16) Q16 {
	return sat(int64(a) - int64(b))
}

// Mul returns a*b rounded to the nearest representable value, ties
// toward positive infinity, saturating on overflow.
func (a Q16) Mul(b Q16) Q16 {
	p := int64(a)*int64(b) + (1 << 15)
	return sat(p >> 16)
}

// Div returns a/b rounded to the nearest representable value, ties away
// from zero, saturating on overflow. A zero divisor saturates by the
// sign of the dividend; there is no error path, consistent with the
// silent-saturate overflow policy.
func (a Q16) Div(b Q16) Q16 {
	if b == 0 {
		if a >= 0 {
			return Max
		}
		return Min
	}
	q := (int64(a) << 17) / int64(b)
	if q >= 0 {
		q = (q + 1) >> 1
	} else {
		q = -((-q + 1) >> 1)
	}
	return sat(q)
}

// Neg returns -a. The negation of Min saturates to Max.
func (a Q16) Neg() Q16 {
	return sat(-int64(a))
}

// Abs returns the absolute value of a, saturating for Min.
func (a Q16) Abs() Q16 {
	if a < 0 {
		return a.Neg()
	}
	return a
}

// Sqrt returns the square root of a rounded to nearest. Non-positive
// inputs return Zero; callers that must distinguish them (e.g. a
// covariance factorization) check the sign first.
func (a Q16) Sqrt() Q16 {
	if a <= 0 {
		return Zero
	}

	// bitwise integer square root of a << 16
	v := uint64(a) << 16
	var res uint64
	bit := uint64(1) << 62
	for bit > v {
		bit >>= 2
	}
	for bit != 0 {
		if v >= res+bit {
			v -= res + bit
			res = res>>1 + bit
		} else {
			res >>= 1
		}
		bit >>= 2
	}
	if v > res {
		res++
	}

	return sat(int64(res))
}

// String implements the Stringer interface.
func (a Q16) String() string {
	return fmt.Sprintf("%g", a.Float64())
}
