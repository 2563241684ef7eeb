// Package safe provides overflow-checked integer arithmetic for fixed-point values.
// Overflow is an invariant breach, not a recoverable condition, so these panic.
package safe

import "fmt"

// Integer covers the int64-backed fixed-point types.
type Integer interface {
	~int64
}

// SafeAdd returns a + b. Panics on overflow.
func SafeAdd[T Integer](a, b T) T {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		panic(fmt.Sprintf("INT64_OVERFLOW: %d + %d", a, b))
	}
	return c
}

// SafeSub returns a - b. Panics on overflow.
func SafeSub[T Integer](a, b T) T {
	c := a - b
	if (b > 0 && c > a) || (b < 0 && c < a) {
		panic(fmt.Sprintf("INT64_OVERFLOW: %d - %d", a, b))
	}
	return c
}

// SafeAbs returns |a|. Panics for the minimum int64.
func SafeAbs[T Integer](a T) T {
	if a >= 0 {
		return a
	}
	if -a < 0 {
		panic(fmt.Sprintf("INT64_OVERFLOW: abs(%d)", a))
	}
	return -a
}
