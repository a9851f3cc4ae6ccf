package memutils

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func CheckPositive[T Number](number T, name string) error {
	if number <= 0 {
		return cerrors.Wrapf(NonPositiveError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two.
// An alignment of 0 is treated as 1.
func AlignUp(value int, alignment uint) int {
	if alignment == 0 {
		return value
	}
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	if alignment == 0 {
		return value
	}
	return value & int(^(alignment - 1))
}

// RoundUpToMultiple rounds value up to the next multiple of increment. Unlike AlignUp,
// increment does not need to be a power of two.
func RoundUpToMultiple(value int, increment int) int {
	if increment <= 0 {
		return value
	}

	remainder := value % increment
	if remainder == 0 {
		return value
	}
	return value + increment - remainder
}

// DoubleUntil returns the smallest value of start * 2^k that is at least required. When that value
// would not fit in an int, or start is not positive, required is returned instead.
func DoubleUntil(start int, required int) int {
	if start <= 0 {
		return required
	}

	size := start
	for size < required {
		if size > math.MaxInt/2 {
			return required
		}
		size *= 2
	}
	return size
}
