package util

import (
	"math"
)

// WordSize is the size of the VM word in bytes.
const WordSize = 32

// SafeAdd returns a+b and checks for overflow
func SafeAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// SafeSub returns a-b and checks for underflow
func SafeSub(a, b uint64) (uint64, bool) {
	if a < b {
		return 0, false
	}
	return a - b, true
}

// RoundUpToWord rounds n up to the closest multiple of WordSize.
func RoundUpToWord(n int) int {
	return (n + WordSize - 1) / WordSize * WordSize
}
