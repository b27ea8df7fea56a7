package types

import "fmt"

type Tag = uint64
type Version uint64

type Versioned interface {
	GetVersion() Version
}

// CBOR tags of the versioned records.
const (
	_ = iota + Tag(1000)
	TransactionTag
	TransactionExecutionResultTag
)

func ErrInvalidVersion(v Versioned) error {
	return fmt.Errorf("invalid version (type %T)", v)
}

// EnsureVersion returns error when got differs from the expected version of the record v.
func EnsureVersion(v Versioned, got, expected Version) error {
	if got != expected {
		return fmt.Errorf("%w, expected %d, got %d", ErrInvalidVersion(v), expected, got)
	}
	return nil
}
