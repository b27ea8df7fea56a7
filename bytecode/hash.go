/*
Package bytecode implements versioned bytecode hashes.

A bytecode hash is a 32 byte word whose first bytes are not part of the
digest but describe the bytecode:

	byte 0     marker: 1 = EraVM bytecode, 2 = EVM bytecode
	byte 1     zero
	bytes 2..4 big-endian length: in 32 byte words for EraVM, in bytes for EVM
	bytes 4..  tail of the SHA-256 digest of the (padded) bytecode
*/
package bytecode

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/util"
)

const (
	MarkerEraVM Marker = 1
	MarkerEVM   Marker = 2
)

// MaxLengthInWords is the max length of the EraVM bytecode.
const MaxLengthInWords = math.MaxUint16

var (
	ErrLengthNotDivisibleBy32 = errors.New("bytecode length is not divisible by 32")
	ErrLengthInWordsIsEven    = errors.New("bytecode length in 32-byte words is even")
	ErrBytecodeTooLong        = errors.New("bytecode is too long")
	ErrUnknownMarker          = errors.New("unknown bytecode hash marker")
)

type (
	Marker uint8

	// Hash is a versioned bytecode hash, see the package doc for the layout.
	Hash types.H256
)

func (m Marker) String() string {
	switch m {
	case MarkerEraVM:
		return "EraVM"
	case MarkerEVM:
		return "EVM"
	default:
		return fmt.Sprintf("Marker(%d)", uint8(m))
	}
}

/*
FromHash interprets h as a bytecode hash. Only the marker byte is checked,
the digest part can't be verified without the bytecode.
*/
func FromHash(h types.H256) (Hash, error) {
	switch m := Marker(h[0]); m {
	case MarkerEraVM, MarkerEVM:
		return Hash(h), nil
	default:
		return Hash{}, fmt.Errorf("%w: %d", ErrUnknownMarker, uint8(m))
	}
}

/*
MustFromHash is like FromHash but panics when h is not a valid bytecode hash.
Meant for hashes emitted by trusted system contracts.
*/
func MustFromHash(h types.H256) Hash {
	bh, err := FromHash(h)
	if err != nil {
		panic(fmt.Errorf("parsing bytecode hash %s: %w", h, err))
	}
	return bh
}

// ValidateEraVMBytecode checks that the bytecode is a whole odd number of
// 32 byte words and fits into the length field of the hash.
func ValidateEraVMBytecode(bytecode []byte) error {
	if len(bytecode)%util.WordSize != 0 {
		return fmt.Errorf("%w: %d", ErrLengthNotDivisibleBy32, len(bytecode))
	}
	words := len(bytecode) / util.WordSize
	if words > MaxLengthInWords {
		return fmt.Errorf("%w: %d words, max %d", ErrBytecodeTooLong, words, MaxLengthInWords)
	}
	if words%2 == 0 {
		return fmt.Errorf("%w: %d", ErrLengthInWordsIsEven, words)
	}
	return nil
}

// ForEraVMBytecode returns hash of the EraVM bytecode.
func ForEraVMBytecode(bytecode []byte) (Hash, error) {
	if err := ValidateEraVMBytecode(bytecode); err != nil {
		return Hash{}, err
	}
	return newHash(MarkerEraVM, bytecode, uint16(len(bytecode)/util.WordSize)), nil
}

/*
ForEVMBytecode returns hash of the EVM bytecode. The paddedBytecode is the
raw bytecode padded to the EraVM bytecode rules (odd number of words) and
rawLen is the length of the raw (unpadded) bytecode in bytes.
*/
func ForEVMBytecode(rawLen int, paddedBytecode []byte) (Hash, error) {
	if rawLen < 0 || rawLen > math.MaxUint16 {
		return Hash{}, fmt.Errorf("%w: %d bytes, max %d", ErrBytecodeTooLong, rawLen, math.MaxUint16)
	}
	if rawLen > len(paddedBytecode) {
		return Hash{}, fmt.Errorf("raw length %d exceeds padded bytecode length %d", rawLen, len(paddedBytecode))
	}
	if err := ValidateEraVMBytecode(paddedBytecode); err != nil {
		return Hash{}, fmt.Errorf("invalid padded EVM bytecode: %w", err)
	}
	return newHash(MarkerEVM, paddedBytecode, uint16(rawLen)), nil
}

func newHash(marker Marker, bytecode []byte, length uint16) Hash {
	h := Hash(sha256.Sum256(bytecode))
	h[0] = byte(marker)
	h[1] = 0
	binary.BigEndian.PutUint16(h[2:4], length)
	return h
}

func (h Hash) Marker() Marker {
	return Marker(h[0])
}

// LenInBytes returns the length of the bytecode encoded into the hash.
func (h Hash) LenInBytes() int {
	n := int(binary.BigEndian.Uint16(h[2:4]))
	if h.Marker() == MarkerEraVM {
		return n * util.WordSize
	}
	return n
}

func (h Hash) H256() types.H256 {
	return types.H256(h)
}

func (h Hash) String() string {
	return types.H256(h).Hex()
}
