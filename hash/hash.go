/*
Package hash calculates hashes of the records over their deterministic CBOR
encoding (see the cbor package).
*/
package hash

import (
	"fmt"
	"hash"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fxamacker/cbor/v2"

	abcbor "github.com/zkvm-go/vm-interface/cbor"
)

// Hash streams the CBOR encoding of the values written to it into the
// underlying hash function.
type Hash struct {
	h   hash.Hash
	enc *cbor.Encoder
	err error
}

func New(h hash.Hash) *Hash {
	return &Hash{h: h, enc: abcbor.NewEncoder(h)}
}

// NewKeccak256 returns hash calculator backed by the legacy Keccak-256
// (the one used by the EVM, not the standardized SHA3-256).
func NewKeccak256() *Hash {
	return New(crypto.NewKeccakState())
}

// Write encodes v as CBOR and adds it to the hash. After the first failure
// to encode the writes are ignored, the error is returned by Sum.
func (h *Hash) Write(v any) {
	if h.err != nil {
		return
	}
	h.err = h.enc.Encode(v)
}

func (h *Hash) Sum() ([]byte, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.h.Sum(nil), nil
}

/*
Keccak256 returns the Keccak-256 hash of the CBOR encoding of the values.
Values must be encodable, failure to encode is a programming error and
causes panic.
*/
func Keccak256(values ...any) common.Hash {
	h := NewKeccak256()
	for _, v := range values {
		h.Write(v)
	}
	res, err := h.Sum()
	if err != nil {
		panic(fmt.Errorf("failed to calculate hash: %w", err))
	}
	return common.BytesToHash(res)
}
