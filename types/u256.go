package types

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/zkvm-go/vm-interface/cbor"
)

/*
U256 is 256 bit unsigned integer with value semantics: it is comparable with
"==" and encodes the same way whether it's addressable or not.

JSON encoding is a quoted decimal string (hex is accepted when decoding),
CBOR encoding is the minimal big-endian byte string.
*/
type U256 uint256.Int

func NewU256(v uint64) U256 {
	return U256(*uint256.NewInt(v))
}

// Int returns copy of v as uint256.Int for arithmetic.
func (v U256) Int() *uint256.Int {
	i := uint256.Int(v)
	return &i
}

func (v U256) IsZero() bool {
	return v.Int().IsZero()
}

func (v U256) IsUint64() bool {
	return v.Int().IsUint64()
}

func (v U256) Uint64() uint64 {
	return v.Int().Uint64()
}

func (v U256) String() string {
	return v.Int().Dec()
}

func (v U256) MarshalJSON() ([]byte, error) {
	return v.Int().MarshalJSON()
}

func (v *U256) UnmarshalJSON(data []byte) error {
	return (*uint256.Int)(v).UnmarshalJSON(data)
}

func (v U256) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(v.Int().Bytes())
}

func (v *U256) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decoding U256: %w", err)
	}
	if len(b) > 32 {
		return fmt.Errorf("U256 must be at most 32 bytes, got %d", len(b))
	}
	(*uint256.Int)(v).SetBytes(b)
	return nil
}
