/*
Package cbor provides CBOR encoding/decoding functions.

It's a thin wrapper for github.com/fxamacker/cbor/v2, the reason for
having it is to make sure every record of the execution result model
is encoded with the same (deterministic) options.
*/
package cbor

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

type Tag = uint64

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	// building the modes from options provided by the CBOR library fails
	// only when the options are invalid, ie programming error
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(fmt.Errorf("initializing CBOR encoder mode: %w", err))
	}
	if decMode, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(fmt.Errorf("initializing CBOR decoder mode: %w", err))
	}
}

/*
Marshal encodes v using Core Deterministic Encoding.
See <https://www.rfc-editor.org/rfc/rfc8949.html#name-deterministically-encoded-c>.
*/
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func MarshalTaggedValue(tag Tag, v any) ([]byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	return Marshal(cbor.RawTag{
		Number:  tag,
		Content: data,
	})
}

func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func UnmarshalTaggedValue(tag Tag, data []byte, v any) error {
	var raw cbor.RawTag
	if err := Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Number != tag {
		return fmt.Errorf("unexpected tag: %d, expected: %d", raw.Number, tag)
	}

	if err := Unmarshal(raw.Content, v); err != nil {
		return err
	}
	return nil
}

// NewEncoder returns encoder which writes deterministic CBOR into w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}
