package vm

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/holiman/uint256"

	"github.com/zkvm-go/vm-interface/util"
)

const (
	// RevertGeneral is the `Error(string)` revert.
	RevertGeneral RevertReasonKind = iota
	// RevertInnerTxError is a failure of the bootloader-based transaction.
	RevertInnerTxError
	RevertVMError
	// RevertUnknown is revert data the model doesn't know how to interpret.
	RevertUnknown
)

var (
	ErrIncorrectRevertLength       = errors.New("incorrect revert data length")
	ErrIncorrectRevertDataOffset   = errors.New("incorrect revert data offset")
	ErrIncorrectRevertStringLength = errors.New("incorrect revert string length")
)

// generalErrorSelector is the selector of the `Error(string)` function.
var generalErrorSelector = abi.NewMethod("Error", "Error", abi.Function, "", false, false, abi.Arguments{arg("", "string")}, nil).ID

type (
	RevertReasonKind uint8

	/*
	RevertReason is the reason the transaction was reverted by the contract.
	Msg is only set for RevertGeneral, FunctionSelector only for RevertUnknown.
	Data is the raw revert data for RevertGeneral and RevertUnknown.
	*/
	RevertReason struct {
		_                struct{}         `cbor:",toarray"`
		Kind             RevertReasonKind `json:"kind"`
		Msg              string           `json:"msg,omitempty"`
		FunctionSelector []byte           `json:"functionSelector,omitempty"`
		Data             []byte           `json:"data,omitempty"`
	}
)

/*
NewGeneralRevertReason returns RevertGeneral reason with the message msg,
the Data is the ABI encoding of `Error(msg)` call.
*/
func NewGeneralRevertReason(msg string) RevertReason {
	data, err := abi.Arguments{arg("", "string")}.Pack(msg)
	if err != nil {
		panic(fmt.Errorf("encoding revert message: %w", err))
	}
	return RevertReason{
		Kind: RevertGeneral,
		Msg:  msg,
		Data: append(bytes.Clone(generalErrorSelector), data...),
	}
}

/*
ParseRevertReason interprets the revert data returned by the contract.

Data of the `Error(string)` call is decoded into RevertGeneral reason, any
other function selector (or no data at all) results in RevertUnknown.
Data which is too short to contain a complete selector is an error.
*/
func ParseRevertReason(data []byte) (RevertReason, error) {
	if len(data) < 4 {
		// method which reverted with no data has no selector either, we
		// only accept data with no or complete selector
		if len(data) != 0 {
			return RevertReason{}, fmt.Errorf("%w: %d bytes", ErrIncorrectRevertLength, len(data))
		}
		return RevertReason{Kind: RevertUnknown, FunctionSelector: []byte{}, Data: []byte{}}, nil
	}

	selector := data[:4]
	if !bytes.Equal(selector, generalErrorSelector) {
		return RevertReason{Kind: RevertUnknown, FunctionSelector: bytes.Clone(selector), Data: bytes.Clone(data)}, nil
	}
	msg, err := parseGeneralError(data[4:])
	if err != nil {
		return RevertReason{}, err
	}
	return RevertReason{Kind: RevertGeneral, Msg: msg, Data: bytes.Clone(data)}, nil
}

func parseGeneralError(data []byte) (string, error) {
	if len(data) < util.WordSize {
		return "", fmt.Errorf("%w: %d bytes", ErrIncorrectRevertStringLength, len(data))
	}
	// offset of the string can't be less than the size of the offset word
	// itself and can't point past the end of data
	offset, ok := wordToInt(data[:util.WordSize])
	if !ok || offset < util.WordSize || offset > len(data) {
		return "", fmt.Errorf("%w: %x", ErrIncorrectRevertDataOffset, data[:util.WordSize])
	}
	data = data[offset:]
	if len(data) < util.WordSize {
		return "", fmt.Errorf("%w: %d bytes after offset", ErrIncorrectRevertStringLength, len(data))
	}
	length, ok := wordToInt(data[:util.WordSize])
	if !ok || length > len(data)-util.WordSize {
		return "", fmt.Errorf("%w: %x", ErrIncorrectRevertStringLength, data[:util.WordSize])
	}
	return string(data[util.WordSize : util.WordSize+length]), nil
}

func wordToInt(word []byte) (int, bool) {
	v := new(uint256.Int).SetBytes(word)
	if !v.IsUint64() || v.Uint64() > uint64(^uint(0)>>1) {
		return 0, false
	}
	return int(v.Uint64()), true
}

func (r RevertReason) String() string {
	switch r.Kind {
	case RevertGeneral:
		return r.Msg
	case RevertInnerTxError:
		return "Bootloader-based tx failed"
	case RevertVMError:
		return "VM Error"
	case RevertUnknown:
		return fmt.Sprintf("Error function_selector = 0x%s, data = 0x%s", hex.EncodeToString(r.FunctionSelector), hex.EncodeToString(r.Data))
	default:
		return fmt.Sprintf("RevertReasonKind(%d)", r.Kind)
	}
}

// UserFriendlyString is like String but suppresses the verbose description of
// the unknown revert reason (returns empty string for it).
func (r RevertReason) UserFriendlyString() string {
	if r.Kind == RevertUnknown {
		return ""
	}
	return r.String()
}

// EncodedData returns the raw revert data (if known).
func (r RevertReason) EncodedData() []byte {
	switch r.Kind {
	case RevertGeneral, RevertUnknown:
		return r.Data
	default:
		return nil
	}
}
