package vm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"github.com/zkvm-go/vm-interface/cbor"
	"github.com/zkvm-go/vm-interface/types"
)

const (
	FarCallNormal FarCallOpcode = iota
	FarCallDelegate
	FarCallMimic
)

const (
	// CallKindCall is a far call, the opcode of the call is in CallType.FarCall.
	CallKindCall CallKind = iota
	CallKindCreate
	CallKindNearCall
)

var (
	ErrInvalidFarCallOpcode = errors.New("invalid far call opcode")
	ErrInvalidCallKind      = errors.New("invalid call kind")
)

type (
	// FarCallOpcode is the flavour of the call to another contract.
	FarCallOpcode uint8

	CallKind uint8

	/*
	CallType is the type of the call in the VM trace. The zero value is a
	normal far call. FarCall is only meaningful for the CallKindCall kind and
	must be FarCallNormal for the others.
	*/
	CallType struct {
		_       struct{}      `cbor:",toarray"`
		Kind    CallKind      `json:"kind"`
		FarCall FarCallOpcode `json:"farCall"`
	}

	/*
	Call is a node of the VM call trace.

	NB! Call equality (the Equal method) ignores ParentGas, Gas and GasUsed.
	Gas accounting may differ between replays of the same transaction while
	the logical trace stays the same. Use reflect.DeepEqual (or compare the
	gas fields separately) when the gas must match too.
	*/
	Call struct {
		_            struct{}      `cbor:",toarray"`
		Type         CallType      `json:"type"`
		From         types.Address `json:"from"`
		To           types.Address `json:"to"`
		ParentGas    uint64        `json:"parentGas"`
		Gas          uint64        `json:"gas"`
		GasUsed      uint64        `json:"gasUsed"`
		Value        types.U256    `json:"value"`
		Input        hexutil.Bytes `json:"input"`
		Output       hexutil.Bytes `json:"output"`
		Error        *string       `json:"error,omitempty"`        // error message provided by the VM
		RevertReason *string       `json:"revertReason,omitempty"` // revert reason of the call
		Calls        []Call        `json:"calls"`
	}
)

// FarCallOpcodeFromByte returns the opcode encoded as b or error when b is
// not a known opcode.
func FarCallOpcodeFromByte(b uint8) (FarCallOpcode, error) {
	switch op := FarCallOpcode(b); op {
	case FarCallNormal, FarCallDelegate, FarCallMimic:
		return op, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidFarCallOpcode, b)
	}
}

func (op FarCallOpcode) String() string {
	switch op {
	case FarCallNormal:
		return "Normal"
	case FarCallDelegate:
		return "Delegate"
	case FarCallMimic:
		return "Mimic"
	default:
		return fmt.Sprintf("FarCallOpcode(%d)", uint8(op))
	}
}

func (op *FarCallOpcode) UnmarshalCBOR(data []byte) error {
	var b uint8
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decoding far call opcode: %w", err)
	}
	v, err := FarCallOpcodeFromByte(b)
	if err != nil {
		return err
	}
	*op = v
	return nil
}

func (op *FarCallOpcode) UnmarshalJSON(data []byte) error {
	var b uint8
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decoding far call opcode: %w", err)
	}
	v, err := FarCallOpcodeFromByte(b)
	if err != nil {
		return err
	}
	*op = v
	return nil
}

func (k CallKind) String() string {
	switch k {
	case CallKindCall:
		return "Call"
	case CallKindCreate:
		return "Create"
	case CallKindNearCall:
		return "NearCall"
	default:
		return fmt.Sprintf("CallKind(%d)", uint8(k))
	}
}

func (k *CallKind) UnmarshalCBOR(data []byte) error {
	var b uint8
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("decoding call kind: %w", err)
	}
	if CallKind(b) > CallKindNearCall {
		return fmt.Errorf("%w: %d", ErrInvalidCallKind, b)
	}
	*k = CallKind(b)
	return nil
}

// NewFarCallType returns CallType of the far call with given opcode.
func NewFarCallType(op FarCallOpcode) CallType {
	return CallType{Kind: CallKindCall, FarCall: op}
}

func (ct CallType) String() string {
	if ct.Kind == CallKindCall {
		return fmt.Sprintf("Call(%s)", ct.FarCall)
	}
	return ct.Kind.String()
}

func (ct CallType) IsValid() error {
	switch ct.Kind {
	case CallKindCall:
		_, err := FarCallOpcodeFromByte(uint8(ct.FarCall))
		return err
	case CallKindCreate, CallKindNearCall:
		if ct.FarCall != FarCallNormal {
			return fmt.Errorf("far call opcode %s set for %s call", ct.FarCall, ct.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidCallKind, ct.Kind)
	}
}

func (ct *CallType) UnmarshalCBOR(data []byte) error {
	type alias CallType
	if err := cbor.Unmarshal(data, (*alias)(ct)); err != nil {
		return err
	}
	return ct.IsValid()
}

/*
MarshalJSON encodes far calls as `{"Call":<opcode>}` and other kinds as
string (`"Create"` or `"NearCall"`).
*/
func (ct CallType) MarshalJSON() ([]byte, error) {
	if err := ct.IsValid(); err != nil {
		return nil, err
	}
	if ct.Kind == CallKindCall {
		return json.Marshal(map[string]uint8{"Call": uint8(ct.FarCall)})
	}
	return json.Marshal(ct.Kind.String())
}

func (ct *CallType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "Create":
			*ct = CallType{Kind: CallKindCreate}
		case "NearCall":
			*ct = CallType{Kind: CallKindNearCall}
		default:
			return fmt.Errorf("%w: %q", ErrInvalidCallKind, s)
		}
		return nil
	}

	var v struct {
		Call *FarCallOpcode `json:"Call"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding call type: %w", err)
	}
	if v.Call == nil {
		return fmt.Errorf("%w: %s", ErrInvalidCallKind, data)
	}
	*ct = NewFarCallType(*v.Call)
	return nil
}

/*
NewHighLevelCall returns synthetic top level call of the transaction, made
by the bootloader on behalf of the transaction. The entry point call isn't
recorded by the VM so the trace of the transaction is presented as the calls
wrapped into this one.
*/
func NewHighLevelCall(gas, gasUsed uint64, value types.U256, input, output []byte, revertReason *string, calls []Call) Call {
	return Call{
		Type:         NewFarCallType(FarCallNormal),
		From:         types.Address{},
		To:           types.BootloaderAddress,
		ParentGas:    gas,
		Gas:          gas,
		GasUsed:      gasUsed,
		Value:        value,
		Input:        input,
		Output:       output,
		RevertReason: revertReason,
		Calls:        calls,
	}
}

/*
Equal returns true when the calls c and other are logically the same. The gas
fields (ParentGas, Gas and GasUsed) are not compared. Subcalls are compared
recursively and must be in the same order. Nil and empty byte slices (or
subcall lists) are considered equal.
*/
func (c Call) Equal(other Call) bool {
	return equalStringPtr(c.RevertReason, other.RevertReason) &&
		bytes.Equal(c.Input, other.Input) &&
		c.From == other.From &&
		c.To == other.To &&
		c.Type == other.Type &&
		c.Value == other.Value &&
		equalStringPtr(c.Error, other.Error) &&
		bytes.Equal(c.Output, other.Output) &&
		slices.EqualFunc(c.Calls, other.Calls, Call.Equal)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

/*
Walk calls fn for the call c and all its subcalls, depth first, parents
before children. Depth of c is zero. When fn returns false the subcalls of
the call are not visited.
*/
func (c *Call) Walk(fn func(call *Call, depth int) bool) {
	c.walk(fn, 0)
}

func (c *Call) walk(fn func(call *Call, depth int) bool, depth int) {
	if !fn(c, depth) {
		return
	}
	for i := range c.Calls {
		c.Calls[i].walk(fn, depth+1)
	}
}

// Depth returns the number of levels in the call tree, call without subcalls
// has depth 1.
func (c *Call) Depth() int {
	maxDepth := 0
	c.Walk(func(_ *Call, depth int) bool {
		maxDepth = max(maxDepth, depth)
		return true
	})
	return maxDepth + 1
}

func (c *Call) MarshalZerologObject(e *zerolog.Event) {
	e.Stringer("type", c.Type).
		Str("from", c.From.Hex()).
		Str("to", c.To.Hex()).
		Uint64("gas", c.Gas).
		Uint64("gasUsed", c.GasUsed).
		Stringer("value", c.Value).
		Int("calls", len(c.Calls))
	if c.Error != nil {
		e.Str("error", *c.Error)
	}
	if c.RevertReason != nil {
		e.Str("revertReason", *c.RevertReason)
	}
}
