/*
Package vmtest contains helpers for building the system contract events and
other VM outputs in tests.
*/
package vmtest

import (
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/zkvm-go/vm-interface/bytecode"
	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/vm"
)

/*
Random fills the buf with random bytes.
Meant to be used as argument for the generator functions.
*/
func Random(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

func RandomBytes(t testing.TB, n int) []byte {
	buf := make([]byte, n)
	if err := Random(buf); err != nil {
		t.Fatal("failed to generate random bytes:", err)
	}
	return buf
}

func RandomAddress(t testing.TB) types.Address {
	return types.Address(RandomBytes(t, types.AddressLength))
}

func RandomH256(t testing.TB) types.H256 {
	return types.H256(RandomBytes(t, types.HashLength))
}

/*
EraVMBytecodeHash returns hash of random EraVM bytecode of given length in
32 byte words (must be odd).
*/
func EraVMBytecodeHash(t testing.TB, words int) types.H256 {
	h, err := bytecode.ForEraVMBytecode(RandomBytes(t, words*32))
	if err != nil {
		t.Fatal("failed to hash bytecode:", err)
	}
	return h.H256()
}

// BoolTopic returns the ABI encoding of the indexed bool argument.
func BoolTopic(v bool) types.H256 {
	if v {
		return common.BigToHash(common.Big1)
	}
	return types.H256{}
}

func AddressTopic(addr types.Address) types.H256 {
	return common.BytesToHash(addr.Bytes())
}

// L1MessageSentEvent returns the event emitted by the L1 messenger when
// sender sends message msg to L1.
func L1MessageSentEvent(t testing.TB, sender types.Address, msg []byte) vm.Event {
	return vm.Event{
		Address: types.L1MessengerAddress,
		IndexedTopics: []types.H256{
			vm.L1MessageEventSignature,
			AddressTopic(sender),
			crypto.Keccak256Hash(msg),
		},
		Value: pack(t, "bytes", msg),
	}
}

// MarkedAsKnownEvent returns the event emitted by the known codes storage when
// the bytecode with hash h is marked as known.
func MarkedAsKnownEvent(h types.H256, publish bool) vm.Event {
	return vm.Event{
		Address: types.KnownCodesStorageAddress,
		IndexedTopics: []types.H256{
			vm.PublishedBytecodeSignature,
			h,
			BoolTopic(publish),
		},
		Value: []byte{},
	}
}

// BytecodePublicationRequestedEvent returns the event emitted by the L1
// messenger when it's asked to publish the bytecode with hash h.
func BytecodePublicationRequestedEvent(t testing.TB, h types.H256) vm.Event {
	return vm.Event{
		Address:       types.L1MessengerAddress,
		IndexedTopics: []types.H256{vm.L1MessengerBytecodePublicationEventSignature},
		Value:         pack(t, "bytes32", [32]byte(h)),
	}
}

func ContractDeployedEvent(deployer types.Address, h types.H256, contract types.Address) vm.Event {
	return vm.Event{
		Address: types.ContractDeployerAddress,
		IndexedTopics: []types.H256{
			vm.DeployEventSignature,
			AddressTopic(deployer),
			h,
			AddressTopic(contract),
		},
		Value: []byte{},
	}
}

// pack returns ABI encoding of the single value v of the type typ.
func pack(t testing.TB, typ string, v any) []byte {
	abiType, err := abi.NewType(typ, "", nil)
	if err != nil {
		t.Fatalf("creating ABI type %q: %v", typ, err)
	}
	data, err := abi.Arguments{{Type: abiType}}.Pack(v)
	if err != nil {
		t.Fatalf("packing %s value: %v", typ, err)
	}
	return data
}
