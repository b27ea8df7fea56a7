package vm

import (
	"fmt"
	"iter"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/util"
)

type (
	// EventLocation is the position of the event: batch number and the
	// index of the event within the batch.
	EventLocation struct {
		_     struct{}            `cbor:",toarray"`
		Batch types.L1BatchNumber `json:"batch"`
		Index uint32              `json:"index"`
	}

	// Event is an event (log entry) generated by the VM.
	Event struct {
		_        struct{}      `cbor:",toarray"`
		Location EventLocation `json:"location"`
		Address  types.Address `json:"address"`
		// IndexedTopics[0] is the event signature (unless the event is anonymous).
		IndexedTopics []types.H256 `json:"indexedTopics"`
		Value         []byte       `json:"value"`
	}
)

// ABI descriptions of the system contract events the extraction functions
// understand. Signatures of the events are derived from these once, on init.
var (
	contractDeployedEvent = newEvent("ContractDeployed",
		indexedArg("deployerAddress", "address"),
		indexedArg("bytecodeHash", "bytes32"),
		indexedArg("contractAddress", "address"),
	)
	bytecodeL1PublicationRequestedEvent = newEvent("BytecodeL1PublicationRequested",
		arg("_bytecodeHash", "bytes32"),
	)
	markedAsKnownEvent = newEvent("MarkedAsKnown",
		indexedArg("bytecodeHash", "bytes32"),
		indexedArg("sendBytecodeToL1", "bool"),
	)
	l1MessageSentEvent = newEvent("L1MessageSent",
		indexedArg("_sender", "address"),
		indexedArg("_hash", "bytes32"),
		arg("_message", "bytes"),
	)
)

// Long signatures (topic 0) of the system contract events.
var (
	// DeployEventSignature of the ContractDeployer's `ContractDeployed` event.
	DeployEventSignature = contractDeployedEvent.ID
	// L1MessengerBytecodePublicationEventSignature of the L1Messenger's `BytecodeL1PublicationRequested` event.
	L1MessengerBytecodePublicationEventSignature = bytecodeL1PublicationRequestedEvent.ID
	// PublishedBytecodeSignature of the KnownCodesStorage's `MarkedAsKnown` event.
	PublishedBytecodeSignature = markedAsKnownEvent.ID
	// L1MessageEventSignature of the L1Messenger's `L1MessageSent` event.
	L1MessageEventSignature = l1MessageSentEvent.ID
)

func newEvent(name string, args ...abi.Argument) abi.Event {
	return abi.NewEvent(name, name, false, args)
}

func indexedArg(name, typ string) abi.Argument {
	a := arg(name, typ)
	a.Indexed = true
	return a
}

func arg(name, typ string) abi.Argument {
	t, err := abi.NewType(typ, "", nil)
	if err != nil {
		panic(fmt.Errorf("creating ABI type %q: %w", typ, err))
	}
	return abi.Argument{Name: name, Type: t}
}

/*
isSystemEvent returns true when the event was emitted by the system contract
at address, has exactly topicCount topics and the first one is signature.
This is the only admission check done before decoding the payload, system
contracts are trusted to emit well-formed events.
*/
func (e *Event) isSystemEvent(address types.Address, signature types.H256, topicCount int) bool {
	return e.Address == address &&
		len(e.IndexedTopics) == topicCount &&
		e.IndexedTopics[0] == signature
}

func (e *Event) isL1MessageSent() bool {
	return e.isSystemEvent(types.L1MessengerAddress, L1MessageEventSignature, 3)
}

func (e *Event) isBytecodeMarkedAsKnown() bool {
	return e.isSystemEvent(types.KnownCodesStorageAddress, PublishedBytecodeSignature, 3)
}

func (e *Event) isBytecodePublicationRequest() bool {
	return e.isSystemEvent(types.L1MessengerAddress, L1MessengerBytecodePublicationEventSignature, 1)
}

// decodeSystemEventData decodes the non-indexed arguments of a trusted system
// event, failure to decode means a broken system contract and panics.
func (e *Event) decodeSystemEventData(event *abi.Event) []any {
	values, err := event.Inputs.NonIndexed().Unpack(e.Value)
	if err != nil {
		panic(fmt.Errorf("failed to decode %s event data: %w", event.Name, err))
	}
	return values
}

/*
ExtractLongL2ToL1Messages returns the messages of all the `L1MessageSent`
events emitted by the L1 messenger contract, in the order of events.
*/
func ExtractLongL2ToL1Messages(events []Event) [][]byte {
	return util.FilterMap(events,
		func(e Event) bool { return e.isL1MessageSent() },
		func(e Event) []byte {
			return e.decodeSystemEventData(&l1MessageSentEvent)[0].([]byte)
		})
}

/*
ExtractPublishedBytecodes returns hashes of the bytecodes which were marked
as known by the system contracts and must be published on the outer layer
(the `sendBytecodeToL1` topic is set). Hashes are returned in the order of
events, duplicates are not removed.
*/
func ExtractPublishedBytecodes(events []Event) []types.H256 {
	return util.FilterMap(events,
		func(e Event) bool {
			return e.isBytecodeMarkedAsKnown() && !types.IsZero(e.IndexedTopics[2])
		},
		func(e Event) types.H256 { return e.IndexedTopics[1] })
}

/*
ExtractBytecodesMarkedAsKnown returns iterator over the hashes of all the
bytecodes marked as known, whether or not they must be published. The
events are filtered lazily, on every iteration.
*/
func ExtractBytecodesMarkedAsKnown(events []Event) iter.Seq[types.H256] {
	return func(yield func(types.H256) bool) {
		for i := range events {
			if events[i].isBytecodeMarkedAsKnown() {
				if !yield(events[i].IndexedTopics[1]) {
					return
				}
			}
		}
	}
}

// ExtractBytecodePublicationRequests returns the bytecode hashes the L1
// messenger was asked to publish, in the order of events.
func ExtractBytecodePublicationRequests(events []Event) []types.H256 {
	return util.FilterMap(events,
		func(e Event) bool { return e.isBytecodePublicationRequest() },
		func(e Event) types.H256 {
			return types.H256(e.decodeSystemEventData(&bytecodeL1PublicationRequestedEvent)[0].([32]byte))
		})
}

// ContainsContractDeployment returns true if any of the events is a `ContractDeployed` event.
func ContainsContractDeployment(events []Event) bool {
	for i := range events {
		// first indexed topic is expected to be the event signature
		if len(events[i].IndexedTopics) > 0 && events[i].IndexedTopics[0] == DeployEventSignature {
			return true
		}
	}
	return false
}
