package vm

import "fmt"

/*
Kinds of the VM halts. The ones failing in the system contract calls
(validation, paymaster, fee charging etc) and HaltUnknown carry RevertReason,
HaltUnexpectedVMBehavior, L2 block failures and HaltTracerCustom carry a free
form message.
*/
const (
	HaltValidationFailed HaltKind = iota
	HaltPaymasterValidationFailed
	HaltPrePaymasterPreparationFailed
	HaltPayForTxFailed
	HaltFailedToMarkFactoryDependencies
	HaltFailedToChargeFee
	HaltFromIsNotAnAccount
	HaltInnerTxError
	HaltUnknown
	HaltUnexpectedVMBehavior
	HaltBootloaderOutOfGas
	HaltValidationOutOfGas
	HaltTooBigGasLimit
	HaltNotEnoughGasProvided
	HaltMissingInvocationLimitReached
	HaltFailedToSetL2Block
	HaltFailedToAppendTransactionToL2Block
	HaltVMPanic
	HaltTracerCustom
	HaltFailedToPublishCompressedBytecodes
	HaltFailedBlockTimestampAssertion
)

type (
	HaltKind uint8

	// Halt describes why the VM stopped executing the transaction for a
	// reason other than a revert by the contract.
	Halt struct {
		_       struct{}      `cbor:",toarray"`
		Kind    HaltKind      `json:"kind"`
		Reason  *RevertReason `json:"reason,omitempty"`
		Message string        `json:"message,omitempty"`
	}
)

func NewHalt(kind HaltKind) Halt {
	return Halt{Kind: kind}
}

func NewHaltWithReason(kind HaltKind, reason RevertReason) Halt {
	return Halt{Kind: kind, Reason: &reason}
}

func NewHaltWithMessage(kind HaltKind, msg string) Halt {
	return Halt{Kind: kind, Message: msg}
}

func (h Halt) reason() string {
	if h.Reason == nil {
		return ""
	}
	return h.Reason.String()
}

func (h Halt) String() string {
	switch h.Kind {
	case HaltValidationFailed:
		return "Account validation error: " + h.reason()
	case HaltPaymasterValidationFailed:
		return "Paymaster validation error: " + h.reason()
	case HaltPrePaymasterPreparationFailed:
		return "Pre-paymaster preparation error: " + h.reason()
	case HaltPayForTxFailed:
		return "Failed to pay for the transaction: " + h.reason()
	case HaltFailedToMarkFactoryDependencies:
		return "Failed to mark factory dependencies: " + h.reason()
	case HaltFailedToChargeFee:
		return "Failed to charge fee: " + h.reason()
	case HaltFromIsNotAnAccount:
		return "Sender is not an account"
	case HaltInnerTxError:
		return "Bootloader-based tx failed"
	case HaltUnknown:
		return "Unknown reason: " + h.reason()
	case HaltUnexpectedVMBehavior:
		return "virtual machine entered unexpected state. Please contact developers and provide transaction details " +
			"that caused this error. Error description: " + h.Message
	case HaltBootloaderOutOfGas:
		return "Bootloader out of gas"
	case HaltValidationOutOfGas:
		return "Validation run out of gas"
	case HaltTooBigGasLimit:
		return "Transaction has a too big ergs limit and will not be executed by the server"
	case HaltNotEnoughGasProvided:
		return "Bootloader did not have enough gas to start the transaction"
	case HaltMissingInvocationLimitReached:
		return "Tx produced too much cycles on bootloader and was unable to execute it"
	case HaltFailedToSetL2Block:
		return "Failed to set L2 block: " + h.Message
	case HaltFailedToAppendTransactionToL2Block:
		return "Failed to append the transaction to the current L2 block: " + h.Message
	case HaltVMPanic:
		return "VM panicked"
	case HaltTracerCustom:
		return "Tracer aborted execution: " + h.Message
	case HaltFailedToPublishCompressedBytecodes:
		return "Failed to publish compressed bytecodes"
	case HaltFailedBlockTimestampAssertion:
		return "Transaction failed block.timestamp assertion"
	default:
		return fmt.Sprintf("HaltKind(%d)", h.Kind)
	}
}
