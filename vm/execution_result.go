package vm

import (
	"github.com/zkvm-go/vm-interface/types"
)

type (
	/*
	ExecutionResult is the outcome of the VM execution. It is a closed set of
	variants: *ExecutionSuccess, *ExecutionRevert and *ExecutionHalt. Use type
	switch to handle them.

	Revert and halt are regular outcomes of the transaction, not errors.
	*/
	ExecutionResult interface {
		// IsFailed returns true if the execution was reverted or halted.
		IsFailed() bool
		isExecutionResult()
	}

	// ExecutionSuccess is returned when the execution succeeded.
	ExecutionSuccess struct {
		Output []byte
	}

	// ExecutionRevert is returned when the execution was reverted by the contract.
	ExecutionRevert struct {
		Output RevertReason
	}

	// ExecutionHalt is returned when the execution was stopped for other reasons.
	ExecutionHalt struct {
		Reason Halt
	}
)

func (*ExecutionSuccess) IsFailed() bool { return false }
func (*ExecutionSuccess) isExecutionResult() {}

func (*ExecutionRevert) IsFailed() bool { return true }
func (*ExecutionRevert) isExecutionResult() {}

func (*ExecutionHalt) IsFailed() bool { return true }
func (*ExecutionHalt) isExecutionResult() {}

type (
	// Refunds produced for the user.
	Refunds struct {
		_                       struct{} `cbor:",toarray"`
		GasRefunded             uint64   `json:"gasRefunded"`
		OperatorSuggestedRefund uint64   `json:"operatorSuggestedRefund"`
	}

	// ExecutionLogs are the events, storage logs and L2->L1 logs created during
	// the execution.
	ExecutionLogs struct {
		StorageLogs []types.StorageLogWithPreviousValue
		Events      []Event
		// Older VMs didn't distinguish user and system logs, all their logs
		// are user logs.
		UserL2ToL1Logs   []types.UserL2ToL1Log
		SystemL2ToL1Logs []types.SystemL2ToL1Log
		// TotalLogQueriesCount is also reported by ExecutionStatistics, this
		// one is kept for the older VMs.
		TotalLogQueriesCount int
	}

	// ExecutionResultAndLogs is the complete output of a single VM execution.
	ExecutionResultAndLogs struct {
		Result     ExecutionResult
		Logs       ExecutionLogs
		Statistics ExecutionStatistics
		Refunds    Refunds
		/*
		DynamicFactoryDeps are the bytecodes decommitted during the execution
		which were not present in the storage at the start of the execution nor
		in the factory deps of the executed transactions (ie EVM bytecodes
		materialized by the EVM emulator).
		*/
		DynamicFactoryDeps map[types.H256][]byte
	}
)

func (l *ExecutionLogs) TotalL2ToL1LogsCount() int {
	return len(l.UserL2ToL1Logs) + len(l.SystemL2ToL1Logs)
}

/*
NewExecutionResultAndLogs returns output of the execution with given result
and no logs, statistics or refunds. Mostly useful in tests and for results
synthesized outside of the VM.
*/
func NewExecutionResultAndLogs(result ExecutionResult) *ExecutionResultAndLogs {
	return &ExecutionResultAndLogs{
		Result:             result,
		DynamicFactoryDeps: map[types.H256][]byte{},
	}
}

// NewSuccessResultAndLogs returns successful execution output with no payload.
func NewSuccessResultAndLogs() *ExecutionResultAndLogs {
	return NewExecutionResultAndLogs(&ExecutionSuccess{Output: []byte{}})
}

/*
RevertReasonString returns the human readable reason of the failure or nil
when the execution succeeded. Unknown revert reasons are suppressed (empty
string is returned).
*/
func (r *ExecutionResultAndLogs) RevertReasonString() *string {
	var s string
	switch res := r.Result.(type) {
	case *ExecutionSuccess:
		return nil
	case *ExecutionRevert:
		s = res.Output.UserFriendlyString()
	case *ExecutionHalt:
		s = res.Reason.String()
	}
	return &s
}
