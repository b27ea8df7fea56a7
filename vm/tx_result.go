package vm

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zkvm-go/vm-interface/cbor"
	"github.com/zkvm-go/vm-interface/types"
	"github.com/zkvm-go/vm-interface/util"
)

const (
	TxStatusSuccess TxExecutionStatus = iota
	TxStatusFailure
)

var (
	// ErrBytecodeCompressionFailed is the compression result of the
	// transaction whose factory deps could not be compressed for publishing.
	ErrBytecodeCompressionFailed = errors.New("bytecode compression failed")

	ErrTxExecutionResultIsNil = errors.New("transaction execution result is nil")
)

type (
	TxExecutionStatus uint8

	/*
	BatchTransactionExecutionResult is the output of executing a single
	transaction as a part of the batch.
	*/
	BatchTransactionExecutionResult struct {
		TxResult *ExecutionResultAndLogs
		// CompressionResult is nil when the bytecodes of the transaction were
		// compressed successfully.
		CompressionResult error
		// CallTraces are the leaf calls of the transaction, empty unless
		// tracing was requested.
		CallTraces []Call
	}

	// OneshotTransactionExecutionResult is the output of executing a transaction
	// outside of the batch (ie eth_call, gas estimation).
	OneshotTransactionExecutionResult = BatchTransactionExecutionResult

	/*
	TransactionExecutionResult is the high level result of the transaction
	which is persisted and reported by the API. It is derived from the
	BatchTransactionExecutionResult by NewTransactionExecutionResult.
	*/
	TransactionExecutionResult struct {
		_               struct{}           `cbor:",toarray"`
		Version         types.Version      `json:"version"`
		Transaction     *types.Transaction `json:"transaction"`
		Hash            types.H256         `json:"hash"`
		ExecutionInfo   ExecutionMetrics   `json:"executionInfo"`
		ExecutionStatus TxExecutionStatus  `json:"executionStatus"`
		RefundedGas     uint64             `json:"refundedGas"`
		CallTraces      []Call             `json:"callTraces"`
		RevertReason    *string            `json:"revertReason,omitempty"`
	}
)

func TxExecutionStatusFromHasFailed(hasFailed bool) TxExecutionStatus {
	if hasFailed {
		return TxStatusFailure
	}
	return TxStatusSuccess
}

func (s TxExecutionStatus) String() string {
	switch s {
	case TxStatusSuccess:
		return "success"
	case TxStatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("TxExecutionStatus(%d)", uint8(s))
	}
}

// WasHalted returns true when the VM halted while executing the transaction.
func (r *BatchTransactionExecutionResult) WasHalted() bool {
	_, ok := r.TxResult.Result.(*ExecutionHalt)
	return ok
}

/*
NewTransactionExecutionResult projects the result of executing the
transaction tx into the record reported to the users of the chain.
*/
func NewTransactionExecutionResult(tx *types.Transaction, res *BatchTransactionExecutionResult) *TransactionExecutionResult {
	return &TransactionExecutionResult{
		Version:         1,
		Transaction:     tx,
		Hash:            tx.Hash(),
		ExecutionInfo:   res.TxResult.ExecutionMetrics(),
		ExecutionStatus: TxExecutionStatusFromHasFailed(res.TxResult.Result.IsFailed()),
		RefundedGas:     res.TxResult.Refunds.GasRefunded,
		CallTraces:      res.CallTraces,
		RevertReason:    res.TxResult.RevertReasonString(),
	}
}

func (r *TransactionExecutionResult) GetVersion() types.Version {
	if r == nil || r.Version == 0 {
		return 1
	}
	return r.Version
}

/*
CallTrace returns the call trace of the transaction, all the recorded calls
wrapped into the synthetic top level call. Returns nil when no calls were
recorded.

Panics when the gas limit of the transaction doesn't fit into uint64 or the
refunded gas exceeds it, such result can't be produced by the VM.
*/
func (r *TransactionExecutionResult) CallTrace() *Call {
	if len(r.CallTraces) == 0 {
		return nil
	}
	gasLimit := r.Transaction.GasLimitU64()
	gasUsed, ok := util.SafeSub(gasLimit, r.RefundedGas)
	if !ok {
		panic(fmt.Errorf("refunded gas %d exceeds gas limit %d of the transaction", r.RefundedGas, gasLimit))
	}
	call := NewHighLevelCall(
		gasLimit,
		gasUsed,
		r.Transaction.Execute.Value,
		r.Transaction.Execute.Calldata,
		nil,
		r.RevertReason,
		r.CallTraces,
	)
	return &call
}

func (r *TransactionExecutionResult) IsValid() error {
	if r == nil {
		return ErrTxExecutionResultIsNil
	}
	if r.GetVersion() != 1 {
		return types.ErrInvalidVersion(r)
	}
	if err := r.Transaction.IsValid(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	if r.ExecutionStatus > TxStatusFailure {
		return fmt.Errorf("invalid execution status %d", r.ExecutionStatus)
	}
	for i := range r.CallTraces {
		if err := r.CallTraces[i].Type.IsValid(); err != nil {
			return fmt.Errorf("invalid call trace %d: %w", i, err)
		}
	}
	return nil
}

func (r *TransactionExecutionResult) Bytes() ([]byte, error) {
	return cbor.Marshal(r)
}

func (r *TransactionExecutionResult) MarshalCBOR() ([]byte, error) {
	type alias TransactionExecutionResult
	if r.Version == 0 {
		r.Version = r.GetVersion()
	}
	return cbor.MarshalTaggedValue(types.TransactionExecutionResultTag, (*alias)(r))
}

func (r *TransactionExecutionResult) UnmarshalCBOR(data []byte) error {
	type alias TransactionExecutionResult
	if err := cbor.UnmarshalTaggedValue(types.TransactionExecutionResultTag, data, (*alias)(r)); err != nil {
		return err
	}
	return types.EnsureVersion(r, r.Version, 1)
}

func (r *TransactionExecutionResult) MarshalZerologObject(e *zerolog.Event) {
	e.Stringer("hash", r.Hash).
		Stringer("status", r.ExecutionStatus).
		Uint64("refundedGas", r.RefundedGas).
		Object("executionInfo", r.ExecutionInfo).
		Int("callTraces", len(r.CallTraces))
	if r.RevertReason != nil {
		e.Str("revertReason", *r.RevertReason)
	}
}
